package convert

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
)

// convertPDF extracts plain text and re-flows it into paragraphs,
// promoting likely headings to heading tags.
func (r *Registry) convertPDF(raw []byte) (domain.ConversionResult, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return domain.ConversionResult{}, fmt.Errorf("open pdf: %w", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return domain.ConversionResult{}, fmt.Errorf("extract pdf text: %w", err)
	}
	extracted, err := io.ReadAll(textReader)
	if err != nil {
		return domain.ConversionResult{}, fmt.Errorf("read pdf text: %w", err)
	}

	text := strings.TrimSpace(string(extracted))
	if text == "" {
		return domain.ConversionResult{}, fmt.Errorf("pdf contains no extractable text")
	}

	return domain.ConversionResult{HTML: reflowPDFText(text), PlainText: text}, nil
}

// reflowPDFText groups extracted lines into paragraphs on blank lines
// and renders likely headings as <h3>.
func reflowPDFText(text string) string {
	var b strings.Builder
	var paragraph []string

	flush := func() {
		if len(paragraph) == 0 {
			return
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(strings.Join(paragraph, " ")))
		b.WriteString("</p>\n")
		paragraph = paragraph[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		if looksLikeHeading(line) {
			flush()
			b.WriteString("<h3>")
			b.WriteString(html.EscapeString(line))
			b.WriteString("</h3>\n")
			continue
		}
		paragraph = append(paragraph, line)
	}
	flush()

	return strings.TrimSpace(b.String())
}

// looksLikeHeading promotes short, all-caps lines without a trailing
// period; scanned manuals typically emit section titles that way.
func looksLikeHeading(line string) bool {
	if len(line) > 60 || strings.HasSuffix(line, ".") {
		return false
	}
	if len(strings.Fields(line)) > 8 {
		return false
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}
