package convert

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
)

// styleTags maps Word paragraph styles onto HTML elements. Unmapped
// styles fall back to <p> with a logged warning; a style we have never
// seen is not a reason to fail the conversion.
var styleTags = map[string]string{
	"Title":    "h1",
	"Subtitle": "h2",
	"Heading1": "h1",
	"Heading2": "h2",
	"Heading3": "h3",
	"Heading4": "h4",
	"Heading5": "h5",
	"Heading6": "h6",
}

// convertDocx extracts word/document.xml from the docx archive and
// renders paragraphs with style-mapped heading levels.
func (r *Registry) convertDocx(raw []byte) (domain.ConversionResult, error) {
	archive, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return domain.ConversionResult{}, fmt.Errorf("open docx archive: %w", err)
	}

	docXML, err := readArchiveFile(archive, "word/document.xml")
	if err != nil {
		return domain.ConversionResult{}, err
	}

	paragraphs, err := parseDocxParagraphs(docXML)
	if err != nil {
		return domain.ConversionResult{}, fmt.Errorf("parse document xml: %w", err)
	}

	var htmlOut, textOut strings.Builder
	for _, para := range paragraphs {
		text := strings.TrimSpace(para.text)
		if text == "" {
			continue
		}
		tag := "p"
		if para.style != "" {
			mapped, ok := styleTags[para.style]
			if ok {
				tag = mapped
			} else {
				r.logger.Warn("unmapped docx paragraph style", "style", para.style)
			}
		}
		fmt.Fprintf(&htmlOut, "<%s>%s</%s>\n", tag, html.EscapeString(text), tag)
		textOut.WriteString(text)
		textOut.WriteString("\n")
	}

	if htmlOut.Len() == 0 {
		return domain.ConversionResult{}, fmt.Errorf("docx contains no text content")
	}
	return domain.ConversionResult{
		HTML:      strings.TrimSpace(htmlOut.String()),
		PlainText: strings.TrimSpace(textOut.String()),
	}, nil
}

func readArchiveFile(archive *zip.Reader, name string) ([]byte, error) {
	for _, file := range archive.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return raw, nil
	}
	return nil, fmt.Errorf("docx archive has no %s", name)
}

type docxParagraph struct {
	style string
	text  string
}

// parseDocxParagraphs walks the WordprocessingML token stream keeping
// only paragraph boundaries, style markers and text runs.
func parseDocxParagraphs(docXML []byte) ([]docxParagraph, error) {
	decoder := xml.NewDecoder(bytes.NewReader(docXML))

	var paragraphs []docxParagraph
	var current *docxParagraph
	var inText bool

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				paragraphs = append(paragraphs, docxParagraph{})
				current = &paragraphs[len(paragraphs)-1]
			case "pStyle":
				if current != nil {
					for _, attr := range t.Attr {
						if attr.Name.Local == "val" {
							current.style = attr.Value
						}
					}
				}
			case "t":
				inText = true
			case "br", "cr":
				if current != nil {
					current.text += "\n"
				}
			case "tab":
				if current != nil {
					current.text += "\t"
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				current = nil
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && current != nil {
				current.text += string(t)
			}
		}
	}
	return paragraphs, nil
}
