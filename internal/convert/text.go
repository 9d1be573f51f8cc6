package convert

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
)

// convertPlainText wraps text and markdown content verbatim in a
// monospace block. Markdown is deliberately not rendered; the registry
// keys on extension, so a real renderer can replace this for .md later
// without touching call sites.
func (r *Registry) convertPlainText(raw []byte) (domain.ConversionResult, error) {
	if !utf8.Valid(raw) {
		return domain.ConversionResult{}, fmt.Errorf("file is not valid UTF-8 text")
	}
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")

	var b strings.Builder
	b.WriteString(`<pre class="document-text">`)
	b.WriteString(html.EscapeString(text))
	b.WriteString("</pre>")

	return domain.ConversionResult{HTML: b.String(), PlainText: text}, nil
}
