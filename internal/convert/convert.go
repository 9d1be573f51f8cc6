// Package convert turns raw document bytes into normalized HTML plus
// extracted plain text, dispatching on file extension. Converters never
// render source text unescaped: every interpolated string passes
// through html.EscapeString before entering generated markup.
package convert

import (
	"fmt"
	"log/slog"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/filetype"
)

type converterFunc func(raw []byte) (domain.ConversionResult, error)

// Registry holds the per-family converters. It is built once at
// startup and passed by reference; there is no lazily-initialized
// global state.
type Registry struct {
	logger   *slog.Logger
	byFamily map[filetype.Family]converterFunc
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{logger: logger}
	r.byFamily = map[filetype.Family]converterFunc{
		filetype.FamilyWordProcessor: r.convertDocx,
		filetype.FamilyPDF:           r.convertPDF,
		filetype.FamilyPlainText:     r.convertPlainText,
		filetype.FamilySpreadsheet:   r.convertSpreadsheet,
	}
	return r
}

// Convert dispatches on the lowercased extension. Legacy binary
// formats and unrecognized extensions return ErrUnsupportedFormat so
// the caller can mark the document skipped instead of failed.
func (r *Registry) Convert(fileType string, raw []byte) (domain.ConversionResult, error) {
	entry, ok := filetype.Lookup(fileType)
	if !ok {
		return domain.ConversionResult{}, domain.WrapError(domain.ErrUnsupportedFormat, "convert",
			fmt.Errorf("extension %q is not a recognized document format", fileType))
	}
	if entry.Family == filetype.FamilyLegacy {
		return domain.ConversionResult{}, domain.WrapError(domain.ErrUnsupportedFormat, "convert",
			fmt.Errorf("legacy format %q is not supported; re-save as a modern format", fileType))
	}

	convert, ok := r.byFamily[entry.Family]
	if !ok {
		return domain.ConversionResult{}, domain.WrapError(domain.ErrUnsupportedFormat, "convert",
			fmt.Errorf("no converter registered for family %q", entry.Family))
	}
	return convert(raw)
}
