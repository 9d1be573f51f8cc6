// Package filetype is the static registry of document extensions the
// pipeline stages, with their MIME types and converter families.
package filetype

import (
	"mime"
	"path/filepath"
	"strings"
)

// Family groups extensions that share a conversion strategy.
type Family string

const (
	FamilyWordProcessor Family = "word_processor"
	FamilyPDF           Family = "pdf"
	FamilyPlainText     Family = "plain_text"
	FamilySpreadsheet   Family = "spreadsheet"
	// FamilyLegacy formats are staged and listed but never converted;
	// conversion marks them skipped rather than failed.
	FamilyLegacy Family = "legacy"
)

type Entry struct {
	MimeType string
	Family   Family
}

var registry = map[string]Entry{
	"docx": {MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", Family: FamilyWordProcessor},
	"pdf":  {MimeType: "application/pdf", Family: FamilyPDF},
	"txt":  {MimeType: "text/plain", Family: FamilyPlainText},
	"md":   {MimeType: "text/markdown", Family: FamilyPlainText},
	"csv":  {MimeType: "text/csv", Family: FamilyPlainText},
	"xlsx": {MimeType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Family: FamilySpreadsheet},
	"doc":  {MimeType: "application/msword", Family: FamilyLegacy},
	"xls":  {MimeType: "application/vnd.ms-excel", Family: FamilyLegacy},
	"rtf":  {MimeType: "application/rtf", Family: FamilyLegacy},
}

// Ext returns the lowercased extension of name without the leading dot.
func Ext(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// Lookup returns the registry entry for a lowercased extension.
func Lookup(ext string) (Entry, bool) {
	entry, ok := registry[ext]
	return entry, ok
}

// IsDocument reports whether ext is on the staging allow-list.
func IsDocument(ext string) bool {
	_, ok := registry[ext]
	return ok
}

// MimeOf resolves the MIME type for an extension, falling back to the
// platform mime database and then to application/octet-stream.
func MimeOf(ext string) string {
	if entry, ok := registry[ext]; ok {
		return entry.MimeType
	}
	if ext != "" {
		if byExt := mime.TypeByExtension("." + ext); byExt != "" {
			return byExt
		}
	}
	return "application/octet-stream"
}
