package domain

import "strings"

// DocumentType is the heuristic business-type guess for a staged
// document.
type DocumentType string

const (
	TypeUnknown         DocumentType = "UNKNOWN"
	TypeLikelyProcedure DocumentType = "LIKELY_PROCEDURE"
	TypeLikelyManual    DocumentType = "LIKELY_MANUAL"
	TypeLikelyPolicy    DocumentType = "LIKELY_POLICY"
	TypeLikelyForm      DocumentType = "LIKELY_FORM"
	TypeReferenceDoc    DocumentType = "REFERENCE_DOC"
)

// Valid reports whether t is one of the known type guesses. The
// persistence boundary rejects anything else instead of trusting the
// stored value.
func (t DocumentType) Valid() bool {
	switch t {
	case TypeUnknown, TypeLikelyProcedure, TypeLikelyManual,
		TypeLikelyPolicy, TypeLikelyForm, TypeReferenceDoc:
		return true
	}
	return false
}

// Classification is the output shape shared by the filename and
// content classifiers: a type guess, a confidence score in [0,1] and a
// human-readable rationale.
type Classification struct {
	Type   DocumentType `json:"type"`
	Score  float64      `json:"score"`
	Reason string       `json:"reason"`
}

// NormalizeTags trims, lowercases and deduplicates tags while keeping
// first-seen order. Empty entries are dropped.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
