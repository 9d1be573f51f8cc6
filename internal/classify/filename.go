package classify

import (
	"fmt"
	"strings"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
)

// filenameFamily is one keyword family tested against a lowercased
// filename. Families are evaluated in fixed priority order and the
// first one with any match wins. Each matching keyword adds its
// increment; the sum is capped at the family ceiling because
// filename-only evidence is weak.
type filenameFamily struct {
	docType  domain.DocumentType
	label    string
	ceiling  float64
	keywords []weightedKeyword
}

type weightedKeyword struct {
	term   string
	weight float64
}

var filenameFamilies = []filenameFamily{
	{
		docType: domain.TypeLikelyProcedure,
		label:   "procedure",
		ceiling: 0.7,
		keywords: []weightedKeyword{
			{"sop", 0.4}, {"procedure", 0.4}, {"work-instruction", 0.4},
			{"work_instruction", 0.4}, {"instruction", 0.3}, {"checklist", 0.35},
			{"check-list", 0.35}, {"how-to", 0.3}, {"howto", 0.3}, {"step", 0.2},
			{"process", 0.2},
		},
	},
	{
		docType: domain.TypeLikelyManual,
		label:   "safety/manual",
		ceiling: 0.65,
		keywords: []weightedKeyword{
			{"manual", 0.4}, {"handbook", 0.4}, {"guide", 0.3},
			{"safety", 0.3}, {"training", 0.25}, {"orientation", 0.25},
		},
	},
	{
		docType: domain.TypeLikelyPolicy,
		label:   "policy",
		ceiling: 0.65,
		keywords: []weightedKeyword{
			{"policy", 0.4}, {"policies", 0.4}, {"compliance", 0.3},
			{"regulation", 0.3}, {"standard", 0.25}, {"code-of", 0.25},
		},
	},
	{
		docType: domain.TypeLikelyForm,
		label:   "form",
		ceiling: 0.6,
		keywords: []weightedKeyword{
			{"form", 0.4}, {"template", 0.35}, {"application", 0.3},
			{"request", 0.25}, {"permit", 0.3}, {"waiver", 0.3},
		},
	},
	{
		docType: domain.TypeReferenceDoc,
		label:   "reference",
		ceiling: 0.6,
		keywords: []weightedKeyword{
			{"reference", 0.35}, {"spec", 0.3}, {"datasheet", 0.35},
			{"data-sheet", 0.35}, {"sds", 0.35}, {"msds", 0.35},
		},
	},
}

// ByFilename scores a filename against the keyword families and
// returns the first family with any match. Unmatched names come back
// as UNKNOWN with score zero.
func ByFilename(name string) domain.Classification {
	lowered := strings.ToLower(name)

	for _, family := range filenameFamilies {
		var score float64
		var matched []string
		for _, kw := range family.keywords {
			if strings.Contains(lowered, kw.term) {
				score += kw.weight
				matched = append(matched, kw.term)
			}
		}
		if len(matched) == 0 {
			continue
		}
		return domain.Classification{
			Type:   family.docType,
			Score:  clamp(score, family.ceiling),
			Reason: fmt.Sprintf("filename matched %s terms: %s", family.label, strings.Join(matched, ", ")),
		}
	}

	return domain.Classification{
		Type:   domain.TypeUnknown,
		Score:  0,
		Reason: "filename matched no known document terms",
	}
}
