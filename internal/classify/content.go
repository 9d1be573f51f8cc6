package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
)

const (
	// contentThreshold is the minimum sub-score required to classify
	// at all; anything below it on every axis is noise.
	contentThreshold = 0.2
	// contentFloor is the minimum winning score for a specific type
	// guess; winners under it are demoted to the generic catch-all.
	contentFloor = 0.35

	procedureCeiling = 0.95
	policyCeiling    = 0.9
	formCeiling      = 0.85
	narrativeCeiling = 0.6
)

var (
	numberedStepRe = regexp.MustCompile(`(?m)^\s*(?:\d{1,3}[.)]\s+|step\s+\d+)`)
	warningBlockRe = regexp.MustCompile(`\b(?:warning|caution|danger|notice)\s*[:!]`)
	blankFieldRe   = regexp.MustCompile(`_{3,}`)
	checkboxRe     = regexp.MustCompile(`\[\s?\]|\(\s?\)`)
	labelLineRe    = regexp.MustCompile(`(?m)^\s*(?:name|date|signature|title|department|employee|supervisor|print name|job title|phone|email)\s*:`)
)

var imperativeVerbs = map[string]struct{}{
	"ensure": {}, "wear": {}, "check": {}, "verify": {}, "inspect": {},
	"remove": {}, "install": {}, "turn": {}, "lock": {}, "tag": {},
	"connect": {}, "disconnect": {}, "open": {}, "close": {}, "shut": {},
	"apply": {}, "secure": {}, "stop": {}, "start": {}, "report": {},
	"complete": {}, "follow": {}, "use": {}, "place": {}, "clean": {},
}

var safetyTerms = []string{
	"ppe", "hazard", "safety", "caution", "danger", "protective",
	"lockout", "tagout", "emergency", "first aid", "injury",
}

var policyTerms = []string{
	"purpose", "scope", "responsibilities", "definitions", "compliance",
	"shall", "must", "prohibited", "violation", "disciplinary",
	"effective date", "applies to",
}

type contentSignals struct {
	words         int
	numberedSteps int
	imperatives   int
	safetyHits    int
	warningBlocks int
	policyTerms   int
	formMarkers   int
	avgParaWords  float64
}

// ByContent scores extracted text on four independent axes — procedure
// structure, policy structure, form markers and plain narrative — and
// returns the strongest one. Ties break in that fixed order. Narrative
// is a negative indicator of procedural structure and is only counted
// when step and imperative evidence is low.
func ByContent(text string) domain.Classification {
	lowered := strings.ToLower(text)
	sig := measure(lowered)

	if sig.words == 0 {
		return domain.Classification{Type: domain.TypeUnknown, Reason: "empty extracted text"}
	}

	candidates := []domain.Classification{
		scoreProcedure(sig),
		scorePolicy(sig),
		scoreForm(sig),
		scoreNarrative(sig),
	}

	winner := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > winner.Score {
			winner = c
		}
	}

	if winner.Score < contentThreshold {
		return domain.Classification{
			Type:   domain.TypeUnknown,
			Score:  0,
			Reason: "no content signal cleared the classification threshold",
		}
	}
	if winner.Type != domain.TypeReferenceDoc && winner.Score < contentFloor {
		return domain.Classification{
			Type:   domain.TypeReferenceDoc,
			Score:  winner.Score,
			Reason: fmt.Sprintf("weak signal (%s); treating as general reference material", winner.Reason),
		}
	}
	return winner
}

func measure(lowered string) contentSignals {
	sig := contentSignals{
		words:         len(strings.Fields(lowered)),
		numberedSteps: len(numberedStepRe.FindAllString(lowered, -1)),
		warningBlocks: len(warningBlockRe.FindAllString(lowered, -1)),
		formMarkers: len(blankFieldRe.FindAllString(lowered, -1)) +
			len(checkboxRe.FindAllString(lowered, -1)) +
			len(labelLineRe.FindAllString(lowered, -1)),
	}

	for _, sentence := range strings.FieldsFunc(lowered, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	}) {
		fields := strings.Fields(sentence)
		if len(fields) == 0 {
			continue
		}
		if _, ok := imperativeVerbs[fields[0]]; ok {
			sig.imperatives++
		}
	}

	for _, term := range safetyTerms {
		sig.safetyHits += strings.Count(lowered, term)
	}
	for _, term := range policyTerms {
		if strings.Contains(lowered, term) {
			sig.policyTerms++
		}
	}

	paragraphs := 0
	totalWords := 0
	for _, para := range strings.Split(lowered, "\n\n") {
		words := len(strings.Fields(para))
		if words == 0 {
			continue
		}
		paragraphs++
		totalWords += words
	}
	if paragraphs > 0 {
		sig.avgParaWords = float64(totalWords) / float64(paragraphs)
	}
	return sig
}

// saturate maps a raw count onto [0,1] with full credit at the target.
func saturate(count int, target float64) float64 {
	ratio := float64(count) / target
	if ratio > 1 {
		return 1
	}
	return ratio
}

func scoreProcedure(sig contentSignals) domain.Classification {
	score := 0.35*saturate(sig.numberedSteps, 5) +
		0.25*saturate(sig.imperatives, 8) +
		0.2*saturate(sig.safetyHits, 6) +
		0.2*saturate(sig.warningBlocks, 3)
	if sig.numberedSteps >= 3 && sig.imperatives >= 3 {
		score += 0.1
	}
	return domain.Classification{
		Type:  domain.TypeLikelyProcedure,
		Score: clamp(score, procedureCeiling),
		Reason: fmt.Sprintf("procedural structure: %d numbered steps, %d imperative sentences, %d safety terms, %d warning blocks",
			sig.numberedSteps, sig.imperatives, sig.safetyHits, sig.warningBlocks),
	}
}

func scorePolicy(sig contentSignals) domain.Classification {
	score := 0.12 * float64(sig.policyTerms)
	if sig.policyTerms >= 5 {
		score += 0.1
	}
	return domain.Classification{
		Type:   domain.TypeLikelyPolicy,
		Score:  clamp(score, policyCeiling),
		Reason: fmt.Sprintf("policy structure: %d of %d structural terms present", sig.policyTerms, len(policyTerms)),
	}
}

func scoreForm(sig contentSignals) domain.Classification {
	return domain.Classification{
		Type:   domain.TypeLikelyForm,
		Score:  clamp(formCeiling*saturate(sig.formMarkers, 8), formCeiling),
		Reason: fmt.Sprintf("form markers: %d fill-in fields, checkboxes or label lines", sig.formMarkers),
	}
}

func scoreNarrative(sig contentSignals) domain.Classification {
	// Long prose paragraphs argue against procedural structure, but
	// only when step and imperative evidence is genuinely low.
	if sig.numberedSteps >= 2 || sig.imperatives >= 3 {
		return domain.Classification{Type: domain.TypeReferenceDoc, Score: 0, Reason: "narrative axis suppressed by procedural evidence"}
	}
	return domain.Classification{
		Type:   domain.TypeReferenceDoc,
		Score:  clamp(narrativeCeiling*(sig.avgParaWords/60), narrativeCeiling),
		Reason: fmt.Sprintf("plain narrative: average paragraph length %.0f words", sig.avgParaWords),
	}
}
