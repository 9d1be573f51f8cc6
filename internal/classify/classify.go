// Package classify guesses the likely business type of a document from
// cheap filename evidence or from extracted text. Both entry points are
// pure functions returning the same output shape: a type guess, a
// confidence score in [0,1] and a human-readable rationale.
//
// Filename evidence is available before any content processing, so it
// runs at staging time; content evidence runs after conversion and may
// upgrade the stored guess but never downgrade it (see Apply).
package classify

import "github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"

// Apply merges a candidate classification into the currently stored
// one. The candidate wins only when its score is strictly greater;
// equal scores keep the incumbent so repeated passes are idempotent.
func Apply(current, candidate domain.Classification) domain.Classification {
	if candidate.Score > current.Score {
		return candidate
	}
	return current
}

func clamp(score, ceiling float64) float64 {
	if score > ceiling {
		return ceiling
	}
	if score < 0 {
		return 0
	}
	return score
}
