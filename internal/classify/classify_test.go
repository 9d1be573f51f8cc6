package classify

import (
	"testing"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
)

func TestApplyKeepsCurrentOnLowerScore(t *testing.T) {
	current := domain.Classification{Type: domain.TypeLikelyProcedure, Score: 0.5, Reason: "filename"}
	candidate := domain.Classification{Type: domain.TypeLikelyPolicy, Score: 0.4, Reason: "content"}

	got := Apply(current, candidate)
	if got != current {
		t.Fatalf("expected current classification kept, got %+v", got)
	}
}

func TestApplyKeepsCurrentOnEqualScore(t *testing.T) {
	current := domain.Classification{Type: domain.TypeLikelyProcedure, Score: 0.5, Reason: "filename"}
	candidate := domain.Classification{Type: domain.TypeLikelyPolicy, Score: 0.5, Reason: "content"}

	if got := Apply(current, candidate); got != current {
		t.Fatalf("expected equal score to keep incumbent, got %+v", got)
	}
}

func TestApplyOverwritesOnHigherScore(t *testing.T) {
	current := domain.Classification{Type: domain.TypeLikelyProcedure, Score: 0.5, Reason: "filename"}
	candidate := domain.Classification{Type: domain.TypeLikelyPolicy, Score: 0.6, Reason: "content"}

	if got := Apply(current, candidate); got != candidate {
		t.Fatalf("expected candidate to win, got %+v", got)
	}
}

func TestByFilenameSafetyChecklist(t *testing.T) {
	got := ByFilename("daily-safety-checklist.pdf")
	if got.Type != domain.TypeLikelyProcedure {
		t.Fatalf("expected LIKELY_PROCEDURE, got %s", got.Type)
	}
	if got.Score <= 0 {
		t.Fatalf("expected positive score, got %f", got.Score)
	}
	if got.Reason == "" {
		t.Fatalf("expected non-empty reason")
	}
}

func TestByFilenameUnrelatedFile(t *testing.T) {
	got := ByFilename("q3_photos.jpg")
	if got.Type != domain.TypeUnknown {
		t.Fatalf("expected UNKNOWN, got %s", got.Type)
	}
	if got.Score != 0 {
		t.Fatalf("expected zero score, got %f", got.Score)
	}
}

func TestByFilenameFamilyPriorityOrder(t *testing.T) {
	// Matches both the procedure and manual families; procedure is
	// evaluated first and must win.
	got := ByFilename("forklift-safety-procedure.docx")
	if got.Type != domain.TypeLikelyProcedure {
		t.Fatalf("expected procedure family to win, got %s", got.Type)
	}
}

func TestByFilenameScoreCappedAtFamilyCeiling(t *testing.T) {
	got := ByFilename("sop-procedure-checklist-instruction-step-process.docx")
	if got.Score > 0.7 {
		t.Fatalf("expected score capped at 0.7, got %f", got.Score)
	}
}

func TestByFilenamePolicy(t *testing.T) {
	got := ByFilename("drug-and-alcohol-policy.pdf")
	if got.Type != domain.TypeLikelyPolicy {
		t.Fatalf("expected LIKELY_POLICY, got %s", got.Type)
	}
}

const procedureText = `Lockout Tagout Procedure

1. Notify all affected employees that the equipment will be shut down.
2. Shut down the equipment using normal stopping procedures.
3. Lock the energy isolating device with an assigned lock.
4. Verify isolation by attempting a normal startup.
5. Tag the lock with the date and your name.

Warning: never remove another employee's lock.
Ensure all PPE is worn before starting. Check the hazard assessment first.`

const policyText = `Purpose

This policy establishes the rules for workplace conduct.

Scope

This policy applies to all employees and contractors.

Responsibilities

Supervisors shall enforce compliance with this policy. Violation of
this policy may result in disciplinary action. Prohibited conduct is
defined below. The effective date of this policy is January 1.`

const formText = `Incident Report Form

Name: ________________
Date: ________________
Department: ________________
Supervisor: ________________
Signature: ________________

[ ] First aid administered
[ ] Medical treatment required
[ ] Near miss only`

const narrativeText = `The company was founded in nineteen seventy two by a small group of
tradespeople who believed that quality work and honest pricing would always find
a market, and over the following decades the business grew from a single crew
into a regional operation with offices in three states and a reputation for
finishing difficult projects on schedule regardless of weather or site
conditions, which is the reputation it still trades on today.`

func TestByContentProcedure(t *testing.T) {
	got := ByContent(procedureText)
	if got.Type != domain.TypeLikelyProcedure {
		t.Fatalf("expected LIKELY_PROCEDURE, got %s (%s)", got.Type, got.Reason)
	}
	if got.Score < contentFloor {
		t.Fatalf("expected score above floor, got %f", got.Score)
	}
}

func TestByContentPolicy(t *testing.T) {
	got := ByContent(policyText)
	if got.Type != domain.TypeLikelyPolicy {
		t.Fatalf("expected LIKELY_POLICY, got %s (%s)", got.Type, got.Reason)
	}
}

func TestByContentForm(t *testing.T) {
	got := ByContent(formText)
	if got.Type != domain.TypeLikelyForm {
		t.Fatalf("expected LIKELY_FORM, got %s (%s)", got.Type, got.Reason)
	}
}

func TestByContentNarrativeFallsBackToReference(t *testing.T) {
	got := ByContent(narrativeText)
	if got.Type != domain.TypeReferenceDoc {
		t.Fatalf("expected REFERENCE_DOC, got %s (%s)", got.Type, got.Reason)
	}
}

func TestByContentEmptyText(t *testing.T) {
	got := ByContent("   \n  ")
	if got.Type != domain.TypeUnknown {
		t.Fatalf("expected UNKNOWN for empty text, got %s", got.Type)
	}
}

func TestByContentNoiseReturnsUnknown(t *testing.T) {
	got := ByContent("x y z")
	if got.Type != domain.TypeUnknown {
		t.Fatalf("expected UNKNOWN for noise, got %s (%f)", got.Type, got.Score)
	}
	if got.Score != 0 {
		t.Fatalf("expected zero score for noise, got %f", got.Score)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := domain.NormalizeTags([]string{" Safety ", "PPE", "safety", "", "ppe", "Cranes"})
	want := []string{"safety", "ppe", "cranes"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
