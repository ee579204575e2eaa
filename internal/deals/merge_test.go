package deals

import (
	"strings"
	"testing"

	"dealflow-backend/internal/facts"
)

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

func TestMergeFactsNumericFieldsOverwrite(t *testing.T) {
	deal := Deal{Valuation: f64(100), Revenue: f64(50), EBITDA: f64(10)}
	extracted := facts.Facts{Valuation: f64(500), EBITDA: f64(25)}

	patch, changed := MergeFacts(deal, extracted)

	if patch.Valuation == nil || *patch.Valuation != 500 {
		t.Fatalf("valuation should overwrite, got %+v", patch)
	}
	if patch.EBITDA == nil || *patch.EBITDA != 25 {
		t.Fatalf("ebitda should overwrite, got %+v", patch)
	}
	if patch.Revenue != nil {
		t.Fatalf("revenue was not extracted and must stay untouched, got %v", *patch.Revenue)
	}
	if len(changed) != 2 {
		t.Fatalf("changed labels: got %v", changed)
	}
	if changed[0] != "Valuation: $500M" {
		t.Fatalf("unexpected label %q", changed[0])
	}
}

func TestMergeFactsCategoricalFieldsFillOnlyWhenEmpty(t *testing.T) {
	deal := Deal{TargetCompany: str("Acme Corp")}
	extracted := facts.Facts{TargetCompany: str("Other Co"), Geography: str("Europe")}

	patch, changed := MergeFacts(deal, extracted)

	if patch.TargetCompany != nil {
		t.Fatalf("target company already set and must not change, got %q", *patch.TargetCompany)
	}
	if patch.Geography == nil || *patch.Geography != "Europe" {
		t.Fatalf("geography was empty and should fill, got %+v", patch)
	}
	if len(changed) != 1 || !strings.HasPrefix(changed[0], "Geography:") {
		t.Fatalf("changed labels: got %v", changed)
	}
}

func TestMergeFactsNothingNewYieldsZeroPatch(t *testing.T) {
	deal := Deal{TargetCompany: str("Acme Corp"), Valuation: f64(100)}

	patch, changed := MergeFacts(deal, facts.Facts{TargetCompany: str("Other Co")})

	if !patch.IsZero() {
		t.Fatalf("expected zero patch, got %+v", patch)
	}
	if len(changed) != 0 {
		t.Fatalf("expected no change labels, got %v", changed)
	}
}

func TestMergeFactsDecimalLabelFormatting(t *testing.T) {
	_, changed := MergeFacts(Deal{}, facts.Facts{Revenue: f64(12.5)})
	if len(changed) != 1 || changed[0] != "Revenue: $12.5M" {
		t.Fatalf("got %v", changed)
	}
}
