package chat

import (
	"strings"
	"testing"

	"dealflow-backend/internal/deals"
	"dealflow-backend/internal/documents"
)

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

func TestBuildDealContextRendersFactsAndMultiple(t *testing.T) {
	deal := deals.Deal{
		Name:          "Acme Buyout",
		TargetCompany: str("Acme Corp"),
		Valuation:     f64(1250),
		EBITDA:        f64(100),
		Status:        "active",
	}

	got := BuildDealContext(deal, nil)

	if !strings.Contains(got, "Deal: Acme Buyout\n") {
		t.Fatalf("missing deal name:\n%s", got)
	}
	if !strings.Contains(got, "Valuation: $1,250M\n") {
		t.Fatalf("missing grouped valuation:\n%s", got)
	}
	if !strings.Contains(got, "EV/EBITDA Multiple: 12.5x\n") {
		t.Fatalf("missing multiple:\n%s", got)
	}
	if strings.Contains(got, "Revenue:") {
		t.Fatalf("unset revenue must be omitted:\n%s", got)
	}
	if strings.Contains(got, "Documents in Dataroom") {
		t.Fatalf("no documents were given:\n%s", got)
	}
}

func TestBuildDealContextSkipsMultipleWhenEBITDAZero(t *testing.T) {
	got := BuildDealContext(deals.Deal{Name: "X", Valuation: f64(100), EBITDA: f64(0)}, nil)
	if strings.Contains(got, "EV/EBITDA") {
		t.Fatalf("multiple must be skipped for zero ebitda:\n%s", got)
	}
}

func TestBuildDealContextCapsDocumentContent(t *testing.T) {
	long := strings.Repeat("z", docContentLimit+1000)
	docs := []documents.Document{
		{Name: "cim.pdf", Category: "financial", AISummary: str("A summary"), ExtractedText: &long},
		{Name: "notes.txt"},
	}

	got := BuildDealContext(deals.Deal{Name: "Acme"}, docs)

	if !strings.Contains(got, "--- Documents in Dataroom ---") {
		t.Fatalf("missing dataroom header:\n%s", got)
	}
	if !strings.Contains(got, "Document: cim.pdf (financial)") {
		t.Fatalf("missing document line:\n%s", got)
	}
	if !strings.Contains(got, "Document: notes.txt (general)") {
		t.Fatalf("empty category should default to general:\n%s", got)
	}
	if n := strings.Count(got, "z"); n != docContentLimit {
		t.Fatalf("content not capped, got %d chars", n)
	}
}
