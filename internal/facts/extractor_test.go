package facts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dealflow-backend/internal/llm"
)

type fakeLLM struct {
	response string
	err      error
	lastReq  llm.Request
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.lastReq = req
	return f.response, f.err
}

func (f *fakeLLM) CompleteStream(ctx context.Context, req llm.Request, cb llm.StreamCallback) (string, error) {
	return f.Complete(ctx, req)
}

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

func TestExtractParsesFactsFromProse(t *testing.T) {
	client := &fakeLLM{response: "Here is the data:\n```json\n{\"valuation\": 500, \"revenue\": 120.5, \"ebitda\": null, \"targetCompany\": \"Acme Corp\", \"geography\": null}\n```"}
	ex := NewExtractor(client, "gpt-4o")

	got, err := ex.Extract(context.Background(), DealSnapshot{}, "cim.pdf", "doc text")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Valuation == nil || *got.Valuation != 500 {
		t.Fatalf("valuation: %+v", got)
	}
	if got.Revenue == nil || *got.Revenue != 120.5 {
		t.Fatalf("revenue: %+v", got)
	}
	if got.EBITDA != nil {
		t.Fatalf("ebitda should be nil, got %v", *got.EBITDA)
	}
	if got.TargetCompany == nil || *got.TargetCompany != "Acme Corp" {
		t.Fatalf("target company: %+v", got)
	}
}

func TestExtractRejectsNonNumericAndNegativeValues(t *testing.T) {
	client := &fakeLLM{response: `{"valuation": "500", "revenue": -10, "ebitda": 25, "targetCompany": "  ", "geography": 7}`}
	ex := NewExtractor(client, "gpt-4o")

	got, err := ex.Extract(context.Background(), DealSnapshot{}, "cim.pdf", "doc text")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Valuation != nil {
		t.Fatalf("string-typed valuation must be dropped, got %v", *got.Valuation)
	}
	if got.Revenue != nil {
		t.Fatalf("negative revenue must be dropped, got %v", *got.Revenue)
	}
	if got.EBITDA == nil || *got.EBITDA != 25 {
		t.Fatalf("ebitda: %+v", got)
	}
	if got.TargetCompany != nil {
		t.Fatalf("blank target company must be dropped, got %q", *got.TargetCompany)
	}
	if got.Geography != nil {
		t.Fatalf("numeric geography must be dropped, got %q", *got.Geography)
	}
}

func TestExtractQuotesCurrentDealValues(t *testing.T) {
	client := &fakeLLM{response: `{}`}
	ex := NewExtractor(client, "gpt-4o")

	snapshot := DealSnapshot{
		TargetCompany: str("Acme Corp"),
		Valuation:     f64(500),
	}
	if _, err := ex.Extract(context.Background(), snapshot, "cim.pdf", "doc text"); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	prompt := client.lastReq.Messages[1].Content
	if !strings.Contains(prompt, "- Target Company: Acme Corp") {
		t.Fatalf("snapshot company missing from prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "- Valuation: $500M") {
		t.Fatalf("snapshot valuation missing from prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "- Revenue: not set") {
		t.Fatalf("unset fields should read 'not set':\n%s", prompt)
	}
	if !strings.Contains(prompt, "--- DOCUMENT: cim.pdf ---") {
		t.Fatalf("document block missing:\n%s", prompt)
	}
	if client.lastReq.MaxTokens != 500 {
		t.Fatalf("max tokens: got %d", client.lastReq.MaxTokens)
	}
}

func TestExtractTruncatesLongContent(t *testing.T) {
	client := &fakeLLM{response: `{}`}
	ex := NewExtractor(client, "gpt-4o")

	long := strings.Repeat("z", previewLimit+500)
	if _, err := ex.Extract(context.Background(), DealSnapshot{}, "big.txt", long); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	prompt := client.lastReq.Messages[1].Content
	if strings.Count(prompt, "z") != previewLimit {
		t.Fatalf("content not truncated to preview limit, got %d chars", strings.Count(prompt, "z"))
	}
}

func TestExtractNoJSONReturnsError(t *testing.T) {
	client := &fakeLLM{response: "I could not find any financial data."}
	ex := NewExtractor(client, "gpt-4o")

	if _, err := ex.Extract(context.Background(), DealSnapshot{}, "cim.pdf", "doc text"); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON, got %v", err)
	}
}

func TestExtractMalformedJSONObjectReturnsErrNoJSON(t *testing.T) {
	client := &fakeLLM{response: `Sure: {"valuation": 500,}`}
	ex := NewExtractor(client, "gpt-4o")

	if _, err := ex.Extract(context.Background(), DealSnapshot{}, "cim.pdf", "doc text"); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON for malformed object, got %v", err)
	}
	if _, err := ex.ExtractProfile(context.Background(), "cim.pdf", "doc text"); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON for malformed profile, got %v", err)
	}
}

func TestExtractProfile(t *testing.T) {
	client := &fakeLLM{response: `{"name": "Acme Corp Acquisition", "description": "Carve-out", "targetCompany": "Acme Corp", "geography": "US", "valuation": 500, "revenue": null, "ebitda": 25}`}
	ex := NewExtractor(client, "gpt-4o")

	got, err := ex.ExtractProfile(context.Background(), "cim.pdf", "doc text")
	if err != nil {
		t.Fatalf("ExtractProfile: %v", err)
	}
	if got.Name != "Acme Corp Acquisition" {
		t.Fatalf("name: %q", got.Name)
	}
	if got.Description == nil || *got.Description != "Carve-out" {
		t.Fatalf("description: %+v", got)
	}
	if got.EBITDA == nil || *got.EBITDA != 25 {
		t.Fatalf("ebitda: %+v", got)
	}
}
