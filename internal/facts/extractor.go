package facts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"dealflow-backend/internal/llm"
	"dealflow-backend/internal/shared/util"
)

// ErrNoJSON is returned when the model response contains no usable JSON
// object, whether none was found or the candidate failed to parse.
var ErrNoJSON = errors.New("facts: response contains no JSON object")

const (
	previewLimit  = 8000
	factMaxTokens = 500
)

const extractSystemPrompt = `You are a financial data extraction assistant. Extract key financial metrics from the document content. Return ONLY valid JSON with no additional text. All monetary values must be in millions (e.g., if the document says "$500 million revenue", return 500; if it says "$1.2 billion", return 1200). CRITICAL: Only extract values explicitly stated in the document. Do NOT estimate, calculate, or infer values that are not directly present. If a field is not found, use null.`

const profileSystemPrompt = `You are a deal creation assistant for M&A and Private Equity. Extract deal information from the document to create a new deal record. Return ONLY valid JSON with no additional text. All monetary values must be in millions (e.g., "$500 million" = 500, "$1.2 billion" = 1200). CRITICAL: Only extract values explicitly stated in the document. Do NOT estimate or fabricate any data. If a field is not found, use null.`

type Extractor struct {
	LLM   llm.Client
	Model string
}

func NewExtractor(client llm.Client, model string) *Extractor {
	return &Extractor{LLM: client, Model: model}
}

// Extract asks the model for financial facts stated in the document. The
// current deal values are quoted so the model only reports new data.
func (e *Extractor) Extract(ctx context.Context, snapshot DealSnapshot, docName, content string) (Facts, error) {
	if e == nil || e.LLM == nil {
		return Facts{}, errors.New("facts extractor not configured")
	}
	raw, err := e.LLM.Complete(ctx, llm.Request{
		Model: e.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: extractSystemPrompt},
			{Role: llm.RoleUser, Content: buildExtractPrompt(snapshot, docName, preview(content))},
		},
		MaxTokens: factMaxTokens,
		JSONOnly:  true,
	})
	if err != nil {
		return Facts{}, err
	}
	obj, ok := util.FirstJSONObject(raw)
	if !ok {
		return Facts{}, ErrNoJSON
	}
	return parseFacts(obj)
}

// ExtractProfile asks the model for a full deal profile, used when creating
// a deal directly from a document.
func (e *Extractor) ExtractProfile(ctx context.Context, fileName, content string) (DealProfile, error) {
	if e == nil || e.LLM == nil {
		return DealProfile{}, errors.New("facts extractor not configured")
	}
	raw, err := e.LLM.Complete(ctx, llm.Request{
		Model: e.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: profileSystemPrompt},
			{Role: llm.RoleUser, Content: buildProfilePrompt(fileName, preview(content))},
		},
		MaxTokens: factMaxTokens,
		JSONOnly:  true,
	})
	if err != nil {
		return DealProfile{}, err
	}
	obj, ok := util.FirstJSONObject(raw)
	if !ok {
		return DealProfile{}, ErrNoJSON
	}
	return parseProfile(obj)
}

func buildExtractPrompt(snapshot DealSnapshot, docName, content string) string {
	var b strings.Builder
	b.WriteString("Extract financial data from this document. Current deal info for reference (only update fields where the document provides NEW or MORE RECENT data):\n")
	fmt.Fprintf(&b, "- Target Company: %s\n", snapshotString(snapshot.TargetCompany))
	fmt.Fprintf(&b, "- Geography: %s\n", snapshotString(snapshot.Geography))
	fmt.Fprintf(&b, "- Valuation: %s\n", snapshotMoney(snapshot.Valuation))
	fmt.Fprintf(&b, "- Revenue: %s\n", snapshotMoney(snapshot.Revenue))
	fmt.Fprintf(&b, "- EBITDA: %s\n", snapshotMoney(snapshot.EBITDA))
	fmt.Fprintf(&b, "\n--- DOCUMENT: %s ---\n%s\n--- END ---\n\n", docName, content)
	b.WriteString(`Return JSON with these fields (use null for any not found in document):
{"valuation": number|null, "revenue": number|null, "ebitda": number|null, "targetCompany": string|null, "geography": string|null}`)
	return b.String()
}

func buildProfilePrompt(fileName, content string) string {
	var b strings.Builder
	b.WriteString("Extract deal information from this document to create a new deal:\n\n")
	fmt.Fprintf(&b, "--- DOCUMENT: %s ---\n%s\n--- END ---\n\n", fileName, content)
	b.WriteString(`Return JSON with these fields:
{"name": string (a short deal name, e.g. "Acme Corp Acquisition" or company name), "description": string|null (brief deal description), "targetCompany": string|null, "geography": string|null, "valuation": number|null (in millions), "revenue": number|null (in millions), "ebitda": number|null (in millions)}`)
	return b.String()
}

func snapshotString(v *string) string {
	if v == nil || *v == "" {
		return "not set"
	}
	return *v
}

func snapshotMoney(v *float64) string {
	if v == nil {
		return "not set"
	}
	return "$" + strconv.FormatFloat(*v, 'f', -1, 64) + "M"
}

func preview(content string) string {
	if len(content) > previewLimit {
		return content[:previewLimit]
	}
	return content
}

// parseFacts decodes loosely and then applies acceptance rules: monetary
// fields must be JSON numbers and non-negative, text fields non-empty
// strings. Anything else is treated as absent, never as an error.
func parseFacts(obj string) (Facts, error) {
	var raw struct {
		Valuation     any `json:"valuation"`
		Revenue       any `json:"revenue"`
		EBITDA        any `json:"ebitda"`
		TargetCompany any `json:"targetCompany"`
		Geography     any `json:"geography"`
	}
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return Facts{}, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	return Facts{
		Valuation:     acceptNumber(raw.Valuation),
		Revenue:       acceptNumber(raw.Revenue),
		EBITDA:        acceptNumber(raw.EBITDA),
		TargetCompany: acceptString(raw.TargetCompany),
		Geography:     acceptString(raw.Geography),
	}, nil
}

func parseProfile(obj string) (DealProfile, error) {
	var raw struct {
		Name          any `json:"name"`
		Description   any `json:"description"`
		Valuation     any `json:"valuation"`
		Revenue       any `json:"revenue"`
		EBITDA        any `json:"ebitda"`
		TargetCompany any `json:"targetCompany"`
		Geography     any `json:"geography"`
	}
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return DealProfile{}, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	profile := DealProfile{
		Description: acceptString(raw.Description),
		Facts: Facts{
			Valuation:     acceptNumber(raw.Valuation),
			Revenue:       acceptNumber(raw.Revenue),
			EBITDA:        acceptNumber(raw.EBITDA),
			TargetCompany: acceptString(raw.TargetCompany),
			Geography:     acceptString(raw.Geography),
		},
	}
	if name := acceptString(raw.Name); name != nil {
		profile.Name = *name
	}
	return profile, nil
}

func acceptNumber(v any) *float64 {
	f, ok := v.(float64)
	if !ok || f < 0 {
		return nil
	}
	return &f
}

func acceptString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
