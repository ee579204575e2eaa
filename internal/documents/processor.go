package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dealflow-backend/internal/extract"
	"dealflow-backend/internal/facts"
	"dealflow-backend/internal/llm"
	"dealflow-backend/internal/shared/metrics"
	"dealflow-backend/internal/shared/storage/object"
	"dealflow-backend/internal/shared/telemetry"
)

const (
	previewLimit     = 8000
	storedTextLimit  = 50000
	summaryMaxTokens = 2000
)

const summarySystemPrompt = `You are a document analysis assistant specializing in M&A and Private Equity. Analyze the actual document content provided and create a thorough summary. Focus on financial data, legal terms, business metrics, and strategic insights. CRITICAL: Do NOT fabricate, invent, or hallucinate any data. Only use information explicitly present in the document content. If information is missing, state it is unavailable.`

// Processor runs the document pipeline: extract text, summarize, persist,
// then reconcile extracted financial facts onto the owning deal.
type Processor struct {
	Docs  Repo
	Deals interface {
		Snapshot(ctx context.Context, dealID string) (facts.DealSnapshot, error)
		ApplyFacts(ctx context.Context, dealID string, f facts.Facts, docName string) error
	}
	Store object.ObjectStore
	LLM   llm.Client
	Facts *facts.Extractor
	Model string
}

// Process handles a single document end to end. A summarization failure
// leaves the document unprocessed so redelivery can retry it; fact
// reconciliation failures are logged and never fail the pipeline.
func (p *Processor) Process(ctx context.Context, documentID string) error {
	if p == nil || p.Docs == nil || p.Store == nil || p.LLM == nil {
		return errors.New("document processor not configured")
	}
	start := time.Now()

	doc, err := p.Docs.GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	mimeType := ""
	if doc.MimeType != nil {
		mimeType = *doc.MimeType
	}
	text := extract.ExtractText(ctx, p.Store, doc.ObjectPath, doc.Name, mimeType)
	telemetry.Info("document.extracted", map[string]any{
		"document_id": doc.ID,
		"deal_id":     doc.DealID,
		"chars":       len(text),
	})

	preview := text
	if len(preview) > previewLimit {
		preview = preview[:previewLimit]
	}

	summary, err := p.LLM.Complete(ctx, llm.Request{
		Model: p.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: summarySystemPrompt},
			{Role: llm.RoleUser, Content: buildSummaryPrompt(doc, preview)},
		},
		MaxTokens: summaryMaxTokens,
	})
	if err != nil {
		metrics.IncDocumentFailed()
		return fmt.Errorf("summarize document %s: %w", doc.ID, err)
	}

	processed := true
	stored := text
	if len(stored) > storedTextLimit {
		stored = stored[:storedTextLimit]
	}
	if _, err := p.Docs.Update(ctx, doc.ID, Patch{
		Processed:     &processed,
		AISummary:     &summary,
		ExtractedText: &stored,
	}); err != nil {
		metrics.IncDocumentFailed()
		return fmt.Errorf("persist document %s: %w", doc.ID, err)
	}

	metrics.IncDocumentProcessed()
	metrics.ObserveProcessingDurationMs(float64(time.Since(start).Milliseconds()))

	p.reconcileFacts(ctx, doc, preview)
	return nil
}

func (p *Processor) reconcileFacts(ctx context.Context, doc Document, preview string) {
	if p.Facts == nil || p.Deals == nil {
		return
	}
	snapshot, err := p.Deals.Snapshot(ctx, doc.DealID)
	if err != nil {
		telemetry.Error("document.facts_skipped", map[string]any{
			"document_id": doc.ID,
			"deal_id":     doc.DealID,
			"error":       err.Error(),
		})
		return
	}
	extracted, err := p.Facts.Extract(ctx, snapshot, doc.Name, preview)
	if err != nil {
		telemetry.Error("document.facts_failed", map[string]any{
			"document_id": doc.ID,
			"deal_id":     doc.DealID,
			"error":       err.Error(),
		})
		return
	}
	if err := p.Deals.ApplyFacts(ctx, doc.DealID, extracted, doc.Name); err != nil {
		telemetry.Error("document.facts_failed", map[string]any{
			"document_id": doc.ID,
			"deal_id":     doc.DealID,
			"error":       err.Error(),
		})
	}
}

func buildSummaryPrompt(doc Document, content string) string {
	mimeType := "unknown"
	if doc.MimeType != nil && *doc.MimeType != "" {
		mimeType = *doc.MimeType
	}
	category := doc.Category
	if category == "" {
		category = defaultCategory
	}
	return fmt.Sprintf(`Please analyze and summarize this document:

Document Name: %s
Category: %s
Type: %s

--- DOCUMENT CONTENT ---
%s
--- END DOCUMENT CONTENT ---

Provide a detailed summary focusing on key financial data, business metrics, legal terms, and strategic insights that would be relevant for M&A due diligence. Reference specific numbers and data points from the document.`, doc.Name, category, mimeType, content)
}
