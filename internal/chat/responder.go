package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"dealflow-backend/internal/deals"
	"dealflow-backend/internal/documents"
	"dealflow-backend/internal/llm"
	"dealflow-backend/internal/shared/metrics"
	"dealflow-backend/internal/shared/telemetry"
)

const defaultStreamMaxTokens = 4096

// DocumentSource lists the documents belonging to a deal.
type DocumentSource interface {
	ListByDeal(ctx context.Context, dealID string) ([]documents.Document, error)
}

// Responder runs the streaming generations: chat replies, deal summaries,
// and investment analyses. Results are only persisted after a stream
// finishes cleanly.
type Responder struct {
	Deals     *deals.Service
	Docs      DocumentSource
	Messages  Repo
	LLM       llm.Client
	Model     string
	MaxTokens int
}

func (r *Responder) maxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return defaultStreamMaxTokens
}

func (r *Responder) History(ctx context.Context, dealID string) ([]Message, error) {
	if r == nil || r.Messages == nil {
		return nil, errors.New("chat responder not configured")
	}
	if _, err := r.Deals.GetByID(ctx, dealID); err != nil {
		return nil, err
	}
	return r.Messages.ListByDeal(ctx, dealID)
}

func (r *Responder) Clear(ctx context.Context, dealID string) error {
	if r == nil || r.Messages == nil {
		return errors.New("chat responder not configured")
	}
	if _, err := r.Deals.GetByID(ctx, dealID); err != nil {
		return err
	}
	return r.Messages.DeleteByDeal(ctx, dealID)
}

// Chat persists the user message, streams the assistant reply through emit,
// and persists the reply once the stream completes. An aborted stream
// leaves no assistant message behind.
func (r *Responder) Chat(ctx context.Context, dealID, content string, emit llm.StreamCallback) error {
	if r == nil || r.LLM == nil || r.Messages == nil {
		return errors.New("chat responder not configured")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return errors.New("message content is required")
	}
	deal, err := r.Deals.GetByID(ctx, dealID)
	if err != nil {
		return err
	}

	err = r.Messages.Create(ctx, Message{
		ID:      uuid.NewString(),
		DealID:  dealID,
		Role:    llm.RoleUser,
		Content: content,
	})
	if err != nil {
		return err
	}

	docs, err := r.Docs.ListByDeal(ctx, dealID)
	if err != nil {
		return err
	}
	history, err := r.Messages.ListByDeal(ctx, dealID)
	if err != nil {
		return err
	}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: llm.SystemPrompt + "\n\n--- Current Deal Context ---\n" + BuildDealContext(deal, docs),
	})
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}

	full, err := r.stream(ctx, messages, emit)
	if err != nil {
		return err
	}

	return r.Messages.Create(ctx, Message{
		ID:      uuid.NewString(),
		DealID:  dealID,
		Role:    llm.RoleAssistant,
		Content: full,
	})
}

// GenerateSummary streams an executive summary and stores it on the deal.
func (r *Responder) GenerateSummary(ctx context.Context, dealID string, emit llm.StreamCallback) error {
	return r.generate(ctx, dealID, generateSpec{
		prompt:       llm.SummaryPrompt,
		contextLabel: "Summary",
		extraContext: func(d deals.Deal) *string { return d.SummaryContext },
		persist: func(ctx context.Context, dealID, text string) error {
			_, err := r.Deals.Update(ctx, dealID, deals.Patch{AISummary: &text})
			return err
		},
		activityType: deals.ActivitySummaryGenerated,
		activityText: "AI deal summary was generated",
	}, emit)
}

// GenerateAnalysis streams an investment analysis and stores it on the deal.
func (r *Responder) GenerateAnalysis(ctx context.Context, dealID string, emit llm.StreamCallback) error {
	return r.generate(ctx, dealID, generateSpec{
		prompt:       llm.AnalysisPrompt,
		contextLabel: "Analysis",
		extraContext: func(d deals.Deal) *string { return d.AnalysisContext },
		persist: func(ctx context.Context, dealID, text string) error {
			_, err := r.Deals.Update(ctx, dealID, deals.Patch{AIAnalysis: &text})
			return err
		},
		activityType: deals.ActivityAnalysisGenerated,
		activityText: "AI deal analysis was generated",
	}, emit)
}

type generateSpec struct {
	prompt       string
	contextLabel string
	extraContext func(deals.Deal) *string
	persist      func(ctx context.Context, dealID, text string) error
	activityType string
	activityText string
}

func (r *Responder) generate(ctx context.Context, dealID string, spec generateSpec, emit llm.StreamCallback) error {
	if r == nil || r.LLM == nil {
		return errors.New("chat responder not configured")
	}
	deal, err := r.Deals.GetByID(ctx, dealID)
	if err != nil {
		return err
	}
	docs, err := r.Docs.ListByDeal(ctx, dealID)
	if err != nil {
		return err
	}

	userPrompt := spec.prompt
	if extra := spec.extraContext(deal); extra != nil && *extra != "" {
		userPrompt += "\n\n--- Additional Context/Instructions for " + spec.contextLabel + " ---\n" + *extra
	}
	userPrompt += "\n\n--- Deal Data ---\n" + BuildDealContext(deal, docs)

	full, err := r.stream(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: llm.SystemPrompt},
		{Role: llm.RoleUser, Content: userPrompt},
	}, emit)
	if err != nil {
		return err
	}

	if err := spec.persist(ctx, dealID, full); err != nil {
		return err
	}
	r.Deals.RecordActivity(ctx, dealID, spec.activityType, spec.activityText)
	return nil
}

func (r *Responder) stream(ctx context.Context, messages []llm.Message, emit llm.StreamCallback) (string, error) {
	metrics.IncStreamStarted()
	full, err := r.LLM.CompleteStream(ctx, llm.Request{
		Model:     r.Model,
		Messages:  messages,
		MaxTokens: r.maxTokens(),
	}, emit)
	if err != nil {
		metrics.IncStreamFailed()
		telemetry.Error("chat.stream_failed", map[string]any{"error": err.Error()})
		return "", err
	}
	metrics.IncStreamCompleted()
	return full, nil
}
