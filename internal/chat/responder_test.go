package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dealflow-backend/internal/deals"
	"dealflow-backend/internal/documents"
	"dealflow-backend/internal/llm"
	"dealflow-backend/internal/stages"
)

// fakeStreamer replays chunks through the callback, optionally failing
// midway to simulate an aborted stream.
type fakeStreamer struct {
	chunks    []string
	failAfter int // fail after this many chunks; -1 means never
	lastReq   llm.Request
}

func (f *fakeStreamer) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.lastReq = req
	return strings.Join(f.chunks, ""), nil
}

func (f *fakeStreamer) CompleteStream(ctx context.Context, req llm.Request, cb llm.StreamCallback) (string, error) {
	f.lastReq = req
	var full strings.Builder
	for i, chunk := range f.chunks {
		if f.failAfter >= 0 && i == f.failAfter {
			return full.String(), errors.New("stream interrupted")
		}
		full.WriteString(chunk)
		if cb != nil {
			if err := cb(chunk); err != nil {
				return full.String(), err
			}
		}
	}
	return full.String(), nil
}

func newTestResponder(t *testing.T, streamer llm.Client) (*Responder, *MemoryRepo, deals.Deal) {
	t.Helper()
	dealSvc := deals.NewService(deals.NewMemoryRepo(), deals.NewMemoryActivityRepo(), stages.NewService(stages.NewMemoryRepo()))
	deal, err := dealSvc.Create(context.Background(), deals.Deal{Name: "Acme Buyout"})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}
	messages := NewMemoryRepo()
	r := &Responder{
		Deals:    dealSvc,
		Docs:     documents.NewMemoryRepo(),
		Messages: messages,
		LLM:      streamer,
		Model:    "gpt-4o",
	}
	return r, messages, deal
}

func TestChatStreamsAndPersistsBothMessages(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{"Hello", " there"}, failAfter: -1}
	r, messages, deal := newTestResponder(t, streamer)

	var emitted []string
	err := r.Chat(context.Background(), deal.ID, "What is the valuation?", func(delta string) error {
		emitted = append(emitted, delta)
		return nil
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if len(emitted) != 2 || emitted[0] != "Hello" || emitted[1] != " there" {
		t.Fatalf("deltas out of order: %v", emitted)
	}

	history, err := messages.ListByDeal(context.Background(), deal.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected user+assistant messages, got %d", len(history))
	}
	if history[0].Role != llm.RoleUser || history[0].Content != "What is the valuation?" {
		t.Fatalf("user message: %+v", history[0])
	}
	if history[1].Role != llm.RoleAssistant || history[1].Content != "Hello there" {
		t.Fatalf("assistant message: %+v", history[1])
	}

	sys := streamer.lastReq.Messages[0]
	if sys.Role != llm.RoleSystem || !strings.Contains(sys.Content, "--- Current Deal Context ---") {
		t.Fatalf("system prompt missing deal context")
	}
	if !strings.Contains(sys.Content, "Deal: Acme Buyout") {
		t.Fatalf("deal context missing deal name")
	}
}

func TestChatAbortedStreamPersistsNoAssistantMessage(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{"partial", " output"}, failAfter: 1}
	r, messages, deal := newTestResponder(t, streamer)

	err := r.Chat(context.Background(), deal.ID, "hi", func(string) error { return nil })
	if err == nil {
		t.Fatal("expected stream error")
	}

	history, _ := messages.ListByDeal(context.Background(), deal.ID)
	if len(history) != 1 {
		t.Fatalf("only the user message should persist, got %d", len(history))
	}
	if history[0].Role != llm.RoleUser {
		t.Fatalf("unexpected role %q", history[0].Role)
	}
}

func TestGenerateSummaryPersistsOnSuccess(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{"## Deal Overview\n", "Strong fit."}, failAfter: -1}
	r, _, deal := newTestResponder(t, streamer)

	err := r.GenerateSummary(context.Background(), deal.ID, func(string) error { return nil })
	if err != nil {
		t.Fatalf("GenerateSummary: %v", err)
	}

	updated, _ := r.Deals.GetByID(context.Background(), deal.ID)
	if updated.AISummary == nil || *updated.AISummary != "## Deal Overview\nStrong fit." {
		t.Fatalf("summary not persisted: %+v", updated.AISummary)
	}

	acts, _ := r.Deals.ListActivities(context.Background(), deal.ID)
	found := false
	for _, a := range acts {
		if a.Type == deals.ActivitySummaryGenerated {
			found = true
		}
	}
	if !found {
		t.Fatal("summary_generated activity missing")
	}
}

func TestGenerateAnalysisAbortPersistsNothing(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{"analysis text"}, failAfter: 0}
	r, _, deal := newTestResponder(t, streamer)

	if err := r.GenerateAnalysis(context.Background(), deal.ID, func(string) error { return nil }); err == nil {
		t.Fatal("expected stream error")
	}

	updated, _ := r.Deals.GetByID(context.Background(), deal.ID)
	if updated.AIAnalysis != nil {
		t.Fatalf("analysis must not persist on abort: %q", *updated.AIAnalysis)
	}
	acts, _ := r.Deals.ListActivities(context.Background(), deal.ID)
	for _, a := range acts {
		if a.Type == deals.ActivityAnalysisGenerated {
			t.Fatal("analysis_generated activity must not be recorded on abort")
		}
	}
}

func TestGenerateSummaryIncludesExtraContext(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{"ok"}, failAfter: -1}
	r, _, deal := newTestResponder(t, streamer)
	extra := "Focus on synergies"
	if _, err := r.Deals.Update(context.Background(), deal.ID, deals.Patch{SummaryContext: &extra}); err != nil {
		t.Fatalf("update deal: %v", err)
	}

	if err := r.GenerateSummary(context.Background(), deal.ID, func(string) error { return nil }); err != nil {
		t.Fatalf("GenerateSummary: %v", err)
	}

	user := streamer.lastReq.Messages[1].Content
	if !strings.Contains(user, "--- Additional Context/Instructions for Summary ---\nFocus on synergies") {
		t.Fatalf("extra context missing from prompt:\n%s", user)
	}
}

func TestHistoryUnknownDeal(t *testing.T) {
	r, _, _ := newTestResponder(t, &fakeStreamer{failAfter: -1})
	if _, err := r.History(context.Background(), "missing"); !errors.Is(err, deals.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
