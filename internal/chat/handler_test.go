package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"dealflow-backend/internal/deals"
)

func setupChatRouter(t *testing.T, streamer *fakeStreamer) (*gin.Engine, *Responder, *MemoryRepo, deals.Deal) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	responder, messages, deal := newTestResponder(t, streamer)
	router := gin.New()
	NewHandler(responder).RegisterRoutes(router.Group("/api/v1"))
	return router, responder, messages, deal
}

// sseFrames splits an event-stream body into its data payloads.
func sseFrames(t *testing.T, body string) []string {
	t.Helper()
	var frames []string
	for _, block := range strings.Split(body, "\n\n") {
		if block == "" {
			continue
		}
		if !strings.HasPrefix(block, "data: ") {
			t.Fatalf("frame missing data prefix: %q", block)
		}
		frames = append(frames, strings.TrimPrefix(block, "data: "))
	}
	return frames
}

func TestSendStreamsContentThenDone(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{"Hello", " there"}, failAfter: -1}
	router, _, messages, deal := setupChatRouter(t, streamer)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deals/"+deal.ID+"/messages",
		strings.NewReader(`{"content": "What is the valuation?"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	frames := sseFrames(t, resp.Body.String())
	want := []string{`{"content":"Hello"}`, `{"content":" there"}`, `{"done":true}`}
	if len(frames) != len(want) {
		t.Fatalf("got %d frames, want %d: %v", len(frames), len(want), frames)
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Fatalf("frame %d = %q, want %q", i, frames[i], want[i])
		}
	}

	// The done event terminates the stream only after the reply is stored.
	history, _ := messages.ListByDeal(context.Background(), deal.ID)
	if len(history) != 2 || history[1].Content != "Hello there" {
		t.Fatalf("assistant message not persisted before done: %+v", history)
	}
}

func TestSendMidStreamFailureEmitsErrorEvent(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{"partial", " output"}, failAfter: 1}
	router, _, messages, deal := setupChatRouter(t, streamer)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deals/"+deal.ID+"/messages",
		strings.NewReader(`{"content": "hi"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// Headers were already sent when the stream broke.
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	frames := sseFrames(t, resp.Body.String())
	if len(frames) != 2 {
		t.Fatalf("got %d frames: %v", len(frames), frames)
	}
	if frames[0] != `{"content":"partial"}` {
		t.Fatalf("first frame = %q", frames[0])
	}
	if frames[1] != `{"error":"Failed to generate response"}` {
		t.Fatalf("last frame = %q", frames[1])
	}
	for _, f := range frames {
		if strings.Contains(f, "done") {
			t.Fatal("a failed stream must not emit done")
		}
	}

	history, _ := messages.ListByDeal(context.Background(), deal.ID)
	if len(history) != 1 {
		t.Fatalf("only the user message should persist, got %d", len(history))
	}
}

func TestSendUnknownDealIsPlain404(t *testing.T) {
	router, _, _, _ := setupChatRouter(t, &fakeStreamer{failAfter: -1})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deals/missing/messages",
		strings.NewReader(`{"content": "hi"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("404 must be a plain JSON response, got content type %q", ct)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != "not_found" {
		t.Fatalf("error code = %q", body.Error.Code)
	}
}

func TestSendBlankContentRejected(t *testing.T) {
	router, _, _, deal := setupChatRouter(t, &fakeStreamer{failAfter: -1})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deals/"+deal.ID+"/messages",
		strings.NewReader(`{"content": "   "}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestGenerateSummaryEndpointStreamsAndPersists(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{"## Overview\n", "Looks solid."}, failAfter: -1}
	router, responder, _, deal := setupChatRouter(t, streamer)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deals/"+deal.ID+"/generate-summary", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	frames := sseFrames(t, resp.Body.String())
	if len(frames) != 3 || frames[2] != `{"done":true}` {
		t.Fatalf("unexpected frames: %v", frames)
	}

	updated, _ := responder.Deals.GetByID(context.Background(), deal.ID)
	if updated.AISummary == nil || *updated.AISummary != "## Overview\nLooks solid." {
		t.Fatalf("summary not persisted: %v", updated.AISummary)
	}
}
