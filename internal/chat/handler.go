package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dealflow-backend/internal/deals"
	"dealflow-backend/internal/shared/server/respond"
)

type Handler struct {
	Responder *Responder
}

func NewHandler(responder *Responder) *Handler {
	return &Handler{Responder: responder}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/deals/:id/messages", h.history)
	rg.POST("/deals/:id/messages", h.send)
	rg.DELETE("/deals/:id/messages", h.clear)
	rg.POST("/deals/:id/generate-summary", h.generateSummary)
	rg.POST("/deals/:id/generate-analysis", h.generateAnalysis)
}

func (h *Handler) history(c *gin.Context) {
	out, err := h.Responder.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, deals.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "deal not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch messages", nil)
		return
	}
	respond.JSON(c, http.StatusOK, out)
}

func (h *Handler) clear(c *gin.Context) {
	if err := h.Responder.Clear(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, deals.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "deal not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to clear messages", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

type sendRequest struct {
	Content string `json:"content"`
}

func (h *Handler) send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		respond.ValidationError(c, []respond.FieldViolation{{Field: "content", Message: "message content is required"}})
		return
	}
	h.streamTo(c, "Failed to generate response", func(sse *sseStream) error {
		return h.Responder.Chat(c.Request.Context(), c.Param("id"), req.Content, sse.Content)
	})
}

func (h *Handler) generateSummary(c *gin.Context) {
	h.streamTo(c, "Failed to generate summary", func(sse *sseStream) error {
		return h.Responder.GenerateSummary(c.Request.Context(), c.Param("id"), sse.Content)
	})
}

func (h *Handler) generateAnalysis(c *gin.Context) {
	h.streamTo(c, "Failed to generate analysis", func(sse *sseStream) error {
		return h.Responder.GenerateAnalysis(c.Request.Context(), c.Param("id"), sse.Content)
	})
}

// streamTo validates the deal before any SSE bytes go out, so a missing
// deal still gets a regular 404. Once headers are sent, failures surface
// as an error event on the stream instead.
func (h *Handler) streamTo(c *gin.Context, failureMsg string, run func(*sseStream) error) {
	if _, err := h.Responder.Deals.GetByID(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, deals.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "deal not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch deal", nil)
		return
	}

	sse := newSSEStream(c)
	if err := run(sse); err != nil {
		sse.Error(failureMsg)
		return
	}
	sse.Done()
}

// sseStream writes server-sent events in the data-only framing the UI
// consumes: a JSON payload per event, flushed immediately.
type sseStream struct {
	c       *gin.Context
	flusher http.Flusher
}

func newSSEStream(c *gin.Context) *sseStream {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	flusher, _ := c.Writer.(http.Flusher)
	return &sseStream{c: c, flusher: flusher}
}

func (s *sseStream) Content(delta string) error {
	return s.write(map[string]any{"content": delta})
}

func (s *sseStream) Done() {
	_ = s.write(map[string]any{"done": true})
}

func (s *sseStream) Error(msg string) {
	_ = s.write(map[string]any{"error": msg})
}

func (s *sseStream) write(payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := s.c.Writer.WriteString("data: " + string(data) + "\n\n"); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}
