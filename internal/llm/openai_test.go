package llm

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestBuildChatRequestMapsFields(t *testing.T) {
	temp := float32(0.2)
	req := Request{
		Model: "gpt-4o",
		Messages: []Message{
			{Role: RoleSystem, Content: "be terse"},
			{Role: RoleUser, Content: "hello"},
		},
		MaxTokens:   4096,
		Temperature: &temp,
		JSONOnly:    true,
	}

	out := buildChatRequest(req, true)

	if out.Model != "gpt-4o" || !out.Stream {
		t.Fatalf("model/stream: %+v", out)
	}
	if out.MaxTokens != 4096 {
		t.Fatalf("max tokens = %d, want 4096", out.MaxTokens)
	}
	if out.Temperature != 0.2 {
		t.Fatalf("temperature = %v", out.Temperature)
	}
	if out.ResponseFormat == nil || out.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
		t.Fatalf("response format: %+v", out.ResponseFormat)
	}
	if len(out.Messages) != 2 || out.Messages[0].Role != RoleSystem || out.Messages[1].Content != "hello" {
		t.Fatalf("messages: %+v", out.Messages)
	}
}

func TestBuildChatRequestDefaults(t *testing.T) {
	out := buildChatRequest(Request{Model: "gpt-4o"}, false)
	if out.Stream {
		t.Fatal("stream should be off")
	}
	if out.MaxTokens != 0 {
		t.Fatalf("max tokens should stay unset, got %d", out.MaxTokens)
	}
	if out.ResponseFormat != nil {
		t.Fatalf("response format should stay unset: %+v", out.ResponseFormat)
	}
}
