// Package llm abstracts chat-completion providers behind a small client
// interface so services can be tested with fakes.
package llm

import "context"

// Role values for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

type Request struct {
	Model     string
	Messages  []Message
	MaxTokens int
	// Temperature is optional; nil leaves the provider default.
	Temperature *float32
	// JSONOnly asks the provider to constrain output to a JSON object.
	JSONOnly bool
}

// StreamCallback receives each content delta as it arrives. Returning an
// error aborts the stream.
type StreamCallback func(delta string) error

type Client interface {
	// Complete returns the full completion text.
	Complete(ctx context.Context, req Request) (string, error)

	// CompleteStream invokes cb for each delta and returns the accumulated
	// completion once the stream finishes.
	CompleteStream(ctx context.Context, req Request, cb StreamCallback) (string, error)
}
