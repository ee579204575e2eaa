package queue

import "context"

// Client sends messages to a queue backend.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Handler consumes a queue message. Used by the in-process dispatcher so
// the queue package stays independent of the processing code.
type Handler func(ctx context.Context, msg Message) error
