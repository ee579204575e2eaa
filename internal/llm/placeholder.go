package llm

import (
	"context"
	"errors"
)

var errNotConfigured = errors.New("llm client not configured")

// Placeholder satisfies Client when no provider credentials are set, so the
// rest of the app can boot; any generation attempt fails loudly.
type Placeholder struct{}

func (Placeholder) Complete(ctx context.Context, req Request) (string, error) {
	return "", errNotConfigured
}

func (Placeholder) CompleteStream(ctx context.Context, req Request, cb StreamCallback) (string, error) {
	return "", errNotConfigured
}

var _ Client = Placeholder{}
