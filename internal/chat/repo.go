package chat

import "context"

// Repo stores the per-deal conversation. ListByDeal returns messages oldest
// first, matching the order they are replayed to the model.
type Repo interface {
	ListByDeal(ctx context.Context, dealID string) ([]Message, error)
	Create(ctx context.Context, msg Message) error
	DeleteByDeal(ctx context.Context, dealID string) error
}
