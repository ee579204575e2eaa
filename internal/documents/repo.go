package documents

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "document not found" }

// Patch carries the fields processing writes back; nil means unchanged.
type Patch struct {
	Processed     *bool
	AISummary     *string
	ExtractedText *string
	Category      *string
}

type Repo interface {
	ListByDeal(ctx context.Context, dealID string) ([]Document, error)
	GetByID(ctx context.Context, documentID string) (Document, error)
	Create(ctx context.Context, doc Document) error
	Update(ctx context.Context, documentID string, patch Patch) (Document, error)
	Delete(ctx context.Context, documentID string) error
	DeleteByDeal(ctx context.Context, dealID string) error
}
