package stages

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "stage not found" }

// Patch carries partial stage updates; nil fields are left unchanged.
type Patch struct {
	Name        *string
	Description *string
	Color       *string
	SortOrder   *int
}

type Repo interface {
	List(ctx context.Context) ([]Stage, error)
	GetByID(ctx context.Context, stageID string) (Stage, error)
	Create(ctx context.Context, stage Stage) error
	Update(ctx context.Context, stageID string, patch Patch) (Stage, error)
	Delete(ctx context.Context, stageID string) error
}
