package deals

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "deal not found" }

// Patch carries partial deal updates; nil fields are left unchanged.
// An empty string on a nullable text field clears it.
type Patch struct {
	Name            *string
	Description     *string
	StageID         *string
	TargetCompany   *string
	Geography       *string
	Valuation       *float64
	Revenue         *float64
	EBITDA          *float64
	Status          *string
	AISummary       *string
	AIAnalysis      *string
	SummaryContext  *string
	AnalysisContext *string
}

func (p Patch) IsZero() bool {
	return p == Patch{}
}

type ListFilter struct {
	StageID string
	Status  string
	Search  string
}

type Repo interface {
	List(ctx context.Context, filter ListFilter) ([]Deal, error)
	GetByID(ctx context.Context, dealID string) (Deal, error)
	Create(ctx context.Context, deal Deal) error
	Update(ctx context.Context, dealID string, patch Patch) (Deal, error)
	Delete(ctx context.Context, dealID string) error
}

type ActivityRepo interface {
	ListByDeal(ctx context.Context, dealID string) ([]Activity, error)
	Create(ctx context.Context, activity Activity) error
	DeleteByDeal(ctx context.Context, dealID string) error
}
