package deals

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	deals map[string]Deal
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{deals: make(map[string]Deal)}
}

func (r *MemoryRepo) List(ctx context.Context, filter ListFilter) ([]Deal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Deal, 0, len(r.deals))
	for _, deal := range r.deals {
		if filter.StageID != "" && (deal.StageID == nil || *deal.StageID != filter.StageID) {
			continue
		}
		if filter.Status != "" && deal.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !matchesSearch(deal, filter.Search) {
			continue
		}
		out = append(out, deal)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func matchesSearch(deal Deal, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(deal.Name), term) {
		return true
	}
	return deal.TargetCompany != nil && strings.Contains(strings.ToLower(*deal.TargetCompany), term)
}

func (r *MemoryRepo) GetByID(ctx context.Context, dealID string) (Deal, error) {
	if err := ctx.Err(); err != nil {
		return Deal{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	deal, ok := r.deals[dealID]
	if !ok {
		return Deal{}, ErrNotFound
	}
	return deal, nil
}

func (r *MemoryRepo) Create(ctx context.Context, deal Deal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	deal.CreatedAt = now
	deal.UpdatedAt = now
	r.deals[deal.ID] = deal
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, dealID string, patch Patch) (Deal, error) {
	if err := ctx.Err(); err != nil {
		return Deal{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	deal, ok := r.deals[dealID]
	if !ok {
		return Deal{}, ErrNotFound
	}
	if patch.Name != nil {
		deal.Name = *patch.Name
	}
	if patch.Description != nil {
		deal.Description = optString(*patch.Description)
	}
	if patch.StageID != nil {
		deal.StageID = optString(*patch.StageID)
	}
	if patch.TargetCompany != nil {
		deal.TargetCompany = optString(*patch.TargetCompany)
	}
	if patch.Geography != nil {
		deal.Geography = optString(*patch.Geography)
	}
	if patch.Valuation != nil {
		v := *patch.Valuation
		deal.Valuation = &v
	}
	if patch.Revenue != nil {
		v := *patch.Revenue
		deal.Revenue = &v
	}
	if patch.EBITDA != nil {
		v := *patch.EBITDA
		deal.EBITDA = &v
	}
	if patch.Status != nil {
		deal.Status = *patch.Status
	}
	if patch.AISummary != nil {
		deal.AISummary = optString(*patch.AISummary)
	}
	if patch.AIAnalysis != nil {
		deal.AIAnalysis = optString(*patch.AIAnalysis)
	}
	if patch.SummaryContext != nil {
		deal.SummaryContext = optString(*patch.SummaryContext)
	}
	if patch.AnalysisContext != nil {
		deal.AnalysisContext = optString(*patch.AnalysisContext)
	}
	deal.UpdatedAt = time.Now().UTC()
	r.deals[dealID] = deal
	return deal, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, dealID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.deals[dealID]; !ok {
		return ErrNotFound
	}
	delete(r.deals, dealID)
	return nil
}

func optString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

type MemoryActivityRepo struct {
	mu         sync.RWMutex
	activities map[string][]Activity
}

func NewMemoryActivityRepo() *MemoryActivityRepo {
	return &MemoryActivityRepo{activities: make(map[string][]Activity)}
}

func (r *MemoryActivityRepo) ListByDeal(ctx context.Context, dealID string) ([]Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.activities[dealID]
	out := make([]Activity, len(src))
	copy(out, src)
	// Newest first for the activity feed.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryActivityRepo) Create(ctx context.Context, activity Activity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	r.activities[activity.DealID] = append(r.activities[activity.DealID], activity)
	return nil
}

func (r *MemoryActivityRepo) DeleteByDeal(ctx context.Context, dealID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.activities, dealID)
	return nil
}
