package stages

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type MemoryRepo struct {
	mu     sync.RWMutex
	stages map[string]Stage
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{stages: make(map[string]Stage)}
}

func (r *MemoryRepo) List(ctx context.Context) ([]Stage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Stage, 0, len(r.stages))
	for _, stage := range r.stages {
		out = append(out, stage)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, stageID string) (Stage, error) {
	if err := ctx.Err(); err != nil {
		return Stage{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	stage, ok := r.stages[stageID]
	if !ok {
		return Stage{}, ErrNotFound
	}
	return stage, nil
}

func (r *MemoryRepo) Create(ctx context.Context, stage Stage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages[stage.ID] = stage
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, stageID string, patch Patch) (Stage, error) {
	if err := ctx.Err(); err != nil {
		return Stage{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stage, ok := r.stages[stageID]
	if !ok {
		return Stage{}, ErrNotFound
	}
	if patch.Name != nil {
		stage.Name = *patch.Name
	}
	if patch.Description != nil {
		stage.Description = *patch.Description
	}
	if patch.Color != nil {
		stage.Color = *patch.Color
	}
	if patch.SortOrder != nil {
		stage.SortOrder = *patch.SortOrder
	}
	r.stages[stageID] = stage
	return stage, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, stageID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stages[stageID]; !ok {
		return ErrNotFound
	}
	delete(r.stages, stageID)
	return nil
}
