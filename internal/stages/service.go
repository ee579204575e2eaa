package stages

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

const defaultColor = "#6366f1"

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Stage, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("stages service not configured")
	}
	return s.Repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, stageID string) (Stage, error) {
	if s == nil || s.Repo == nil {
		return Stage{}, errors.New("stages service not configured")
	}
	if strings.TrimSpace(stageID) == "" {
		return Stage{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, stageID)
}

func (s *Service) Create(ctx context.Context, stage Stage) (Stage, error) {
	if s == nil || s.Repo == nil {
		return Stage{}, errors.New("stages service not configured")
	}
	stage.Name = strings.TrimSpace(stage.Name)
	if stage.Name == "" {
		return Stage{}, errors.New("stage name is required")
	}
	if stage.ID == "" {
		stage.ID = uuid.NewString()
	}
	if strings.TrimSpace(stage.Color) == "" {
		stage.Color = defaultColor
	}
	if err := s.Repo.Create(ctx, stage); err != nil {
		return Stage{}, err
	}
	return stage, nil
}

func (s *Service) Update(ctx context.Context, stageID string, patch Patch) (Stage, error) {
	if s == nil || s.Repo == nil {
		return Stage{}, errors.New("stages service not configured")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return Stage{}, errors.New("stage name cannot be empty")
	}
	return s.Repo.Update(ctx, stageID, patch)
}

func (s *Service) Delete(ctx context.Context, stageID string) error {
	if s == nil || s.Repo == nil {
		return errors.New("stages service not configured")
	}
	return s.Repo.Delete(ctx, stageID)
}

// Seed creates the default pipeline stages when none exist yet. It returns
// the stages present afterwards, so repeated calls are safe.
func (s *Service) Seed(ctx context.Context) ([]Stage, bool, error) {
	if s == nil || s.Repo == nil {
		return nil, false, errors.New("stages service not configured")
	}
	existing, err := s.Repo.List(ctx)
	if err != nil {
		return nil, false, err
	}
	if len(existing) > 0 {
		return existing, false, nil
	}
	created := make([]Stage, 0, len(DefaultStages))
	for _, stage := range DefaultStages {
		stage.ID = uuid.NewString()
		if err := s.Repo.Create(ctx, stage); err != nil {
			return nil, false, err
		}
		created = append(created, stage)
	}
	return created, true, nil
}
