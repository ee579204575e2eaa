package deals

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"dealflow-backend/internal/facts"
	"dealflow-backend/internal/shared/metrics"
	"dealflow-backend/internal/shared/telemetry"
	"dealflow-backend/internal/stages"
)

const defaultStatus = "active"

type Service struct {
	Repo       Repo
	Activities ActivityRepo
	Stages     *stages.Service

	// Cascades run before a deal row is deleted so dependent stores
	// (documents, messages) stay consistent when no foreign keys exist.
	Cascades []func(ctx context.Context, dealID string) error
}

func NewService(repo Repo, activities ActivityRepo, stageSvc *stages.Service) *Service {
	return &Service{Repo: repo, Activities: activities, Stages: stageSvc}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Deal, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("deals service not configured")
	}
	return s.Repo.List(ctx, filter)
}

func (s *Service) GetByID(ctx context.Context, dealID string) (Deal, error) {
	if s == nil || s.Repo == nil {
		return Deal{}, errors.New("deals service not configured")
	}
	if strings.TrimSpace(dealID) == "" {
		return Deal{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, dealID)
}

func (s *Service) Create(ctx context.Context, deal Deal) (Deal, error) {
	if s == nil || s.Repo == nil {
		return Deal{}, errors.New("deals service not configured")
	}
	deal.Name = strings.TrimSpace(deal.Name)
	if deal.Name == "" {
		return Deal{}, errors.New("deal name is required")
	}
	if err := validateFinancials(deal.Valuation, deal.Revenue, deal.EBITDA); err != nil {
		return Deal{}, err
	}
	if deal.ID == "" {
		deal.ID = uuid.NewString()
	}
	if deal.Status == "" {
		deal.Status = defaultStatus
	}
	if err := s.Repo.Create(ctx, deal); err != nil {
		return Deal{}, err
	}
	s.recordActivity(ctx, deal.ID, ActivityDealCreated, fmt.Sprintf("Deal %q was created", deal.Name))
	return deal, nil
}

// CreateFromDocument creates a deal and records the source document in the
// activity trail.
func (s *Service) CreateFromDocument(ctx context.Context, deal Deal, fileName string) (Deal, error) {
	if s == nil || s.Repo == nil {
		return Deal{}, errors.New("deals service not configured")
	}
	deal.Name = strings.TrimSpace(deal.Name)
	if deal.Name == "" {
		return Deal{}, errors.New("deal name is required")
	}
	if err := validateFinancials(deal.Valuation, deal.Revenue, deal.EBITDA); err != nil {
		return Deal{}, err
	}
	if deal.ID == "" {
		deal.ID = uuid.NewString()
	}
	if deal.Status == "" {
		deal.Status = defaultStatus
	}
	if err := s.Repo.Create(ctx, deal); err != nil {
		return Deal{}, err
	}
	s.recordActivity(ctx, deal.ID, ActivityDealCreated,
		fmt.Sprintf("Deal %q was created from document %q", deal.Name, fileName))
	return deal, nil
}

func (s *Service) Update(ctx context.Context, dealID string, patch Patch) (Deal, error) {
	if s == nil || s.Repo == nil {
		return Deal{}, errors.New("deals service not configured")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return Deal{}, errors.New("deal name cannot be empty")
	}
	if err := validateFinancials(patch.Valuation, patch.Revenue, patch.EBITDA); err != nil {
		return Deal{}, err
	}
	deal, err := s.Repo.Update(ctx, dealID, patch)
	if err != nil {
		return Deal{}, err
	}
	if patch.StageID != nil && *patch.StageID != "" && s.Stages != nil {
		if stage, err := s.Stages.GetByID(ctx, *patch.StageID); err == nil {
			s.recordActivity(ctx, dealID, ActivityStageChanged,
				fmt.Sprintf("Deal moved to %q stage", stage.Name))
		}
	}
	return deal, nil
}

func (s *Service) Delete(ctx context.Context, dealID string) error {
	if s == nil || s.Repo == nil {
		return errors.New("deals service not configured")
	}
	if _, err := s.Repo.GetByID(ctx, dealID); err != nil {
		return err
	}
	for _, cascade := range s.Cascades {
		if err := cascade(ctx, dealID); err != nil {
			telemetry.Error("deal.cascade_failed", map[string]any{
				"deal_id": dealID,
				"error":   err.Error(),
			})
		}
	}
	if s.Activities != nil {
		if err := s.Activities.DeleteByDeal(ctx, dealID); err != nil {
			telemetry.Error("deal.cascade_failed", map[string]any{
				"deal_id": dealID,
				"error":   err.Error(),
			})
		}
	}
	return s.Repo.Delete(ctx, dealID)
}

func (s *Service) ListActivities(ctx context.Context, dealID string) ([]Activity, error) {
	if s == nil || s.Activities == nil {
		return nil, errors.New("deals service not configured")
	}
	if _, err := s.GetByID(ctx, dealID); err != nil {
		return nil, err
	}
	return s.Activities.ListByDeal(ctx, dealID)
}

// Snapshot returns the current financial state of a deal in the shape the
// fact extractor quotes back to the model.
func (s *Service) Snapshot(ctx context.Context, dealID string) (facts.DealSnapshot, error) {
	deal, err := s.GetByID(ctx, dealID)
	if err != nil {
		return facts.DealSnapshot{}, err
	}
	return facts.DealSnapshot{
		TargetCompany: deal.TargetCompany,
		Geography:     deal.Geography,
		Valuation:     deal.Valuation,
		Revenue:       deal.Revenue,
		EBITDA:        deal.EBITDA,
	}, nil
}

// ApplyFacts reconciles extracted financial facts onto a deal. A single
// update and a single activity are written no matter how many fields
// changed; when nothing changed, nothing is written at all.
func (s *Service) ApplyFacts(ctx context.Context, dealID string, f facts.Facts, docName string) error {
	if s == nil || s.Repo == nil {
		return errors.New("deals service not configured")
	}
	deal, err := s.Repo.GetByID(ctx, dealID)
	if err != nil {
		return err
	}
	patch, changed := MergeFacts(deal, f)
	if patch.IsZero() {
		telemetry.Info("deal.facts_noop", map[string]any{
			"deal_id":  dealID,
			"document": docName,
		})
		return nil
	}
	if _, err := s.Repo.Update(ctx, dealID, patch); err != nil {
		return err
	}
	s.recordActivity(ctx, dealID, ActivityDocumentProcessed,
		fmt.Sprintf("Financial data extracted from %q: %s", docName, strings.Join(changed, ", ")))
	metrics.IncFactsApplied()
	telemetry.Info("deal.facts_applied", map[string]any{
		"deal_id":  dealID,
		"document": docName,
		"fields":   changed,
	})
	return nil
}

// RecordActivity appends to the deal activity trail. Failures are logged
// rather than surfaced so the primary operation is never rolled back over
// an audit entry.
func (s *Service) RecordActivity(ctx context.Context, dealID, activityType, description string) {
	s.recordActivity(ctx, dealID, activityType, description)
}

func (s *Service) recordActivity(ctx context.Context, dealID, activityType, description string) {
	if s.Activities == nil {
		return
	}
	err := s.Activities.Create(ctx, Activity{
		ID:          uuid.NewString(),
		DealID:      dealID,
		Type:        activityType,
		Description: description,
	})
	if err != nil {
		telemetry.Error("deal.activity_failed", map[string]any{
			"deal_id": dealID,
			"type":    activityType,
			"error":   err.Error(),
		})
	}
}

func validateFinancials(values ...*float64) error {
	for _, v := range values {
		if v != nil && *v < 0 {
			return errors.New("financial figures cannot be negative")
		}
	}
	return nil
}
