package deals

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateBindsNullables(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	deal := Deal{
		ID:        "deal-1",
		Name:      "Acme Buyout",
		Valuation: f64(500),
		Status:    "active",
	}

	mock.ExpectExec("INSERT INTO deals").
		WithArgs(
			deal.ID,
			deal.Name,
			nil, // description
			nil, // stage_id
			nil, // target_company
			nil, // geography
			500.0,
			nil, // revenue
			nil, // ebitda
			deal.Status,
			nil, // summary_context
			nil, // analysis_context
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), deal); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT (.+) FROM deals").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListAppliesFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT (.+) FROM deals WHERE stage_id = \\$1 AND status = \\$2 AND \\(name ILIKE \\$3 OR target_company ILIKE \\$3\\)").
		WithArgs("stage-1", "active", "%acme%").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "stage_id", "target_company", "geography",
			"valuation", "revenue", "ebitda", "status", "ai_summary", "ai_analysis",
			"summary_context", "analysis_context", "created_at", "updated_at",
		}))

	repo := &PGRepo{DB: db}
	out, err := repo.List(context.Background(), ListFilter{StageID: "stage-1", Status: "active", Search: "acme"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty result, got %d", len(out))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
