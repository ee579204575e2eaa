package deals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type PGRepo struct {
	DB *sql.DB
}

const dealColumns = `id, name, description, stage_id, target_company, geography,
valuation, revenue, ebitda, status, ai_summary, ai_analysis,
summary_context, analysis_context, created_at, updated_at`

func (r *PGRepo) List(ctx context.Context, filter ListFilter) ([]Deal, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if filter.StageID != "" {
		args = append(args, filter.StageID)
		where = append(where, fmt.Sprintf("stage_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR target_company ILIKE $%d)", len(args), len(args)))
	}
	query := `SELECT ` + dealColumns + ` FROM deals`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Deal, 0)
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, deal)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, dealID string) (Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1 LIMIT 1`
	deal, err := scanDeal(r.DB.QueryRowContext(ctx, query, dealID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Deal{}, ErrNotFound
		}
		return Deal{}, err
	}
	return deal, nil
}

func (r *PGRepo) Create(ctx context.Context, deal Deal) error {
	const query = `
INSERT INTO deals (id, name, description, stage_id, target_company, geography,
  valuation, revenue, ebitda, status, summary_context, analysis_context, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		deal.ID,
		deal.Name,
		nullString(deal.Description),
		nullString(deal.StageID),
		nullString(deal.TargetCompany),
		nullString(deal.Geography),
		nullFloat(deal.Valuation),
		nullFloat(deal.Revenue),
		nullFloat(deal.EBITDA),
		deal.Status,
		nullString(deal.SummaryContext),
		nullString(deal.AnalysisContext),
	)
	return err
}

func (r *PGRepo) Update(ctx context.Context, dealID string, patch Patch) (Deal, error) {
	sets := make([]string, 0, 13)
	args := make([]any, 0, 14)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", emptyToNull(*patch.Description))
	}
	if patch.StageID != nil {
		add("stage_id", emptyToNull(*patch.StageID))
	}
	if patch.TargetCompany != nil {
		add("target_company", emptyToNull(*patch.TargetCompany))
	}
	if patch.Geography != nil {
		add("geography", emptyToNull(*patch.Geography))
	}
	if patch.Valuation != nil {
		add("valuation", *patch.Valuation)
	}
	if patch.Revenue != nil {
		add("revenue", *patch.Revenue)
	}
	if patch.EBITDA != nil {
		add("ebitda", *patch.EBITDA)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.AISummary != nil {
		add("ai_summary", emptyToNull(*patch.AISummary))
	}
	if patch.AIAnalysis != nil {
		add("ai_analysis", emptyToNull(*patch.AIAnalysis))
	}
	if patch.SummaryContext != nil {
		add("summary_context", emptyToNull(*patch.SummaryContext))
	}
	if patch.AnalysisContext != nil {
		add("analysis_context", emptyToNull(*patch.AnalysisContext))
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, dealID)
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, dealID)
	query := fmt.Sprintf(`UPDATE deals SET %s WHERE id = $%d RETURNING `+dealColumns,
		strings.Join(sets, ", "), len(args))

	deal, err := scanDeal(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Deal{}, ErrNotFound
		}
		return Deal{}, err
	}
	return deal, nil
}

func (r *PGRepo) Delete(ctx context.Context, dealID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM deals WHERE id = $1`, dealID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeal(row rowScanner) (Deal, error) {
	var deal Deal
	var description, stageID, targetCompany, geography sql.NullString
	var valuation, revenue, ebitda sql.NullFloat64
	var aiSummary, aiAnalysis, summaryContext, analysisContext sql.NullString
	err := row.Scan(
		&deal.ID,
		&deal.Name,
		&description,
		&stageID,
		&targetCompany,
		&geography,
		&valuation,
		&revenue,
		&ebitda,
		&deal.Status,
		&aiSummary,
		&aiAnalysis,
		&summaryContext,
		&analysisContext,
		&deal.CreatedAt,
		&deal.UpdatedAt,
	)
	if err != nil {
		return Deal{}, err
	}
	deal.Description = fromNullString(description)
	deal.StageID = fromNullString(stageID)
	deal.TargetCompany = fromNullString(targetCompany)
	deal.Geography = fromNullString(geography)
	deal.Valuation = fromNullFloat(valuation)
	deal.Revenue = fromNullFloat(revenue)
	deal.EBITDA = fromNullFloat(ebitda)
	deal.AISummary = fromNullString(aiSummary)
	deal.AIAnalysis = fromNullString(aiAnalysis)
	deal.SummaryContext = fromNullString(summaryContext)
	deal.AnalysisContext = fromNullString(analysisContext)
	return deal, nil
}

func nullString(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}

func nullFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func emptyToNull(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func fromNullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func fromNullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
