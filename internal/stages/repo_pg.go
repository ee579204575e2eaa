package stages

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

func (r *PGRepo) List(ctx context.Context) ([]Stage, error) {
	const query = `
SELECT id, name, description, color, sort_order
FROM deal_stages
ORDER BY sort_order ASC, name ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Stage, 0)
	for rows.Next() {
		stage, err := scanStage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, stage)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, stageID string) (Stage, error) {
	const query = `
SELECT id, name, description, color, sort_order
FROM deal_stages
WHERE id = $1
LIMIT 1`
	stage, err := scanStage(r.DB.QueryRowContext(ctx, query, stageID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Stage{}, ErrNotFound
		}
		return Stage{}, err
	}
	return stage, nil
}

func (r *PGRepo) Create(ctx context.Context, stage Stage) error {
	const query = `
INSERT INTO deal_stages (id, name, description, color, sort_order)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.DB.ExecContext(ctx, query,
		stage.ID,
		stage.Name,
		nullableString(stage.Description),
		stage.Color,
		stage.SortOrder,
	)
	return err
}

func (r *PGRepo) Update(ctx context.Context, stageID string, patch Patch) (Stage, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", nullableString(*patch.Description))
	}
	if patch.Color != nil {
		add("color", *patch.Color)
	}
	if patch.SortOrder != nil {
		add("sort_order", *patch.SortOrder)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, stageID)
	}
	args = append(args, stageID)
	query := fmt.Sprintf(`
UPDATE deal_stages
SET %s
WHERE id = $%d
RETURNING id, name, description, color, sort_order`, strings.Join(sets, ", "), len(args))

	stage, err := scanStage(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Stage{}, ErrNotFound
		}
		return Stage{}, err
	}
	return stage, nil
}

func (r *PGRepo) Delete(ctx context.Context, stageID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM deal_stages WHERE id = $1`, stageID)
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

func scanStage(row rowScanner) (Stage, error) {
	var stage Stage
	var description sql.NullString
	if err := row.Scan(&stage.ID, &stage.Name, &description, &stage.Color, &stage.SortOrder); err != nil {
		return Stage{}, err
	}
	if description.Valid {
		stage.Description = description.String
	}
	return stage, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
