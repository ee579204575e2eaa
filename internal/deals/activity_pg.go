package deals

import (
	"context"
	"database/sql"
)

type PGActivityRepo struct {
	DB *sql.DB
}

func (r *PGActivityRepo) ListByDeal(ctx context.Context, dealID string) ([]Activity, error) {
	const query = `
SELECT id, deal_id, type, description, created_at
FROM deal_activities
WHERE deal_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, dealID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Activity, 0)
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.DealID, &a.Type, &a.Description, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PGActivityRepo) Create(ctx context.Context, activity Activity) error {
	const query = `
INSERT INTO deal_activities (id, deal_id, type, description, created_at)
VALUES ($1, $2, $3, $4, now())`
	_, err := r.DB.ExecContext(ctx, query,
		activity.ID,
		activity.DealID,
		activity.Type,
		activity.Description,
	)
	return err
}

// DeleteByDeal exists for parity with the in-memory store; in Postgres the
// foreign key cascade already removes activities with their deal.
func (r *PGActivityRepo) DeleteByDeal(ctx context.Context, dealID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM deal_activities WHERE deal_id = $1`, dealID)
	return err
}
