package chat

import (
	"context"
	"database/sql"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) ListByDeal(ctx context.Context, dealID string) ([]Message, error) {
	const query = `
SELECT id, deal_id, role, content, created_at
FROM deal_messages
WHERE deal_id = $1
ORDER BY created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, dealID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Message, 0)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.DealID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PGRepo) Create(ctx context.Context, msg Message) error {
	const query = `
INSERT INTO deal_messages (id, deal_id, role, content, created_at)
VALUES ($1, $2, $3, $4, now())`
	_, err := r.DB.ExecContext(ctx, query, msg.ID, msg.DealID, msg.Role, msg.Content)
	return err
}

func (r *PGRepo) DeleteByDeal(ctx context.Context, dealID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM deal_messages WHERE deal_id = $1`, dealID)
	return err
}
