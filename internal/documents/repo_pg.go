package documents

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

const documentColumns = `id, deal_id, name, mime_type, size_bytes, object_path,
category, processed, ai_summary, extracted_text, uploaded_at`

func (r *PGRepo) ListByDeal(ctx context.Context, dealID string) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE deal_id = $1 ORDER BY uploaded_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, dealID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (id, deal_id, name, mime_type, size_bytes, object_path, category, processed, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, false, now())`
	_, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.DealID,
		doc.Name,
		nullString(doc.MimeType),
		nullInt(doc.SizeBytes),
		doc.ObjectPath,
		doc.Category,
	)
	return err
}

func (r *PGRepo) Update(ctx context.Context, documentID string, patch Patch) (Document, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Processed != nil {
		add("processed", *patch.Processed)
	}
	if patch.AISummary != nil {
		add("ai_summary", *patch.AISummary)
	}
	if patch.ExtractedText != nil {
		add("extracted_text", *patch.ExtractedText)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, documentID)
	}
	args = append(args, documentID)
	query := fmt.Sprintf(`UPDATE documents SET %s WHERE id = $%d RETURNING `+documentColumns,
		strings.Join(sets, ", "), len(args))

	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (r *PGRepo) Delete(ctx context.Context, documentID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, documentID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) DeleteByDeal(ctx context.Context, dealID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE deal_id = $1`, dealID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var mimeType sql.NullString
	var sizeBytes sql.NullInt64
	var aiSummary, extractedText sql.NullString
	err := row.Scan(
		&doc.ID,
		&doc.DealID,
		&doc.Name,
		&mimeType,
		&sizeBytes,
		&doc.ObjectPath,
		&doc.Category,
		&doc.Processed,
		&aiSummary,
		&extractedText,
		&doc.UploadedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if mimeType.Valid {
		doc.MimeType = &mimeType.String
	}
	if sizeBytes.Valid {
		doc.SizeBytes = &sizeBytes.Int64
	}
	if aiSummary.Valid {
		doc.AISummary = &aiSummary.String
	}
	if extractedText.Valid {
		doc.ExtractedText = &extractedText.String
	}
	return doc, nil
}

func nullString(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}

func nullInt(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}
