package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"authenticity-backend/internal/content"
	"authenticity-backend/internal/verdict"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, user_id, content_type, authenticity_score, status, detailed_analysis,
       manipulation_indicators, content_preview, created_at`

// Create inserts a new record.
func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO analysis_results (
	id, user_id, content_type, authenticity_score, status, detailed_analysis,
	manipulation_indicators, content_preview, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	indicators, err := marshalIndicators(rec.Indicators)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		string(rec.ContentType),
		rec.Score,
		string(rec.Status),
		rec.Details,
		indicators,
		rec.Preview,
		rec.CreatedAt,
	)
	return err
}

// GetByID returns one of the caller's records.
func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (Record, error) {
	query := `
SELECT ` + selectColumns + `
FROM analysis_results
WHERE id = $1 AND user_id = $2
LIMIT 1`
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// ListByUser lists a caller's records newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Record, error) {
	limit, offset = normalizePage(limit, offset)
	query := `
SELECT ` + selectColumns + `
FROM analysis_results
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	var ct, status string
	var indicators []byte
	if err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&ct,
		&rec.Score,
		&status,
		&rec.Details,
		&indicators,
		&rec.Preview,
		&rec.CreatedAt,
	); err != nil {
		return Record{}, err
	}
	rec.ContentType = content.Type(ct)
	rec.Status = verdict.Status(status)
	if len(indicators) > 0 {
		// malformed rows keep an empty list
		_ = json.Unmarshal(indicators, &rec.Indicators)
	}
	if rec.Indicators == nil {
		rec.Indicators = []string{}
	}
	return rec, nil
}

func marshalIndicators(indicators []string) (string, error) {
	if indicators == nil {
		indicators = []string{}
	}
	b, err := json.Marshal(indicators)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var _ Repo = (*PGRepo)(nil)
