package feedback

import (
	"context"
	"database/sql"

	"authenticity-backend/internal/content"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a correction.
func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO analysis_feedback (
	id, analysis_id, user_id, content_type, is_correct, user_verdict, prior_score, comment, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	var analysisID any
	if rec.AnalysisID != "" {
		analysisID = rec.AnalysisID
	}
	_, err := r.DB.ExecContext(ctx, query,
		rec.ID,
		analysisID,
		rec.UserID,
		string(rec.ContentType),
		rec.IsCorrect,
		string(rec.UserVerdict),
		rec.PriorScore,
		rec.Comment,
		rec.CreatedAt,
	)
	return err
}

// ListIncorrect returns recent corrections for a content type.
func (r *PGRepo) ListIncorrect(ctx context.Context, contentType content.Type, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	const query = `
SELECT id, analysis_id, user_id, content_type, is_correct, user_verdict, prior_score, comment, created_at
FROM analysis_feedback
WHERE content_type = $1 AND is_correct = false
ORDER BY created_at DESC
LIMIT $2`

	rows, err := r.DB.QueryContext(ctx, query, string(contentType), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var analysisID sql.NullString
		var ct, verdict string
		if err := rows.Scan(
			&rec.ID,
			&analysisID,
			&rec.UserID,
			&ct,
			&rec.IsCorrect,
			&verdict,
			&rec.PriorScore,
			&rec.Comment,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		if analysisID.Valid {
			rec.AnalysisID = analysisID.String
		}
		rec.ContentType = content.Type(ct)
		rec.UserVerdict = Verdict(verdict)
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
