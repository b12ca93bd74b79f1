package analyses

import (
	"context"
	"time"

	"github.com/google/uuid"

	"authenticity-backend/internal/content"
	"authenticity-backend/internal/shared/metrics"
	"authenticity-backend/internal/shared/telemetry"
	"authenticity-backend/internal/verdict"
)

// ResultStore appends verdicts to the repo on a best-effort basis.
type ResultStore struct {
	Repo  Repo
	Now   func() time.Time
	NewID func() string
}

func NewResultStore(repo Repo) *ResultStore {
	return &ResultStore{Repo: repo, Now: time.Now, NewID: uuid.NewString}
}

// Save writes one record and returns its id, or "" when the write failed.
// Failures are logged and counted, never returned.
func (s *ResultStore) Save(ctx context.Context, userID string, ct content.Type, preview string, v verdict.Verdict) string {
	if s == nil || s.Repo == nil {
		return ""
	}
	rec := Record{
		ID:          s.NewID(),
		UserID:      userID,
		ContentType: ct,
		Score:       verdict.Clamp(v.Authenticity),
		Status:      v.Status,
		Details:     v.Details,
		Indicators:  append([]string{}, v.Indicators...),
		Preview:     preview,
		CreatedAt:   s.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		metrics.IncPersistFailure()
		telemetry.Error("analysis.persist_failed", map[string]any{
			"user_id":      userID,
			"content_type": string(ct),
			"error":        err,
		})
		return ""
	}
	telemetry.Info("analysis.persist", map[string]any{
		"analysis_id":  rec.ID,
		"content_type": string(ct),
	})
	return rec.ID
}
