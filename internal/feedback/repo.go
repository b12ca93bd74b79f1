package feedback

import (
	"context"

	"authenticity-backend/internal/content"
)

// Repo persists reviewer corrections.
type Repo interface {
	Create(ctx context.Context, rec Record) error
	// ListIncorrect returns up to limit records marked incorrect for the
	// content type, newest first.
	ListIncorrect(ctx context.Context, contentType content.Type, limit int) ([]Record, error)
}
