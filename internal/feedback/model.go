package feedback

import (
	"context"
	"errors"
	"time"

	"authenticity-backend/internal/content"
)

// Verdict is the label a reviewer assigns to content.
type Verdict string

const (
	VerdictReal Verdict = "real"
	VerdictFake Verdict = "fake"
)

var (
	ErrInvalid          = errors.New("invalid feedback")
	ErrAnalysisNotFound = errors.New("analysis not found")
)

// Record is one reviewer correction of a prior verdict.
type Record struct {
	ID          string       `json:"id"`
	AnalysisID  string       `json:"analysisId,omitempty"`
	UserID      string       `json:"-"`
	ContentType content.Type `json:"contentType"`
	IsCorrect   bool         `json:"isCorrect"`
	UserVerdict Verdict      `json:"userVerdict"`
	PriorScore  int          `json:"priorScore"`
	Comment     string       `json:"comment,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// ParseVerdict validates a reviewer label.
func ParseVerdict(raw string) (Verdict, bool) {
	switch Verdict(raw) {
	case VerdictReal, VerdictFake:
		return Verdict(raw), true
	}
	return "", false
}

// AnalysisSummary is the part of a stored analysis a correction refers to.
type AnalysisSummary struct {
	ContentType content.Type
	Score       int
}

// AnalysisLookup resolves an analysis owned by the caller. It returns
// ErrAnalysisNotFound for unknown ids and for analyses of other callers.
type AnalysisLookup interface {
	LookupAnalysis(ctx context.Context, userID, analysisID string) (AnalysisSummary, error)
}
