package analyses

import (
	"time"

	"authenticity-backend/internal/content"
	"authenticity-backend/internal/verdict"
)

// Record is one stored analysis outcome. Records are append-only.
type Record struct {
	ID          string         `json:"id"`
	UserID      string         `json:"-"`
	ContentType content.Type   `json:"contentType"`
	Score       int            `json:"authenticityScore"`
	Status      verdict.Status `json:"status"`
	Details     string         `json:"detailedAnalysis"`
	Indicators  []string       `json:"manipulationIndicators"`
	Preview     string         `json:"contentPreview"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Request is one analysis submission after decoding.
type Request struct {
	UserID      string
	ContentType content.Type
	Content     string
	Media       *content.Media
}

// Response is the verdict returned to a caller, with the stored record id
// when persistence succeeded.
type Response struct {
	verdict.Verdict
	AnalysisID string `json:"analysisId,omitempty"`
}
