package feedback

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"authenticity-backend/internal/content"
	"authenticity-backend/internal/shared/metrics"
	"authenticity-backend/internal/shared/server/middleware"
	"authenticity-backend/internal/shared/server/respond"
)

const maxCommentRunes = 1000

// Handler accepts reviewer corrections.
type Handler struct {
	Repo     Repo
	Analyses AnalysisLookup
	Now      func() time.Time
}

// NewHandler constructs a Handler. A nil lookup skips the ownership check on
// analysisId.
func NewHandler(repo Repo, analyses AnalysisLookup) *Handler {
	return &Handler{Repo: repo, Analyses: analyses, Now: time.Now}
}

// RegisterRoutes attaches feedback routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/feedback", h.create)
}

type createRequest struct {
	AnalysisID  string `json:"analysisId"`
	ContentType string `json:"contentType"`
	IsCorrect   *bool  `json:"isCorrect"`
	UserVerdict string `json:"userVerdict"`
	PriorScore  *int   `json:"priorScore"`
	Comment     string `json:"comment"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)

	analysisID := strings.TrimSpace(req.AnalysisID)
	var prior *AnalysisSummary
	if analysisID != "" {
		if _, err := uuid.Parse(analysisID); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "analysisId must be a uuid", nil)
			return
		}
		if h.Analyses != nil {
			summary, err := h.Analyses.LookupAnalysis(c.Request.Context(), userID, analysisID)
			switch {
			case errors.Is(err, ErrAnalysisNotFound):
				respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
				return
			case err != nil:
				respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to load analysis", nil)
				return
			}
			prior = &summary
		}
	}

	rec, err := h.build(userID, analysisID, req, prior)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	if err := h.Repo.Create(c.Request.Context(), rec); err != nil {
		respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to record feedback", nil)
		return
	}
	metrics.IncFeedbackRecorded()
	respond.Created(c, rec)
}

// build validates the request. Content type and prior score default to the
// referenced analysis when the caller leaves them out.
func (h *Handler) build(userID, analysisID string, req createRequest, prior *AnalysisSummary) (Record, error) {
	rawType := strings.TrimSpace(req.ContentType)
	if rawType == "" && prior != nil {
		rawType = string(prior.ContentType)
	}
	ct, err := content.ParseType(rawType)
	if err != nil {
		return Record{}, fmt.Errorf("%w: contentType must be text, image, audio or video", ErrInvalid)
	}
	if prior != nil && ct != prior.ContentType {
		return Record{}, fmt.Errorf("%w: contentType does not match the analysis", ErrInvalid)
	}
	if req.IsCorrect == nil {
		return Record{}, fmt.Errorf("%w: isCorrect is required", ErrInvalid)
	}
	verdict, ok := ParseVerdict(strings.ToLower(strings.TrimSpace(req.UserVerdict)))
	if !ok {
		return Record{}, fmt.Errorf("%w: userVerdict must be real or fake", ErrInvalid)
	}
	score := req.PriorScore
	if score == nil && prior != nil {
		score = &prior.Score
	}
	if score == nil || *score < 0 || *score > 100 {
		return Record{}, fmt.Errorf("%w: priorScore must be between 0 and 100", ErrInvalid)
	}
	return Record{
		ID:          uuid.NewString(),
		AnalysisID:  analysisID,
		UserID:      userID,
		ContentType: ct,
		IsCorrect:   *req.IsCorrect,
		UserVerdict: verdict,
		PriorScore:  *score,
		Comment:     content.TruncateRunes(content.StripMarkup(req.Comment), maxCommentRunes),
		CreatedAt:   h.Now().UTC(),
	}, nil
}
