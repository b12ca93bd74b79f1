package analyses

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"authenticity-backend/internal/content"
	"authenticity-backend/internal/llm"
	"authenticity-backend/internal/shared/metrics"
	"authenticity-backend/internal/shared/server/middleware"
	"authenticity-backend/internal/shared/server/respond"
	"authenticity-backend/internal/shared/telemetry"
)

const minBodyLimit = 8 << 20

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
}

type analyzeRequest struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
	FileData    string `json:"fileData"`
}

// bodyLimit leaves room for base64 overhead on a video just above the size
// threshold, so oversized uploads still reach the short-circuit path.
func (h *Handler) bodyLimit() int64 {
	limit := h.Svc.VideoMaxBytes * 4
	if limit < minBodyLimit {
		limit = minBodyLimit
	}
	return limit
}

func (h *Handler) analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.bodyLimit())

	var body analyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}
	ct, err := content.ParseType(body.ContentType)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "contentType must be text, image, audio or video", nil)
		return
	}
	c.Set(middleware.ContentTypeKey, string(ct))

	req := Request{
		UserID:      middleware.UserIDFromContext(c),
		ContentType: ct,
		Content:     body.Content,
	}
	if body.FileData != "" {
		media, err := content.ParseDataURI(body.FileData)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "fileData must be a base64 data URI", nil)
			return
		}
		req.Media = media
	}

	resp, err := h.Svc.Analyze(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	if resp.AnalysisID != "" {
		c.Set(middleware.AnalysisIDKey, resp.AnalysisID)
	}
	c.Set(middleware.VerdictKey, string(resp.Status))
	respond.OK(c, resp)
}

func (h *Handler) fail(c *gin.Context, err error) {
	kind := failureKind(err)
	fields := map[string]any{
		"user_id":      middleware.UserIDFromContext(c),
		"content_type": c.GetString(middleware.ContentTypeKey),
		"kind":         kind,
		"error":        err,
	}
	var up *llm.UpstreamError
	if errors.As(err, &up) {
		fields["upstream_status"] = up.Status
		metrics.IncUpstreamError(kind)
		telemetry.Error("analysis.upstream_error", fields)
	} else {
		telemetry.Error("analysis.failed", fields)
	}

	status, message := statusForError(err)
	if status == http.StatusInternalServerError {
		respond.AnalysisFailed(c, kind, message, MessageInternalDetails)
		return
	}
	respond.Error(c, status, kind, message, nil)
}

// statusForError maps a terminal analysis error to its HTTP status and the
// message callers see. Configuration, evidence exhaustion and transport
// failures all surface as 500.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, llm.ErrRateLimited):
		return http.StatusTooManyRequests, MessageRateLimited
	case errors.Is(err, llm.ErrBillingRequired):
		return http.StatusPaymentRequired, MessageCreditsDepleted
	default:
		return http.StatusInternalServerError, MessageInternal
	}
}

func (h *Handler) getAnalysis(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "analysis id is required", nil)
		return
	}
	if _, err := uuid.Parse(id); err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		return
	}
	rec, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}
	respond.OK(c, rec)
}

func (h *Handler) listAnalyses(c *gin.Context) {
	limit := defaultListLimit
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	items, err := h.Svc.History(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}
	if items == nil {
		items = []Record{}
	}
	respond.OK(c, gin.H{"items": items, "limit": limit, "offset": offset})
}
