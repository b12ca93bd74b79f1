package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"authenticity-backend/internal/shared/telemetry"
)

// Error logs the failure and aborts with a flat JSON body {"error": message}.
// Fields in extra are merged into the body next to "error". The code is only
// logged.
func Error(c *gin.Context, status int, code, message string, extra map[string]any) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	body := gin.H{"error": message}
	for k, v := range extra {
		if k == "error" {
			continue
		}
		body[k] = v
	}
	c.AbortWithStatusJSON(status, body)
}

// AnalysisFailed aborts with the 500 body clients render as a failed verdict:
// the error message plus a zero score, status "error" and user-facing details.
func AnalysisFailed(c *gin.Context, code, message, details string) {
	Error(c, http.StatusInternalServerError, code, message, map[string]any{
		"authenticity": 0,
		"status":       "error",
		"details":      details,
	})
}
