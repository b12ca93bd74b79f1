package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"authenticity-backend/internal/shared/server/respond"
	"authenticity-backend/internal/shared/telemetry"
)

const (
	panicMessage = "Analysis failed"
	panicDetails = "An error occurred during analysis. Please try again."
)

// Recovery turns a handler panic into the standard failed-analysis response.
// Nothing is written when the handler already started its response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("panic", map[string]any{
				"request_id":   RequestIDFromContext(c),
				"user_id":      UserIDFromContext(c),
				"content_type": c.GetString(ContentTypeKey),
				"error":        rec,
				"stack":        string(debug.Stack()),
				"path":         c.Request.URL.Path,
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.AnalysisFailed(c, "panic", panicMessage, panicDetails)
		}()
		c.Next()
	}
}
