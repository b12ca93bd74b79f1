package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"authenticity-backend/internal/shared/auth"
	"authenticity-backend/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	prev := telemetry.SetLogger(zap.New(core))
	t.Cleanup(func() { telemetry.SetLogger(prev) })

	router := gin.New()
	router.Use(RequestID(), Auth(&stubVerifier{id: auth.Identity{UserID: "user-1"}}), Logging())
	router.POST("/api/v1/analyze", func(c *gin.Context) {
		c.Set(ContentTypeKey, "image")
		c.Set(AnalysisIDKey, "analysis-1")
		c.Set(VerdictKey, "suspicious")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
	req.Header.Set("Authorization", "Bearer ok")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	entries := logs.FilterMessage("request.complete").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request.complete entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	for _, key := range []string{"request_id", "user_id", "duration_ms", "status", "content_type", "analysis_id", "verdict_status"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if fields["user_id"] != "user-1" {
		t.Fatalf("unexpected user_id: %v", fields["user_id"])
	}
	if fields["content_type"] != "image" {
		t.Fatalf("unexpected content_type: %v", fields["content_type"])
	}
	if fields["analysis_id"] != "analysis-1" {
		t.Fatalf("unexpected analysis_id: %v", fields["analysis_id"])
	}
}
