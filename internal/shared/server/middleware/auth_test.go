package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"authenticity-backend/internal/shared/auth"
)

type stubVerifier struct {
	calls int
	id    auth.Identity
	err   error
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (auth.Identity, error) {
	s.calls++
	return s.id, s.err
}

func authRouter(v auth.Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(v))
	router.Any("/api/v1/analyze", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c)})
	})
	return router
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	msg, _ := body["error"].(string)
	return msg
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	v := &stubVerifier{}
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/analyze", nil)
	resp := httptest.NewRecorder()
	authRouter(v).ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthMissingHeaderSkipsVerifier(t *testing.T) {
	v := &stubVerifier{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
	resp := httptest.NewRecorder()
	authRouter(v).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if msg := decodeError(t, resp); msg != MessageAuthRequired {
		t.Fatalf("error = %q", msg)
	}
	if v.calls != 0 {
		t.Fatalf("verifier called %d times", v.calls)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	v := &stubVerifier{err: auth.ErrInvalidToken}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
	req.Header.Set("Authorization", "Bearer nope")
	resp := httptest.NewRecorder()
	authRouter(v).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if msg := decodeError(t, resp); msg != MessageAuthInvalid {
		t.Fatalf("error = %q", msg)
	}
}

func TestAuthSetsUserID(t *testing.T) {
	v := &stubVerifier{id: auth.Identity{UserID: "user-1"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
	req.Header.Set("Authorization", "Bearer ok")
	resp := httptest.NewRecorder()
	authRouter(v).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(resp.Body.Bytes(), &body)
	if body["userId"] != "user-1" {
		t.Fatalf("userId = %q", body["userId"])
	}
}
