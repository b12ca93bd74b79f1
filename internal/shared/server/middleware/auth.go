package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"authenticity-backend/internal/shared/auth"
	"authenticity-backend/internal/shared/server/respond"
)

const (
	userIDKey = "userId"

	MessageAuthRequired = "Authentication required"
	MessageAuthInvalid  = "Invalid authentication"
)

// Auth resolves the bearer token through the verifier and stores the caller
// identity in the context. A missing header fails without calling the verifier.
func Auth(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", MessageAuthRequired, nil)
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", MessageAuthInvalid, nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", MessageAuthRequired, nil)
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			msg := MessageAuthInvalid
			if errors.Is(err, auth.ErrMissingToken) {
				msg = MessageAuthRequired
			}
			respond.Error(c, http.StatusUnauthorized, "unauthorized", msg, nil)
			return
		}

		c.Set(userIDKey, identity.UserID)
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
