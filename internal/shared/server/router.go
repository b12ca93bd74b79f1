package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"authenticity-backend/internal/analyses"
	"authenticity-backend/internal/feedback"
	"authenticity-backend/internal/services/health"
	"authenticity-backend/internal/shared/auth"
	"authenticity-backend/internal/shared/config"
	"authenticity-backend/internal/shared/metrics"
	"authenticity-backend/internal/shared/server/middleware"
	"authenticity-backend/internal/shared/server/respond"
)

const (
	rateGroupAnalyze = "ANALYZE"
	rateGroupDefault = "DEFAULT"
)

// RouterDeps are the handlers and collaborators the router mounts.
type RouterDeps struct {
	Config          config.Config
	Verifier        auth.Verifier
	Health          *health.Service
	AnalysisHandler *analyses.Handler
	FeedbackHandler *feedback.Handler
	Limiter         *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		st := deps.Health.Check(c.Request.Context())
		code := http.StatusOK
		if !st.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, st)
	})

	secured := api.Group("")
	secured.Use(
		middleware.Auth(deps.Verifier),
		middleware.RateLimit(rateLimitConfig(deps.Config, deps.Limiter)),
	)
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(secured)
	}
	if deps.FeedbackHandler != nil {
		deps.FeedbackHandler.RegisterRoutes(secured)
	}

	return r
}

func rateLimitConfig(cfg config.Config, limiter *middleware.RateLimiter) middleware.RateLimitConfig {
	rules := map[string]middleware.RateLimitRule{}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst > 0 {
		rules[rateGroupAnalyze] = middleware.RateLimitRule{Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst}
		rules[rateGroupDefault] = middleware.RateLimitRule{Rate: cfg.RateLimitRPS * 10, Burst: cfg.RateLimitBurst * 5}
	}
	return middleware.RateLimitConfig{
		Rules:        rules,
		DefaultGroup: rateGroupDefault,
		GroupFor:     rateGroupFor,
		Limiter:      limiter,
	}
}

func rateGroupFor(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && strings.HasSuffix(c.FullPath(), "/analyze") {
		return rateGroupAnalyze
	}
	return rateGroupDefault
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
