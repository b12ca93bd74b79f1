package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"authenticity-backend/internal/analyses"
	"authenticity-backend/internal/content"
	"authenticity-backend/internal/evidence"
	"authenticity-backend/internal/feedback"
	"authenticity-backend/internal/llm"
	"authenticity-backend/internal/llm/gateway"
	"authenticity-backend/internal/llm/gemini"
	"authenticity-backend/internal/prompt"
	"authenticity-backend/internal/services/health"
	"authenticity-backend/internal/shared/auth"
	"authenticity-backend/internal/shared/config"
	"authenticity-backend/internal/shared/server"
	"authenticity-backend/internal/shared/storage/db"
	"authenticity-backend/internal/shared/telemetry"
)

const devJWTSecret = "dev-only-insecure-secret"

// Version is reported by the health endpoint; set with -ldflags at build time.
var Version = "dev"

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	AnalysesRepo    analyses.Repo
	FeedbackRepo    feedback.Repo
	Verifier        auth.Verifier
	Model           llm.Invoker
	Evidence        *evidence.Client
	Advisor         *feedback.Advisor
	AnalysesService *analyses.Service
	AnalysisHandler *analyses.Handler
	FeedbackHandler *feedback.Handler
	Health          *health.Service
}

// Build connects storage and wires services and routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if sqlDB != nil {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	app := &App{Config: cfg, DB: sqlDB}
	if err := buildServices(ctx, app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Verifier:        app.Verifier,
		Health:          app.Health,
		AnalysisHandler: app.AnalysisHandler,
		FeedbackHandler: app.FeedbackHandler,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_missing", map[string]any{"fallback": "memory"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_connect_failed", map[string]any{"fallback": "memory", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildServices(ctx context.Context, app *App) error {
	cfg := app.Config

	if app.DB != nil {
		app.AnalysesRepo = &analyses.PGRepo{DB: app.DB}
		app.FeedbackRepo = &feedback.PGRepo{DB: app.DB}
	} else {
		app.AnalysesRepo = analyses.NewMemoryRepo()
		app.FeedbackRepo = feedback.NewMemoryRepo()
	}

	verifier, err := buildVerifier(cfg)
	if err != nil {
		return err
	}
	app.Verifier = verifier

	model, err := buildModel(ctx, cfg)
	if err != nil {
		return err
	}
	app.Model = model

	app.Evidence = evidence.NewClient(evidence.NewSearchClient(cfg.SearchAPIURL), evidence.Credentials(cfg.SearchAPIKeys))
	app.Advisor = feedback.NewAdvisor(app.FeedbackRepo, cfg.FeedbackLimit)

	app.AnalysesService = &analyses.Service{
		Preflight:     preflight(cfg),
		Evidence:      app.Evidence,
		Advisor:       app.Advisor,
		Prompts:       prompt.NewBuilder(cfg.ModelFast, cfg.ModelStrong),
		Model:         app.Model,
		Store:         analyses.NewResultStore(app.AnalysesRepo),
		VideoMaxBytes: cfg.VideoMaxBytes,
	}
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService)
	app.FeedbackHandler = feedback.NewHandler(app.FeedbackRepo, analysisLookup{repo: app.AnalysesRepo})
	app.Health = health.NewService(app.DB, Version)

	if app.AnalysisHandler == nil || app.FeedbackHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}

func buildVerifier(cfg config.Config) (auth.Verifier, error) {
	if strings.TrimSpace(cfg.IdentityURL) != "" {
		return auth.NewRemoteVerifier(cfg.IdentityURL, cfg.IdentityAPIKey), nil
	}
	secret := cfg.JWTSecret
	if strings.TrimSpace(secret) == "" {
		if !isDevLike(cfg.Env) {
			return nil, fmt.Errorf("JWT_SECRET or IDENTITY_URL is required")
		}
		telemetry.Warn("bootstrap.jwt_secret_missing", map[string]any{"env": cfg.Env})
		secret = devJWTSecret
	}
	return auth.NewJWTVerifier(secret)
}

// buildModel picks the invoker for the configured provider. A missing
// credential yields an invoker that always reports misconfiguration; the
// preflight check normally rejects the request before it is reached.
func buildModel(ctx context.Context, cfg config.Config) (llm.Invoker, error) {
	if cfg.ModelCredential() == "" {
		return unconfiguredModel{provider: cfg.ModelProvider}, nil
	}
	switch cfg.ModelProvider {
	case config.ProviderGenAI:
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		return client, nil
	default:
		return gateway.NewClient(cfg.ModelGatewayURL, cfg.ModelAPIKey), nil
	}
}

func preflight(cfg config.Config) analyses.Preflight {
	return func(ct content.Type) error {
		if err := cfg.RequireModel(); err != nil {
			return err
		}
		if ct == content.TypeText {
			return cfg.RequireSearch()
		}
		return nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

// analysisLookup lets feedback resolve the caller's analyses without
// importing the analyses package.
type analysisLookup struct {
	repo analyses.Repo
}

func (a analysisLookup) LookupAnalysis(ctx context.Context, userID, analysisID string) (feedback.AnalysisSummary, error) {
	rec, err := a.repo.GetByID(ctx, userID, analysisID)
	if err != nil {
		if errors.Is(err, analyses.ErrNotFound) {
			return feedback.AnalysisSummary{}, feedback.ErrAnalysisNotFound
		}
		return feedback.AnalysisSummary{}, err
	}
	return feedback.AnalysisSummary{ContentType: rec.ContentType, Score: rec.Score}, nil
}

type unconfiguredModel struct {
	provider string
}

func (m unconfiguredModel) Invoke(context.Context, string, []llm.Message) (string, error) {
	return "", llm.Misconfigured(m.provider + " credential not set")
}
