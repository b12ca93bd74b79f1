package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSearchKeysKeepRankOrder(t *testing.T) {
	t.Setenv("SEARCH_API_KEYS", "alpha, beta")
	t.Setenv("SEARCH_API_KEY_2", "delta")
	t.Setenv("SEARCH_API_KEY_1", "gamma")

	got := searchKeysFromEnv()
	want := []string{"alpha", "beta", "gamma", "delta"}
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("key %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRequireModelByProvider(t *testing.T) {
	cfg := Config{ModelProvider: ProviderGateway}
	if err := cfg.RequireModel(); !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
	cfg.ModelAPIKey = "k"
	if err := cfg.RequireModel(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	cfg.ModelProvider = ProviderGenAI
	if err := cfg.RequireModel(); !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing for genai without key, got %v", err)
	}
}

func TestRequireSearch(t *testing.T) {
	if err := (Config{}).RequireSearch(); !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
	if err := (Config{SearchAPIKeys: []string{"a"}}).RequireSearch(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VIDEO_MAX_BYTES", "")
	t.Setenv("MODEL_PROVIDER", "Gemini")
	cfg := Load()
	if cfg.VideoMaxBytes != defaultVideoMaxBytes {
		t.Fatalf("expected default video max bytes, got %d", cfg.VideoMaxBytes)
	}
	if cfg.ModelProvider != ProviderGenAI {
		t.Fatalf("expected genai provider, got %q", cfg.ModelProvider)
	}
	if cfg.FeedbackLimit != 10 {
		t.Fatalf("expected feedback limit 10, got %d", cfg.FeedbackLimit)
	}
}

func TestLoadEnvFilesKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("# local\nFEEDBACK_LIMIT=3\nMODEL_FAST=\"fast-model\"\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("MODEL_FAST", "from-env")
	t.Setenv("FEEDBACK_LIMIT", "")
	os.Unsetenv("FEEDBACK_LIMIT")

	loadEnvFiles(filepath.Join(dir, "missing.env"), path)

	if got := os.Getenv("FEEDBACK_LIMIT"); got != "3" {
		t.Fatalf("expected FEEDBACK_LIMIT from file, got %q", got)
	}
	if got := os.Getenv("MODEL_FAST"); got != "from-env" {
		t.Fatalf("expected existing MODEL_FAST kept, got %q", got)
	}
}
