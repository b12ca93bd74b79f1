package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"

	"authenticity-backend/internal/shared/telemetry"
)

// loadEnvFiles reads KEY=VALUE files for local development. Variables already
// present in the environment win over file values; missing files are skipped.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		err := godotenv.Load(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		telemetry.Warn("config.env_file_invalid", map[string]any{"path": path, "error": err.Error()})
	}
}
