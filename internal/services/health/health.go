package health

import (
	"context"
	"database/sql"
	"time"

	"authenticity-backend/internal/shared/storage/db"
)

const pingTimeout = 2 * time.Second

// Service reports process and database health.
type Service struct {
	DB      *sql.DB
	Version string
}

// NewService constructs a health service. A nil database means in-memory mode.
func NewService(database *sql.DB, version string) *Service {
	return &Service{DB: database, Version: version}
}

// Status is the health payload.
type Status struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
	Version  string `json:"version,omitempty"`
}

// Check pings the database when one is configured.
func (s *Service) Check(ctx context.Context) Status {
	st := Status{OK: true, Database: "memory", Version: s.Version}
	if s.DB == nil {
		return st
	}
	if err := db.Ping(ctx, s.DB, pingTimeout); err != nil {
		st.OK = false
		st.Database = "unreachable"
		return st
	}
	st.Database = "ok"
	return st
}
