package store

import (
	"log/slog"
	"strings"
)

// NewStore selects a backend from the configured DSN: Postgres URLs and
// key=value connection strings get the Postgres store, any other non-empty
// DSN is treated as a SQLite file path, and an empty DSN falls back to the
// in-memory store.
func NewStore(opts ...Option) (Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	switch {
	case cfg.DSN == "":
		slog.Info("NewStore: no DSN configured, using in-memory store")
		return NewInMemoryStore(), nil
	case strings.HasPrefix(cfg.DSN, "postgres://") || strings.Contains(cfg.DSN, "host="):
		slog.Info("NewStore: using Postgres store")
		return NewPostgresStore(opts...)
	default:
		slog.Info("NewStore: using SQLite store", "path", cfg.DSN)
		return NewSQLiteStore(opts...)
	}
}
