// Package store provides storage backends for signup sessions and finalized
// applications.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"
	"github.com/tuaspower/signupflow/internal/models"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists sessions and applications in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) SaveSession(session models.ConversationSession) error {
	record, transcript, pendingErrors, err := marshalSessionColumns(session)
	if err != nil {
		slog.Error("PostgresStore SaveSession marshal failed", "error", err, "id", session.ID)
		return err
	}
	_, err = s.db.Exec(`INSERT INTO sessions (id, stage, status, record, transcript, pending_errors, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET stage = EXCLUDED.stage, status = EXCLUDED.status, record = EXCLUDED.record,
			transcript = EXCLUDED.transcript, pending_errors = EXCLUDED.pending_errors, updated_at = EXCLUDED.updated_at`,
		session.ID, string(session.Stage), string(session.Status), record, transcript, pendingErrors, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore SaveSession failed", "error", err, "id", session.ID)
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	slog.Debug("PostgresStore SaveSession succeeded", "id", session.ID, "stage", session.Stage)
	return nil
}

func (s *PostgresStore) GetSession(id string) (*models.ConversationSession, error) {
	row := s.db.QueryRow(`SELECT id, stage, status, record, transcript, pending_errors, created_at, updated_at FROM sessions WHERE id = $1`, id)
	session, err := scanSessionRow(row)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetSession not found", "id", id)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetSession failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return session, nil
}

func (s *PostgresStore) ListSessions() ([]models.ConversationSession, error) {
	rows, err := s.db.Query(`SELECT id, stage, status, record, transcript, pending_errors, created_at, updated_at FROM sessions ORDER BY created_at`)
	if err != nil {
		slog.Error("PostgresStore ListSessions query failed", "error", err)
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (s *PostgresStore) ListIdleActiveSessions(cutoff time.Time) ([]models.ConversationSession, error) {
	rows, err := s.db.Query(`SELECT id, stage, status, record, transcript, pending_errors, created_at, updated_at FROM sessions
		WHERE status = $1 AND updated_at < $2 ORDER BY updated_at`, string(models.SessionStatusActive), cutoff)
	if err != nil {
		slog.Error("PostgresStore ListIdleActiveSessions query failed", "error", err)
		return nil, fmt.Errorf("failed to query idle sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (s *PostgresStore) SaveApplication(app models.FinalizedApplication) error {
	payload, err := marshalApplication(app)
	if err != nil {
		slog.Error("PostgresStore SaveApplication marshal failed", "error", err, "reference", app.ReferenceID)
		return err
	}
	_, err = s.db.Exec(`INSERT INTO applications (reference_id, conversation_id, submitted_at, payload) VALUES ($1, $2, $3, $4)`,
		app.ReferenceID, app.ConversationID, app.SubmittedAt, payload)
	if err != nil {
		slog.Error("PostgresStore SaveApplication failed", "error", err, "reference", app.ReferenceID)
		return fmt.Errorf("failed to save application %s: %w", app.ReferenceID, err)
	}
	slog.Info("PostgresStore SaveApplication succeeded", "reference", app.ReferenceID)
	return nil
}

func (s *PostgresStore) ListApplications() ([]models.FinalizedApplication, error) {
	rows, err := s.db.Query(`SELECT payload FROM applications ORDER BY submitted_at`)
	if err != nil {
		slog.Error("PostgresStore ListApplications query failed", "error", err)
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
