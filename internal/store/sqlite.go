// Package store provides storage backends for signup sessions and finalized
// applications.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/tuaspower/signupflow/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists sessions and applications in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN (a file path).
// The containing directory is created if it does not exist.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveSession(session models.ConversationSession) error {
	record, transcript, pendingErrors, err := marshalSessionColumns(session)
	if err != nil {
		slog.Error("SQLiteStore SaveSession marshal failed", "error", err, "id", session.ID)
		return err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO sessions (id, stage, status, record, transcript, pending_errors, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, string(session.Stage), string(session.Status), record, transcript, pendingErrors, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveSession failed", "error", err, "id", session.ID)
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	slog.Debug("SQLiteStore SaveSession succeeded", "id", session.ID, "stage", session.Stage)
	return nil
}

func (s *SQLiteStore) GetSession(id string) (*models.ConversationSession, error) {
	row := s.db.QueryRow(`SELECT id, stage, status, record, transcript, pending_errors, created_at, updated_at FROM sessions WHERE id = ?`, id)
	session, err := scanSessionRow(row)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetSession not found", "id", id)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetSession failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return session, nil
}

func (s *SQLiteStore) ListSessions() ([]models.ConversationSession, error) {
	rows, err := s.db.Query(`SELECT id, stage, status, record, transcript, pending_errors, created_at, updated_at FROM sessions ORDER BY created_at`)
	if err != nil {
		slog.Error("SQLiteStore ListSessions query failed", "error", err)
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (s *SQLiteStore) ListIdleActiveSessions(cutoff time.Time) ([]models.ConversationSession, error) {
	rows, err := s.db.Query(`SELECT id, stage, status, record, transcript, pending_errors, created_at, updated_at FROM sessions
		WHERE status = ? AND updated_at < ? ORDER BY updated_at`, string(models.SessionStatusActive), cutoff)
	if err != nil {
		slog.Error("SQLiteStore ListIdleActiveSessions query failed", "error", err)
		return nil, fmt.Errorf("failed to query idle sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (s *SQLiteStore) SaveApplication(app models.FinalizedApplication) error {
	payload, err := marshalApplication(app)
	if err != nil {
		slog.Error("SQLiteStore SaveApplication marshal failed", "error", err, "reference", app.ReferenceID)
		return err
	}
	_, err = s.db.Exec(`INSERT INTO applications (reference_id, conversation_id, submitted_at, payload) VALUES (?, ?, ?, ?)`,
		app.ReferenceID, app.ConversationID, app.SubmittedAt, payload)
	if err != nil {
		slog.Error("SQLiteStore SaveApplication failed", "error", err, "reference", app.ReferenceID)
		return fmt.Errorf("failed to save application %s: %w", app.ReferenceID, err)
	}
	slog.Info("SQLiteStore SaveApplication succeeded", "reference", app.ReferenceID)
	return nil
}

func (s *SQLiteStore) ListApplications() ([]models.FinalizedApplication, error) {
	rows, err := s.db.Query(`SELECT payload FROM applications ORDER BY submitted_at`)
	if err != nil {
		slog.Error("SQLiteStore ListApplications query failed", "error", err)
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
