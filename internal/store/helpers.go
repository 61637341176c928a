package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tuaspower/signupflow/internal/models"
)

// marshalSessionColumns serializes the JSON-backed session columns.
func marshalSessionColumns(session models.ConversationSession) (record, transcript, pendingErrors []byte, err error) {
	record, err = json.Marshal(session.Record)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal session record failed: %w", err)
	}
	transcript, err = json.Marshal(session.Transcript)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal session transcript failed: %w", err)
	}
	pendingErrors, err = json.Marshal(session.PendingErrors)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal session pending errors failed: %w", err)
	}
	return record, transcript, pendingErrors, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanSessionRow scans one session from a row and unmarshals its JSON columns.
func scanSessionRow(row rowScanner) (*models.ConversationSession, error) {
	var session models.ConversationSession
	var stage, status string
	var record, transcript []byte
	var pendingErrors sql.NullString
	var createdAt, updatedAt time.Time

	if err := row.Scan(&session.ID, &stage, &status, &record, &transcript, &pendingErrors, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	session.Stage = models.ConversationStage(stage)
	session.Status = models.SessionStatus(status)
	session.CreatedAt = createdAt
	session.UpdatedAt = updatedAt

	if err := json.Unmarshal(record, &session.Record); err != nil {
		return nil, fmt.Errorf("unmarshal session record failed: %w", err)
	}
	if err := json.Unmarshal(transcript, &session.Transcript); err != nil {
		return nil, fmt.Errorf("unmarshal session transcript failed: %w", err)
	}
	if pendingErrors.Valid && pendingErrors.String != "" {
		if err := json.Unmarshal([]byte(pendingErrors.String), &session.PendingErrors); err != nil {
			return nil, fmt.Errorf("unmarshal session pending errors failed: %w", err)
		}
	}
	return &session, nil
}

// collectSessions drains rows into a slice of sessions.
func collectSessions(rows *sql.Rows) ([]models.ConversationSession, error) {
	var sessions []models.ConversationSession
	for rows.Next() {
		session, err := scanSessionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session row failed: %w", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows failed: %w", err)
	}
	return sessions, nil
}

// marshalApplication serializes a finalized application payload.
func marshalApplication(app models.FinalizedApplication) ([]byte, error) {
	payload, err := json.Marshal(app)
	if err != nil {
		return nil, fmt.Errorf("marshal application failed: %w", err)
	}
	return payload, nil
}

// collectApplications drains application payload rows.
func collectApplications(rows *sql.Rows) ([]models.FinalizedApplication, error) {
	var apps []models.FinalizedApplication
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan application row failed: %w", err)
		}
		var app models.FinalizedApplication
		if err := json.Unmarshal(payload, &app); err != nil {
			return nil, fmt.Errorf("unmarshal application failed: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate application rows failed: %w", err)
	}
	return apps, nil
}
