package store

import (
	"os"
	"testing"
	"time"

	"github.com/tuaspower/signupflow/internal/models"
)

func testSession(id string, updatedAt time.Time) models.ConversationSession {
	return models.ConversationSession{
		ID:        id,
		Stage:     models.StageGreeting,
		Status:    models.SessionStatusActive,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

func TestInMemoryStoreSessions(t *testing.T) {
	s := NewInMemoryStore()
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	if err := s.SaveSession(testSession("a", now)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.GetSession("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != "a" {
		t.Fatalf("got %+v, want session a", got)
	}

	missing, err := s.GetSession("nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("missing session must return nil, not error")
	}

	// SaveSession replaces.
	updated := testSession("a", now)
	updated.Stage = models.StagePlanSelection
	if err := s.SaveSession(updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = s.GetSession("a")
	if got.Stage != models.StagePlanSelection {
		t.Errorf("stage = %v, want replaced value", got.Stage)
	}
}

func TestInMemoryStoreListSessionsOrdered(t *testing.T) {
	s := NewInMemoryStore()
	base := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	s.SaveSession(testSession("later", base.Add(time.Hour)))
	s.SaveSession(testSession("earlier", base))

	sessions, err := s.ListSessions()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != "earlier" || sessions[1].ID != "later" {
		t.Errorf("sessions not ordered by creation time: %v, %v", sessions[0].ID, sessions[1].ID)
	}
}

func TestInMemoryStoreListIdleActiveSessions(t *testing.T) {
	s := NewInMemoryStore()
	cutoff := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	stale := testSession("stale", cutoff.Add(-time.Hour))
	fresh := testSession("fresh", cutoff.Add(time.Hour))
	done := testSession("done", cutoff.Add(-time.Hour))
	done.Status = models.SessionStatusCompleted

	s.SaveSession(stale)
	s.SaveSession(fresh)
	s.SaveSession(done)

	idle, err := s.ListIdleActiveSessions(cutoff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(idle) != 1 || idle[0].ID != "stale" {
		t.Errorf("idle = %+v, want only the stale active session", idle)
	}
}

func TestInMemoryStoreApplications(t *testing.T) {
	s := NewInMemoryStore()
	app := models.FinalizedApplication{
		ReferenceID:  "TPS-2025-12345",
		CampaignCode: models.CampaignCode,
		Status:       models.ApplicationStatusPendingBill,
	}
	if err := s.SaveApplication(app); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	apps, err := s.ListApplications()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(apps) != 1 || apps[0].ReferenceID != "TPS-2025-12345" {
		t.Error("application not stored or retrieved correctly")
	}
}

func TestNewStoreSelectsBackend(t *testing.T) {
	st, err := NewStore()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := st.(*InMemoryStore); !ok {
		t.Errorf("empty DSN should select the in-memory store, got %T", st)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	dbPath := t.TempDir() + "/signupflow.db"
	s, err := NewSQLiteStore(WithDSN(dbPath))
	if err != nil {
		t.Skipf("SQLite not available: %v", err)
	}
	defer s.Close()

	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	session := testSession("round-trip", now)
	session.Record.CustomerType = models.CustomerTypeSP
	session.Transcript = []models.Message{{Role: models.RoleUser, Content: "1", Timestamp: now}}
	session.PendingErrors = []models.ValidationError{{Field: "nric", Message: "NRIC is required"}}

	if err := s.SaveSession(session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := s.GetSession("round-trip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("session not found after save")
	}
	if got.Record.CustomerType != models.CustomerTypeSP {
		t.Errorf("record customer type = %v, want SP", got.Record.CustomerType)
	}
	if len(got.Transcript) != 1 || got.Transcript[0].Content != "1" {
		t.Errorf("transcript = %+v, want one user message", got.Transcript)
	}
	if len(got.PendingErrors) != 1 || got.PendingErrors[0].Field != "nric" {
		t.Errorf("pending errors = %+v", got.PendingErrors)
	}

	missing, err := s.GetSession("nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("missing session must return nil")
	}

	app := models.FinalizedApplication{ReferenceID: "TPS-2025-54321", ConversationID: "round-trip", SubmittedAt: now}
	if err := s.SaveApplication(app); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	apps, err := s.ListApplications()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(apps) != 1 || apps[0].ReferenceID != "TPS-2025-54321" {
		t.Errorf("applications = %+v", apps)
	}
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	// Requires a running PostgreSQL instance; set DATABASE_URL to run.
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	s, err := NewPostgresStore(WithDSN(dsn))
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	defer s.Close()
	s.db.Exec("DELETE FROM sessions")
	s.db.Exec("DELETE FROM applications")

	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	session := testSession("pg-round-trip", now)
	session.Record.CustomerType = models.CustomerTypeRetailer
	session.Record.CurrentRetailer = "Geneco"

	if err := s.SaveSession(session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Upsert replaces.
	session.Stage = models.StagePlanSelection
	if err := s.SaveSession(session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := s.GetSession("pg-round-trip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Stage != models.StagePlanSelection || got.Record.CurrentRetailer != "Geneco" {
		t.Errorf("got %+v", got)
	}
}
