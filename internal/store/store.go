// Package store provides storage backends for signup sessions and finalized
// applications.
//
// It includes an in-memory store for tests and single-process use, plus
// SQLite and PostgreSQL backends behind the same interface.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/tuaspower/signupflow/internal/models"
)

// Store defines persistence operations for conversation sessions and
// finalized applications.
type Store interface {
	// SaveSession inserts or replaces a conversation session.
	SaveSession(s models.ConversationSession) error
	// GetSession retrieves a session by ID, or nil if not found.
	GetSession(id string) (*models.ConversationSession, error)
	// ListSessions returns all sessions.
	ListSessions() ([]models.ConversationSession, error)
	// ListIdleActiveSessions returns active sessions not updated since the cutoff.
	ListIdleActiveSessions(cutoff time.Time) ([]models.ConversationSession, error)
	// SaveApplication persists a finalized application. Applications are immutable.
	SaveApplication(app models.FinalizedApplication) error
	// ListApplications returns all finalized applications.
	ListApplications() ([]models.FinalizedApplication, error)
	// Close releases backend resources.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	// DSN is the database connection string (file path for SQLite).
	DSN string
}

// Option configures store construction.
type Option func(*Opts)

// WithDSN sets the database connection string.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// InMemoryStore is a mutex-guarded in-process store.
type InMemoryStore struct {
	mu           sync.RWMutex
	sessions     map[string]models.ConversationSession
	applications []models.FinalizedApplication
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]models.ConversationSession)}
}

func (s *InMemoryStore) SaveSession(session models.ConversationSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *InMemoryStore) GetSession(id string) (*models.ConversationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (s *InMemoryStore) ListSessions() ([]models.ConversationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]models.ConversationSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].CreatedAt.Before(sessions[j].CreatedAt) })
	return sessions, nil
}

func (s *InMemoryStore) ListIdleActiveSessions(cutoff time.Time) ([]models.ConversationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var idle []models.ConversationSession
	for _, session := range s.sessions {
		if session.Status == models.SessionStatusActive && session.UpdatedAt.Before(cutoff) {
			idle = append(idle, session)
		}
	}
	sort.Slice(idle, func(i, j int) bool { return idle[i].UpdatedAt.Before(idle[j].UpdatedAt) })
	return idle, nil
}

func (s *InMemoryStore) SaveApplication(app models.FinalizedApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications = append(s.applications, app)
	return nil
}

func (s *InMemoryStore) ListApplications() ([]models.FinalizedApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	apps := make([]models.FinalizedApplication, len(s.applications))
	copy(apps, s.applications)
	return apps, nil
}

func (s *InMemoryStore) Close() error {
	return nil
}
