// Package session coordinates the signup conversation lifecycle: creating
// sessions, serializing message turns, committing engine transitions to the
// store, and asking the text generator to phrase each reply.
//
// The generator phrases messages only. Stage transitions and record writes
// are always committed before phrasing, so a generator failure degrades the
// reply but never loses state.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"

	"github.com/tuaspower/signupflow/internal/engine"
	"github.com/tuaspower/signupflow/internal/genai"
	"github.com/tuaspower/signupflow/internal/metrics"
	"github.com/tuaspower/signupflow/internal/models"
	"github.com/tuaspower/signupflow/internal/store"
	"github.com/tuaspower/signupflow/internal/util"
)

// HistoryLimit caps how many trailing transcript messages are sent to the
// text generator per turn.
const HistoryLimit = 10

// DefaultIdleTimeout is how long an active session may sit without a user
// message before the sweep marks it abandoned.
const DefaultIdleTimeout = 30 * time.Minute

// Manager owns session lifecycle and turn processing.
type Manager struct {
	store  store.Store
	engine *engine.Engine
	gen    genai.ClientInterface
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a session manager backed by the given store and text
// generator. The generator may be nil, in which case every reply falls back
// to the static apology message.
func NewManager(st store.Store, gen genai.ClientInterface) *Manager {
	return NewManagerWithClock(st, gen, time.Now)
}

// NewManagerWithClock is NewManager with an injected clock for tests.
func NewManagerWithClock(st store.Store, gen genai.ClientInterface, now func() time.Time) *Manager {
	return &Manager{
		store:  st,
		engine: engine.NewWithClock(now),
		gen:    gen,
		now:    now,
		locks:  make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the per-session mutex, creating it on first use.
// Turns within one session are serialized; distinct sessions proceed in
// parallel.
func (m *Manager) sessionLock(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// releaseLock drops a session's mutex from the map once the session is
// terminal. A racing waiter on the old mutex only ever re-reads the session
// and hits the terminal guard, so recreating the entry later is safe.
func (m *Manager) releaseLock(id string) {
	m.mu.Lock()
	delete(m.locks, id)
	m.mu.Unlock()
}

// CreateSession starts a new conversation at the greeting stage with the
// fixed opening message already in the transcript.
func (m *Manager) CreateSession() (*models.ConversationSession, error) {
	now := m.now()
	session := models.ConversationSession{
		ID:     uuid.NewString(),
		Stage:  models.StageGreeting,
		Status: models.SessionStatusActive,
		Transcript: []models.Message{
			{Role: models.RoleAssistant, Content: engine.GreetingMessage, Timestamp: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.SaveSession(session); err != nil {
		slog.Error("Manager.CreateSession: save failed", "error", err)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	metrics.SessionsStarted.Inc()
	slog.Info("Manager.CreateSession: session created", "session_id", session.ID)
	return &session, nil
}

// GetSession returns the session with the given ID, or ErrSessionNotFound.
func (m *Manager) GetSession(id string) (*models.ConversationSession, error) {
	session, err := m.store.GetSession(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	if session == nil {
		return nil, models.ErrSessionNotFound
	}
	return session, nil
}

// ProcessMessage runs one conversation turn: it records the user message,
// advances the state machine, commits the result, and appends the assistant
// reply. The returned session reflects the committed state including the
// reply.
func (m *Manager) ProcessMessage(ctx context.Context, id, text string) (result *models.ConversationSession, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Manager.ProcessMessage: recovered from panic", "session_id", id, "panic", r)
			result, err = nil, fmt.Errorf("internal error processing message: %v", r)
		}
	}()

	if strings.TrimSpace(text) == "" {
		return nil, models.ErrEmptyMessage
	}

	lock := m.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	session, err := m.GetSession(id)
	if err != nil {
		return nil, err
	}
	if session.Stage.IsTerminal() || session.Status != models.SessionStatusActive {
		return nil, models.ErrSessionTerminal
	}

	now := m.now()
	session.Transcript = append(session.Transcript, models.Message{
		Role: models.RoleUser, Content: text, Timestamp: now,
	})

	prevStage := session.Stage
	prevRecord := session.Record

	rec, nextStage, verr := m.engine.Advance(session.Stage, session.Record, text)
	session.Record = rec
	session.Stage = nextStage
	session.PendingErrors = nil
	if verr != nil {
		session.PendingErrors = []models.ValidationError{*verr}
	}

	m.recordTransitionMetrics(prevStage, prevRecord, session)

	var reply string
	switch {
	case nextStage == models.StageRejected:
		session.Status = models.SessionStatusRejected
		reply = engine.RejectionMessage(rec.RejectionReason)
	case nextStage == models.StageCompleted:
		app, appErr := m.finalize(session, now)
		if appErr != nil {
			return nil, appErr
		}
		session.Status = models.SessionStatusCompleted
		reply = engine.CompletionMessage(app)
	default:
		reply = m.phrase(ctx, session)
	}

	session.Transcript = append(session.Transcript, models.Message{
		Role: models.RoleAssistant, Content: reply, Timestamp: m.now(),
	})
	session.UpdatedAt = m.now()

	if err := m.store.SaveSession(*session); err != nil {
		slog.Error("Manager.ProcessMessage: save failed", "error", err, "session_id", id)
		return nil, fmt.Errorf("failed to save session %s: %w", id, err)
	}
	slog.Debug("Manager.ProcessMessage: turn committed", "session_id", id, "from", prevStage, "to", nextStage)
	if session.Status != models.SessionStatusActive {
		m.releaseLock(id)
	}
	return session, nil
}

// recordTransitionMetrics bumps funnel counters for transitions observed in
// this turn. Counters are advisory; failures here cannot occur and nothing
// reads them back.
func (m *Manager) recordTransitionMetrics(prevStage models.ConversationStage, prevRecord models.ApplicationRecord, session *models.ConversationSession) {
	if prevRecord.CustomerType == "" && session.Record.CustomerType != "" {
		metrics.CustomerTypes.WithLabelValues(string(session.Record.CustomerType)).Inc()
	}
	if prevRecord.SelectedPlan == nil && session.Record.SelectedPlan != nil {
		metrics.PlanSelections.WithLabelValues(session.Record.SelectedPlan.Key()).Inc()
	}
	if session.Stage == models.StageRejected && prevStage != models.StageRejected {
		metrics.Rejections.WithLabelValues(string(session.Record.RejectionReason)).Inc()
	}
	if session.Stage == models.StageCompleted && prevStage != models.StageCompleted {
		metrics.SignupsCompleted.Inc()
	}
}

// finalize builds the immutable application record, persists it, and returns
// it. Called exactly once per session, at the signature transition.
func (m *Manager) finalize(session *models.ConversationSession, now time.Time) (models.FinalizedApplication, error) {
	rec := session.Record
	var insurance models.Insurance
	if rec.Insurance != nil {
		insurance = *rec.Insurance
	}
	var plan models.Plan
	if rec.SelectedPlan != nil {
		plan = *rec.SelectedPlan
	}
	app := models.FinalizedApplication{
		ReferenceID:        util.GenerateReferenceID(),
		SubmittedAt:        now,
		CustomerType:       rec.CustomerType,
		CurrentRetailer:    rec.CurrentRetailer,
		ContractEndDate:    rec.ContractEndDate,
		SelectedPlan:       plan,
		AccountHolder:      rec.AccountHolder,
		Premise:            rec.Premise,
		PreferredStartDate: rec.PreferredStartDate,
		Insurance:          insurance,
		DigitalSignature:   rec.DigitalSignature,
		SignatureTimestamp: now,
		AgreedToTerms:      true,
		CampaignCode:       models.CampaignCode,
		Status:             models.ApplicationStatusPendingBill,
		ConversationID:     session.ID,
		AgentID:            models.AgentID,
	}
	if err := m.store.SaveApplication(app); err != nil {
		slog.Error("Manager.finalize: save application failed", "error", err, "session_id", session.ID)
		return models.FinalizedApplication{}, fmt.Errorf("failed to save application for session %s: %w", session.ID, err)
	}
	slog.Info("Manager.finalize: application submitted", "session_id", session.ID, "reference", app.ReferenceID)
	return app, nil
}

// phrase asks the text generator to word the reply for the committed state.
// Any generator failure degrades to the static fallback message.
func (m *Manager) phrase(ctx context.Context, session *models.ConversationSession) string {
	if m.gen == nil {
		return engine.FallbackMessage
	}
	promptCtx := engine.PromptContext{
		CustomerType:     session.Record.CustomerType,
		CurrentRetailer:  session.Record.CurrentRetailer,
		SelectedPlan:     session.Record.SelectedPlan,
		ValidationErrors: session.PendingErrors,
		RejectionReason:  session.Record.RejectionReason,
	}
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(engine.BuildSystemPrompt(session.Stage, m.engine, promptCtx)),
	}
	history := session.Transcript
	if len(history) > HistoryLimit {
		history = history[len(history)-HistoryLimit:]
	}
	for _, msg := range history {
		switch msg.Role {
		case models.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case models.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		}
	}
	reply, err := m.gen.GenerateWithMessages(ctx, messages)
	if err != nil {
		slog.Warn("Manager.phrase: generator failed, using fallback", "error", err, "session_id", session.ID, "stage", session.Stage)
		return engine.FallbackMessage
	}
	return reply
}

// SweepAbandoned marks active sessions idle past the timeout as abandoned
// and returns how many were swept.
func (m *Manager) SweepAbandoned(idleTimeout time.Duration) (int, error) {
	cutoff := m.now().Add(-idleTimeout)
	sessions, err := m.store.ListIdleActiveSessions(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list idle sessions: %w", err)
	}
	swept := 0
	for i := range sessions {
		session := sessions[i]
		lock := m.sessionLock(session.ID)
		lock.Lock()
		current, err := m.store.GetSession(session.ID)
		if err != nil || current == nil || current.Status != models.SessionStatusActive || !current.UpdatedAt.Before(cutoff) {
			lock.Unlock()
			continue
		}
		current.Status = models.SessionStatusAbandoned
		current.UpdatedAt = m.now()
		if err := m.store.SaveSession(*current); err != nil {
			slog.Error("Manager.SweepAbandoned: save failed", "error", err, "session_id", current.ID)
			lock.Unlock()
			continue
		}
		metrics.SessionsAbandoned.WithLabelValues(string(current.Stage)).Inc()
		swept++
		lock.Unlock()
		m.releaseLock(session.ID)
	}
	if swept > 0 {
		slog.Info("Manager.SweepAbandoned: sessions marked abandoned", "count", swept)
	}
	return swept, nil
}
