// Package sessions owns the play-session lifecycle: start, score updates,
// and the transactional hand-off from an ended session into game history.
package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arcade-pulse/backend/config"
	"github.com/arcade-pulse/backend/internal/models"
)

// Store is the persistence contract the manager requires. Implementations
// must make End atomic: the session close and the history insert succeed or
// fail together, and concurrent End calls on one session admit one winner.
type Store interface {
	Insert(ctx context.Context, gameID, contestantID uuid.UUID) (*models.GameSession, error)
	InsertExclusive(ctx context.Context, gameID, contestantID uuid.UUID) (*models.GameSession, error)
	SetScore(ctx context.Context, sessionID uuid.UUID, score int64) error
	End(ctx context.Context, sessionID uuid.UUID) (*models.GameHistory, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*models.GameSession, error)
	ListActive(ctx context.Context) ([]models.GameSession, error)
}

// EventPublisher pushes lifecycle events to realtime subscribers.
type EventPublisher interface {
	Publish(event string, payload interface{})
}

// Lifecycle event names.
const (
	EventSessionStarted = "session_started"
	EventSessionEnded   = "session_ended"
)

// Manager coordinates session lifecycle operations. Callers decide on
// retries; the manager never retries a failed store call.
type Manager struct {
	store           Store
	events          EventPublisher
	logger          *zap.Logger
	allowConcurrent bool
	opTimeout       time.Duration
}

// NewManager creates a session manager.
func NewManager(store Store, cfg config.SessionConfig, events EventPublisher, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.OpTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Manager{
		store:           store,
		events:          events,
		logger:          logger,
		allowConcurrent: cfg.AllowConcurrent,
		opTimeout:       timeout,
	}
}

// Start creates a new active session with score 0 and start time now.
// When concurrent sessions are disallowed by policy, a contestant holding an
// active session for the same game gets ErrConflict.
func (m *Manager) Start(ctx context.Context, gameID, contestantID uuid.UUID) (*models.GameSession, error) {
	ctx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()

	var (
		s   *models.GameSession
		err error
	)
	if m.allowConcurrent {
		s, err = m.store.Insert(ctx, gameID, contestantID)
	} else {
		s, err = m.store.InsertExclusive(ctx, gameID, contestantID)
	}
	if err != nil {
		return nil, err
	}

	m.logger.Info("session started",
		zap.String("session_id", s.ID.String()),
		zap.String("game_id", gameID.String()),
		zap.String("contestant_id", contestantID.String()),
	)
	m.publish(EventSessionStarted, s)
	return s, nil
}

// RecordScore overwrites the session's current score. It is not cumulative.
func (m *Manager) RecordScore(ctx context.Context, sessionID uuid.UUID, score int64) error {
	ctx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()
	return m.store.SetScore(ctx, sessionID, score)
}

// End closes a session and returns the history record created atomically
// with the close. A failed End leaves the session active. The transaction
// runs on a detached context so cancelling the caller does not interrupt a
// store commit already in flight.
func (m *Manager) End(ctx context.Context, sessionID uuid.UUID) (*models.GameHistory, error) {
	endCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.opTimeout)
	defer cancel()

	h, err := m.store.End(endCtx, sessionID)
	if err != nil {
		return nil, err
	}

	m.logger.Info("session ended",
		zap.String("session_id", sessionID.String()),
		zap.String("history_id", h.ID.String()),
		zap.Int64("score", h.Score),
		zap.Duration("length", h.SessionLength()),
	)
	m.publish(EventSessionEnded, h)
	return h, nil
}

// Get returns a session by ID.
func (m *Manager) Get(ctx context.Context, sessionID uuid.UUID) (*models.GameSession, error) {
	ctx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()
	return m.store.Get(ctx, sessionID)
}

// ListActive returns all currently active sessions.
func (m *Manager) ListActive(ctx context.Context) ([]models.GameSession, error) {
	ctx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()
	return m.store.ListActive(ctx)
}

// publish is best effort: a dead event bridge never fails a lifecycle operation.
func (m *Manager) publish(event string, payload interface{}) {
	if m.events == nil {
		return
	}
	m.events.Publish(event, payload)
}
