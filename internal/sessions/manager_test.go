package sessions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcade-pulse/backend/config"
	"github.com/arcade-pulse/backend/internal/models"
	"github.com/arcade-pulse/backend/pkg/apperr"
)

// memStore is an in-memory Store honoring the same contract as the
// PostgreSQL repository: guarded updates, and an atomic compare-and-swap
// close that admits exactly one winner per session.
type memStore struct {
	mu       sync.Mutex
	games    map[uuid.UUID]bool
	players  map[uuid.UUID]bool
	sessions map[uuid.UUID]*models.GameSession
	history  []models.GameHistory
}

func newMemStore() *memStore {
	return &memStore{
		games:    make(map[uuid.UUID]bool),
		players:  make(map[uuid.UUID]bool),
		sessions: make(map[uuid.UUID]*models.GameSession),
	}
}

func (s *memStore) addGame() uuid.UUID {
	id := uuid.New()
	s.games[id] = true
	return id
}

func (s *memStore) addContestant() uuid.UUID {
	id := uuid.New()
	s.players[id] = true
	return id
}

func (s *memStore) insert(gameID, contestantID uuid.UUID, exclusive bool) (*models.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.games[gameID] || !s.players[contestantID] {
		return nil, apperr.Wrap(apperr.ErrNotFound, errActiveSessionExists)
	}
	if exclusive {
		for _, existing := range s.sessions {
			if existing.IsActive && existing.GameID == gameID && existing.ContestantID == contestantID {
				return nil, apperr.Wrap(apperr.ErrConflict, errActiveSessionExists)
			}
		}
	}
	now := time.Now()
	sess := &models.GameSession{
		ID:           uuid.New(),
		GameID:       gameID,
		ContestantID: contestantID,
		StartTime:    now,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.sessions[sess.ID] = sess
	copied := *sess
	return &copied, nil
}

func (s *memStore) Insert(_ context.Context, gameID, contestantID uuid.UUID) (*models.GameSession, error) {
	return s.insert(gameID, contestantID, false)
}

func (s *memStore) InsertExclusive(_ context.Context, gameID, contestantID uuid.UUID) (*models.GameSession, error) {
	return s.insert(gameID, contestantID, true)
}

func (s *memStore) SetScore(_ context.Context, sessionID uuid.UUID, score int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return apperr.Wrap(apperr.ErrNotFound, errSessionInactive)
	}
	if !sess.IsActive {
		return apperr.Wrap(apperr.ErrConflict, errSessionInactive)
	}
	sess.Score = score
	sess.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) End(_ context.Context, sessionID uuid.UUID) (*models.GameHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, apperr.Wrap(apperr.ErrNotFound, errSessionInactive)
	}
	if !sess.IsActive {
		return nil, apperr.Wrap(apperr.ErrConflict, errSessionInactive)
	}
	now := time.Now()
	sess.IsActive = false
	sess.EndTime = &now
	sess.UpdatedAt = now
	h := models.GameHistory{
		ID:              uuid.New(),
		GameID:          sess.GameID,
		ContestantID:    sess.ContestantID,
		SessionID:       sess.ID,
		Score:           sess.Score,
		SessionLengthMS: now.Sub(sess.StartTime).Milliseconds(),
		PlayedDate:      now.UTC().Truncate(24 * time.Hour),
		CreatedAt:       now,
	}
	s.history = append(s.history, h)
	return &h, nil
}

func (s *memStore) Get(_ context.Context, sessionID uuid.UUID) (*models.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, apperr.Wrap(apperr.ErrNotFound, errSessionInactive)
	}
	copied := *sess
	return &copied, nil
}

func (s *memStore) ListActive(_ context.Context) ([]models.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []models.GameSession
	for _, sess := range s.sessions {
		if sess.IsActive {
			list = append(list, *sess)
		}
	}
	return list, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(event string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) all() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func newTestManager(store *memStore, allowConcurrent bool, events EventPublisher) *Manager {
	return NewManager(store, config.SessionConfig{
		AllowConcurrent: allowConcurrent,
		OpTimeout:       time.Second,
	}, events, nil)
}

func TestStartCreatesActiveSession(t *testing.T) {
	store := newMemStore()
	gameID := store.addGame()
	contestantID := store.addContestant()
	m := newTestManager(store, true, nil)

	s, err := m.Start(context.Background(), gameID, contestantID)
	require.NoError(t, err)
	assert.True(t, s.IsActive)
	assert.Nil(t, s.EndTime)
	assert.EqualValues(t, 0, s.Score)
	assert.Equal(t, gameID, s.GameID)
	assert.Equal(t, contestantID, s.ContestantID)
}

func TestStartUnknownGame(t *testing.T) {
	store := newMemStore()
	contestantID := store.addContestant()
	m := newTestManager(store, true, nil)

	_, err := m.Start(context.Background(), uuid.New(), contestantID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStartConcurrencyPolicy(t *testing.T) {
	store := newMemStore()
	gameID := store.addGame()
	otherGameID := store.addGame()
	contestantID := store.addContestant()

	t.Run("disallowed same game", func(t *testing.T) {
		m := newTestManager(store, false, nil)
		_, err := m.Start(context.Background(), gameID, contestantID)
		require.NoError(t, err)
		_, err = m.Start(context.Background(), gameID, contestantID)
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("other game always allowed", func(t *testing.T) {
		m := newTestManager(store, false, nil)
		_, err := m.Start(context.Background(), otherGameID, contestantID)
		assert.NoError(t, err)
	})

	t.Run("allowed same game", func(t *testing.T) {
		m := newTestManager(newMemStoreWith(gameID, contestantID), true, nil)
		_, err := m.Start(context.Background(), gameID, contestantID)
		require.NoError(t, err)
		_, err = m.Start(context.Background(), gameID, contestantID)
		assert.NoError(t, err)
	})
}

func newMemStoreWith(gameID, contestantID uuid.UUID) *memStore {
	s := newMemStore()
	s.games[gameID] = true
	s.players[contestantID] = true
	return s
}

func TestRecordScoreOverwrites(t *testing.T) {
	store := newMemStore()
	m := newTestManager(store, true, nil)
	s, err := m.Start(context.Background(), store.addGame(), store.addContestant())
	require.NoError(t, err)

	require.NoError(t, m.RecordScore(context.Background(), s.ID, 100))
	require.NoError(t, m.RecordScore(context.Background(), s.ID, 40))

	got, err := m.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 40, got.Score, "score is overwritten, not accumulated")
}

func TestRecordScoreErrors(t *testing.T) {
	store := newMemStore()
	m := newTestManager(store, true, nil)

	err := m.RecordScore(context.Background(), uuid.New(), 10)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	s, err := m.Start(context.Background(), store.addGame(), store.addContestant())
	require.NoError(t, err)
	_, err = m.End(context.Background(), s.ID)
	require.NoError(t, err)

	err = m.RecordScore(context.Background(), s.ID, 10)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestEndArchivesExactlyOnce(t *testing.T) {
	store := newMemStore()
	events := &recordingPublisher{}
	m := newTestManager(store, true, events)

	s, err := m.Start(context.Background(), store.addGame(), store.addContestant())
	require.NoError(t, err)
	require.NoError(t, m.RecordScore(context.Background(), s.ID, 9000))

	h, err := m.End(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, h.SessionID)
	assert.EqualValues(t, 9000, h.Score)
	assert.GreaterOrEqual(t, h.SessionLengthMS, int64(0))

	ended, err := m.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.False(t, ended.IsActive)
	require.NotNil(t, ended.EndTime)
	assert.False(t, ended.EndTime.Before(ended.StartTime))

	_, err = m.End(context.Background(), s.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Len(t, store.history, 1, "second end attempt must not add a history record")

	assert.Equal(t, []string{EventSessionStarted, EventSessionEnded}, events.all())
}

func TestConcurrentEndSingleWinner(t *testing.T) {
	store := newMemStore()
	m := newTestManager(store, true, nil)
	s, err := m.Start(context.Background(), store.addGame(), store.addContestant())
	require.NoError(t, err)

	const callers = 16
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.End(context.Background(), s.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var wins, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			assert.ErrorIs(t, err, apperr.ErrConflict)
			conflicts++
		}
	}
	assert.Equal(t, 1, wins, "exactly one end call wins")
	assert.Equal(t, callers-1, conflicts)
	assert.Len(t, store.history, 1, "exactly one history record exists")
}

func TestListActiveExcludesEnded(t *testing.T) {
	store := newMemStore()
	m := newTestManager(store, true, nil)
	gameID := store.addGame()
	contestantID := store.addContestant()

	a, err := m.Start(context.Background(), gameID, contestantID)
	require.NoError(t, err)
	b, err := m.Start(context.Background(), gameID, contestantID)
	require.NoError(t, err)

	_, err = m.End(context.Background(), a.ID)
	require.NoError(t, err)

	active, err := m.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, b.ID, active[0].ID)
}
