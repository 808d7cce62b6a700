package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arcade-pulse/backend/internal/models"
	"github.com/arcade-pulse/backend/pkg/apperr"
)

const sessionColumns = `id, game_id, contestant_id, score, start_time, end_time, is_active, created_at, updated_at`

// Repository owns all writes to game_sessions and game_history.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a session repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert creates a new active session with score 0.
// A missing game or contestant surfaces as ErrNotFound via the foreign keys.
func (r *Repository) Insert(ctx context.Context, gameID, contestantID uuid.UUID) (*models.GameSession, error) {
	const q = `INSERT INTO game_sessions (id, game_id, contestant_id, score, start_time, is_active)
		VALUES (gen_random_uuid(), $1, $2, 0, NOW(), TRUE)
		RETURNING ` + sessionColumns
	var s models.GameSession
	err := r.pool.QueryRow(ctx, q, gameID, contestantID).
		Scan(&s.ID, &s.GameID, &s.ContestantID, &s.Score, &s.StartTime, &s.EndTime, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, classifyInsertErr(err)
	}
	return &s, nil
}

// InsertExclusive creates a new active session unless the contestant already
// holds an active one for the same game, in which case it returns ErrConflict.
// An advisory transaction lock on (game, contestant) serializes racing starts.
func (r *Repository) InsertExclusive(ctx context.Context, gameID, contestantID uuid.UUID) (*models.GameSession, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "begin start session")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text || $2::text, 0))`,
		gameID, contestantID); err != nil {
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "lock start session")
	}

	var active bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM game_sessions WHERE game_id = $1 AND contestant_id = $2 AND is_active)`,
		gameID, contestantID).Scan(&active)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "check active session")
	}
	if active {
		return nil, apperr.Wrapf(apperr.ErrConflict, errActiveSessionExists, "game %s contestant %s", gameID, contestantID)
	}

	const q = `INSERT INTO game_sessions (id, game_id, contestant_id, score, start_time, is_active)
		VALUES (gen_random_uuid(), $1, $2, 0, NOW(), TRUE)
		RETURNING ` + sessionColumns
	var s models.GameSession
	err = tx.QueryRow(ctx, q, gameID, contestantID).
		Scan(&s.ID, &s.GameID, &s.ContestantID, &s.Score, &s.StartTime, &s.EndTime, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, classifyInsertErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "commit start session")
	}
	return &s, nil
}

var errActiveSessionExists = errors.New("active session already exists")

// SetScore overwrites the current score of an active session.
func (r *Repository) SetScore(ctx context.Context, sessionID uuid.UUID, score int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE game_sessions SET score = $2, updated_at = NOW() WHERE id = $1 AND is_active`,
		sessionID, score)
	if err != nil {
		return apperr.Wrapf(apperr.ErrPersistence, err, "set score")
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMissedUpdate(ctx, sessionID)
	}
	return nil
}

// End closes a session and archives it as a history record in one
// transaction: the compare-and-swap on is_active and the history insert
// commit together or not at all. Exactly one caller can win the swap; a
// second End on the same session returns ErrConflict.
func (r *Repository) End(ctx context.Context, sessionID uuid.UUID) (*models.GameHistory, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "begin end session")
	}
	defer tx.Rollback(ctx)

	const closeQ = `UPDATE game_sessions
		SET is_active = FALSE, end_time = NOW(), updated_at = NOW()
		WHERE id = $1 AND is_active
		RETURNING game_id, contestant_id, score, start_time, end_time`
	h := models.GameHistory{SessionID: sessionID}
	var start, end time.Time
	err = tx.QueryRow(ctx, closeQ, sessionID).Scan(&h.GameID, &h.ContestantID, &h.Score, &start, &end)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyMissedUpdate(ctx, sessionID)
		}
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "close session")
	}

	const insertQ = `INSERT INTO game_history (id, game_id, contestant_id, session_id, score, session_length_ms, played_date)
		VALUES (gen_random_uuid(), $1, $2, $3, $4,
			(EXTRACT(EPOCH FROM ($6::timestamptz - $5::timestamptz)) * 1000)::BIGINT,
			($6::timestamptz AT TIME ZONE 'UTC')::date)
		RETURNING id, session_length_ms, played_date, created_at`
	err = tx.QueryRow(ctx, insertQ, h.GameID, h.ContestantID, sessionID, h.Score, start, end).
		Scan(&h.ID, &h.SessionLengthMS, &h.PlayedDate, &h.CreatedAt)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "insert history")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "commit end session")
	}
	return &h, nil
}

// Get returns a session by ID.
func (r *Repository) Get(ctx context.Context, sessionID uuid.UUID) (*models.GameSession, error) {
	const q = `SELECT ` + sessionColumns + ` FROM game_sessions WHERE id = $1`
	var s models.GameSession
	err := r.pool.QueryRow(ctx, q, sessionID).
		Scan(&s.ID, &s.GameID, &s.ContestantID, &s.Score, &s.StartTime, &s.EndTime, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Wrapf(apperr.ErrNotFound, err, "session %s", sessionID)
		}
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "get session")
	}
	return &s, nil
}

// ListActive returns all currently active sessions.
func (r *Repository) ListActive(ctx context.Context) ([]models.GameSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM game_sessions WHERE is_active ORDER BY start_time DESC`)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "list active sessions")
	}
	defer rows.Close()

	var list []models.GameSession
	for rows.Next() {
		var s models.GameSession
		if err := rows.Scan(&s.ID, &s.GameID, &s.ContestantID, &s.Score, &s.StartTime, &s.EndTime, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, apperr.Wrapf(apperr.ErrPersistence, err, "scan session")
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.ErrPersistence, err)
	}
	return list, nil
}

// classifyMissedUpdate distinguishes "session does not exist" from "session
// exists but is no longer active" after a guarded update touched zero rows.
func (r *Repository) classifyMissedUpdate(ctx context.Context, sessionID uuid.UUID) error {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM game_sessions WHERE id = $1)`, sessionID).Scan(&exists)
	if err != nil {
		return apperr.Wrapf(apperr.ErrPersistence, err, "classify session %s", sessionID)
	}
	if !exists {
		return apperr.Wrapf(apperr.ErrNotFound, pgx.ErrNoRows, "session %s", sessionID)
	}
	return apperr.Wrapf(apperr.ErrConflict, errSessionInactive, "session %s", sessionID)
}

var errSessionInactive = errors.New("session is not active")

func classifyInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
		return apperr.Wrapf(apperr.ErrNotFound, err, "referenced game or contestant")
	}
	return apperr.Wrapf(apperr.ErrPersistence, err, "insert session")
}
