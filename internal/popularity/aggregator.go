// Package popularity derives a normalized popularity ranking from session
// and history telemetry and publishes it as an immutable snapshot on a
// fixed period.
package popularity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arcade-pulse/backend/internal/models"
	"github.com/arcade-pulse/backend/pkg/apperr"
)

type txBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Aggregator computes per-game raw statistics from a single consistent
// store snapshot.
type Aggregator struct {
	pool txBeginner
}

// NewAggregator creates a metrics aggregator.
func NewAggregator(pool *pgxpool.Pool) *Aggregator {
	return &Aggregator{pool: pool}
}

// Collect reads all per-game statistics for the given reference date inside
// one repeatable-read, read-only transaction, so active-session counts and
// history counts reflect the same instant. Every game is returned, including
// games with all-zero stats.
func (a *Aggregator) Collect(ctx context.Context, ref time.Time) ([]models.GameStats, error) {
	tx, err := a.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "begin stats snapshot")
	}
	defer tx.Rollback(ctx)

	stats, err := a.collectTx(ctx, tx, ref)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "commit stats snapshot")
	}
	return stats, nil
}

func (a *Aggregator) collectTx(ctx context.Context, tx pgx.Tx, ref time.Time) ([]models.GameStats, error) {
	refDate := ref.UTC().Format("2006-01-02")

	rows, err := tx.Query(ctx, `SELECT id, name, upvotes FROM games ORDER BY id`)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "snapshot games")
	}
	var stats []models.GameStats
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var s models.GameStats
		if err := rows.Scan(&s.GameID, &s.GameName, &s.Upvotes); err != nil {
			rows.Close()
			return nil, apperr.Wrapf(apperr.ErrPersistence, err, "scan game")
		}
		index[s.GameID] = len(stats)
		stats = append(stats, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.ErrPersistence, err)
	}

	const historyQ = `SELECT game_id,
			COUNT(DISTINCT contestant_id),
			COUNT(*),
			COALESCE(MAX(session_length_ms), 0)
		FROM game_history WHERE played_date = $1 GROUP BY game_id`
	rows, err = tx.Query(ctx, historyQ, refDate)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "snapshot history stats")
	}
	for rows.Next() {
		var (
			gameID       uuid.UUID
			players      int
			sessions     int
			peakLengthMS int64
		)
		if err := rows.Scan(&gameID, &players, &sessions, &peakLengthMS); err != nil {
			rows.Close()
			return nil, apperr.Wrapf(apperr.ErrPersistence, err, "scan history stats")
		}
		if i, ok := index[gameID]; ok {
			stats[i].DailyPlayers = players
			stats[i].TotalSessions = sessions
			stats[i].PeakSessionLengthMS = peakLengthMS
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.ErrPersistence, err)
	}

	rows, err = tx.Query(ctx,
		`SELECT game_id, COUNT(*) FROM game_sessions WHERE is_active GROUP BY game_id`)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "snapshot active sessions")
	}
	for rows.Next() {
		var (
			gameID uuid.UUID
			count  int
		)
		if err := rows.Scan(&gameID, &count); err != nil {
			rows.Close()
			return nil, apperr.Wrapf(apperr.ErrPersistence, err, "scan active sessions")
		}
		if i, ok := index[gameID]; ok {
			stats[i].CurrentPlayers = count
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.ErrPersistence, err)
	}

	return stats, nil
}
