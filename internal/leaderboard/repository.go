package leaderboard

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arcade-pulse/backend/internal/models"
	"github.com/arcade-pulse/backend/pkg/apperr"
)

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Filter narrows the leaderboard to one game and/or one played date.
// Nil fields mean no restriction.
type Filter struct {
	GameID *uuid.UUID
	Date   *time.Time
	Limit  int
}

// Repository reads leaderboard rows from game history.
type Repository struct {
	pool queryer
}

// NewRepository creates a leaderboard repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns history entries joined with game and contestant names,
// descending by score.
func (r *Repository) List(ctx context.Context, f Filter) ([]models.LeaderboardEntry, error) {
	q := `SELECT c.name, g.name, h.score, h.played_date
		FROM game_history h
		JOIN games g ON g.id = h.game_id
		JOIN contestants c ON c.id = h.contestant_id`
	var args []interface{}
	var cond string
	if f.GameID != nil {
		cond = " WHERE h.game_id = $1"
		args = append(args, *f.GameID)
	}
	if f.Date != nil {
		if cond == "" {
			cond = " WHERE h.played_date = $1"
		} else {
			cond += " AND h.played_date = $2"
		}
		args = append(args, *f.Date)
	}
	q += cond + " ORDER BY h.score DESC, h.created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "list leaderboard")
	}
	defer rows.Close()

	var list []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.ContestantName, &e.GameName, &e.Score, &e.PlayedDate); err != nil {
			return nil, apperr.Wrapf(apperr.ErrPersistence, err, "scan leaderboard entry")
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.ErrPersistence, err)
	}
	return list, nil
}
