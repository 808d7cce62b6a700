package games

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arcade-pulse/backend/internal/models"
	"github.com/arcade-pulse/backend/pkg/apperr"
)

// Repository handles game persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a game repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new game.
func (r *Repository) Create(ctx context.Context, g *models.Game) error {
	const q = `INSERT INTO games (id, name, description)
		VALUES (gen_random_uuid(), $1, $2)
		RETURNING id, upvotes, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, g.Name, g.Description).
		Scan(&g.ID, &g.Upvotes, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return apperr.Wrapf(apperr.ErrPersistence, err, "create game")
	}
	return nil
}

// GetByID returns a game by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	const q = `SELECT id, name, description, upvotes, created_at, updated_at FROM games WHERE id = $1`
	var g models.Game
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&g.ID, &g.Name, &g.Description, &g.Upvotes, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Wrapf(apperr.ErrNotFound, err, "game %s", id)
		}
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "get game")
	}
	return &g, nil
}

// List returns all games, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Game, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, upvotes, created_at, updated_at FROM games ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "list games")
	}
	defer rows.Close()

	var list []models.Game
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.Upvotes, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, apperr.Wrapf(apperr.ErrPersistence, err, "scan game")
		}
		list = append(list, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.ErrPersistence, err)
	}
	return list, nil
}

// Upvote increments a game's upvote count atomically and returns the new count.
func (r *Repository) Upvote(ctx context.Context, id uuid.UUID) (int, error) {
	const q = `UPDATE games SET upvotes = upvotes + 1, updated_at = NOW() WHERE id = $1 RETURNING upvotes`
	var upvotes int
	err := r.pool.QueryRow(ctx, q, id).Scan(&upvotes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.Wrapf(apperr.ErrNotFound, err, "game %s", id)
		}
		return 0, apperr.Wrapf(apperr.ErrPersistence, err, "upvote game")
	}
	return upvotes, nil
}

// Update changes a game's name and description.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, description string) error {
	const q = `UPDATE games SET name = $1, description = $2, updated_at = NOW() WHERE id = $3`
	tag, err := r.pool.Exec(ctx, q, name, description, id)
	if err != nil {
		return apperr.Wrapf(apperr.ErrPersistence, err, "update game")
	}
	if tag.RowsAffected() == 0 {
		return apperr.Wrapf(apperr.ErrNotFound, pgx.ErrNoRows, "game %s", id)
	}
	return nil
}

// Delete removes a game by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return apperr.Wrapf(apperr.ErrPersistence, err, "delete game")
	}
	if tag.RowsAffected() == 0 {
		return apperr.Wrapf(apperr.ErrNotFound, pgx.ErrNoRows, "game %s", id)
	}
	return nil
}
