package contestants

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arcade-pulse/backend/internal/models"
	"github.com/arcade-pulse/backend/pkg/apperr"
)

// Repository handles contestant persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a contestant repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new contestant.
func (r *Repository) Create(ctx context.Context, c *models.Contestant) error {
	const q = `INSERT INTO contestants (id, name, email)
		VALUES (gen_random_uuid(), $1, $2)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, c.Name, c.Email).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return apperr.Wrapf(apperr.ErrPersistence, err, "create contestant")
	}
	return nil
}

// GetByID returns a contestant by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contestant, error) {
	const q = `SELECT id, name, email, created_at, updated_at FROM contestants WHERE id = $1`
	var c models.Contestant
	err := r.pool.QueryRow(ctx, q, id).Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Wrapf(apperr.ErrNotFound, err, "contestant %s", id)
		}
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "get contestant")
	}
	return &c, nil
}

// List returns all contestants ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Contestant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, created_at, updated_at FROM contestants ORDER BY name`)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrPersistence, err, "list contestants")
	}
	defer rows.Close()

	var list []models.Contestant
	for rows.Next() {
		var c models.Contestant
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, apperr.Wrapf(apperr.ErrPersistence, err, "scan contestant")
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.ErrPersistence, err)
	}
	return list, nil
}

// Update changes a contestant's name and email.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, email string) error {
	const q = `UPDATE contestants SET name = $1, email = $2, updated_at = NOW() WHERE id = $3`
	tag, err := r.pool.Exec(ctx, q, name, email, id)
	if err != nil {
		return apperr.Wrapf(apperr.ErrPersistence, err, "update contestant")
	}
	if tag.RowsAffected() == 0 {
		return apperr.Wrapf(apperr.ErrNotFound, pgx.ErrNoRows, "contestant %s", id)
	}
	return nil
}

// Delete removes a contestant by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contestants WHERE id = $1`, id)
	if err != nil {
		return apperr.Wrapf(apperr.ErrPersistence, err, "delete contestant")
	}
	if tag.RowsAffected() == 0 {
		return apperr.Wrapf(apperr.ErrNotFound, pgx.ErrNoRows, "contestant %s", id)
	}
	return nil
}
