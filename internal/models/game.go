package models

import (
	"time"

	"github.com/google/uuid"
)

// Game is a catalog entry for a competitive activity. Upvotes only ever grow.
type Game struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Upvotes     int       `json:"upvotes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
