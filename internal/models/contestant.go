package models

import (
	"time"

	"github.com/google/uuid"
)

// Contestant is a registered player.
type Contestant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
