package models

import (
	"time"

	"github.com/google/uuid"
)

// GameSession is one timed play attempt by one contestant on one game.
// Invariant: EndTime is nil exactly while IsActive is true, and
// EndTime >= StartTime once set.
type GameSession struct {
	ID           uuid.UUID  `json:"id"`
	GameID       uuid.UUID  `json:"game_id"`
	ContestantID uuid.UUID  `json:"contestant_id"`
	Score        int64      `json:"score"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
