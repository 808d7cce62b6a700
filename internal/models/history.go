package models

import (
	"time"

	"github.com/google/uuid"
)

// GameHistory is the immutable archival record created exactly once when a
// session ends, in the same transaction as the end transition.
// SessionLengthMS is end minus start in milliseconds.
type GameHistory struct {
	ID              uuid.UUID `json:"id"`
	GameID          uuid.UUID `json:"game_id"`
	ContestantID    uuid.UUID `json:"contestant_id"`
	SessionID       uuid.UUID `json:"session_id"`
	Score           int64     `json:"score"`
	SessionLengthMS int64     `json:"session_length_ms"`
	PlayedDate      time.Time `json:"played_date"`
	CreatedAt       time.Time `json:"created_at"`
}

// SessionLength returns the archived length as a duration.
func (h GameHistory) SessionLength() time.Duration {
	return time.Duration(h.SessionLengthMS) * time.Millisecond
}

// LeaderboardEntry is one row of the history-backed leaderboard.
type LeaderboardEntry struct {
	ContestantName string    `json:"contestant_name"`
	GameName       string    `json:"game_name"`
	Score          int64     `json:"score"`
	PlayedDate     time.Time `json:"played_date"`
}
