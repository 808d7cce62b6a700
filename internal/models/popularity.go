package models

import (
	"time"

	"github.com/google/uuid"
)

// GameStats holds the raw per-game statistics collected from one consistent
// store snapshot for a single reference date.
type GameStats struct {
	GameID              uuid.UUID `json:"game_id"`
	GameName            string    `json:"game_name"`
	DailyPlayers        int       `json:"daily_players"`
	CurrentPlayers      int       `json:"current_players"`
	Upvotes             int       `json:"upvotes"`
	PeakSessionLengthMS int64     `json:"peak_session_length_ms"`
	TotalSessions       int       `json:"total_sessions"`
}

// ScoreComponents are the normalized [0,1] inputs to the weighted score.
type ScoreComponents struct {
	DailyPlayers      float64 `json:"daily_players"`
	CurrentPlayers    float64 `json:"current_players"`
	Upvotes           float64 `json:"upvotes"`
	PeakSessionLength float64 `json:"peak_session_length"`
	TotalSessions     float64 `json:"total_sessions"`
}

// GameScore is one ranked entry of a popularity snapshot.
type GameScore struct {
	GameStats
	Score      float64         `json:"popularity_score"`
	Components ScoreComponents `json:"components"`
}

// PopularitySnapshot is the published ranking result. It is an immutable
// value: each cycle builds a fresh one and swaps it in whole.
type PopularitySnapshot struct {
	GeneratedAt   time.Time   `json:"generated_at"`
	ReferenceDate string      `json:"reference_date"` // YYYY-MM-DD (UTC)
	Entries       []GameScore `json:"entries"`
}
