package popularity

import (
	"sort"
	"time"

	"github.com/arcade-pulse/backend/internal/models"
)

// Metric weights. They sum to 1.0, so every combined score stays in [0,1].
const (
	weightDailyPlayers      = 0.30
	weightCurrentPlayers    = 0.20
	weightUpvotes           = 0.25
	weightPeakSessionLength = 0.15
	weightTotalSessions     = 0.10
)

// Rank combines raw per-game statistics into one weighted score per game.
// Each metric is normalized against the maximum value of that metric across
// all games (floored at 1 so empty days divide cleanly to zero). The result
// is sorted descending by score with game ID as the tiebreaker, so identical
// input always yields an identical snapshot.
func Rank(stats []models.GameStats, ref, generatedAt time.Time) *models.PopularitySnapshot {
	var (
		maxDailyPlayers   float64
		maxCurrentPlayers float64
		maxUpvotes        float64
		maxPeakLength     float64
		maxTotalSessions  float64
	)
	for _, s := range stats {
		maxDailyPlayers = maxf(maxDailyPlayers, float64(s.DailyPlayers))
		maxCurrentPlayers = maxf(maxCurrentPlayers, float64(s.CurrentPlayers))
		maxUpvotes = maxf(maxUpvotes, float64(s.Upvotes))
		maxPeakLength = maxf(maxPeakLength, float64(s.PeakSessionLengthMS))
		maxTotalSessions = maxf(maxTotalSessions, float64(s.TotalSessions))
	}

	entries := make([]models.GameScore, 0, len(stats))
	for _, s := range stats {
		comp := models.ScoreComponents{
			DailyPlayers:      norm(float64(s.DailyPlayers), maxDailyPlayers),
			CurrentPlayers:    norm(float64(s.CurrentPlayers), maxCurrentPlayers),
			Upvotes:           norm(float64(s.Upvotes), maxUpvotes),
			PeakSessionLength: norm(float64(s.PeakSessionLengthMS), maxPeakLength),
			TotalSessions:     norm(float64(s.TotalSessions), maxTotalSessions),
		}
		score := weightDailyPlayers*comp.DailyPlayers +
			weightCurrentPlayers*comp.CurrentPlayers +
			weightUpvotes*comp.Upvotes +
			weightPeakSessionLength*comp.PeakSessionLength +
			weightTotalSessions*comp.TotalSessions
		entries = append(entries, models.GameScore{
			GameStats:  s,
			Score:      score,
			Components: comp,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].GameID.String() < entries[j].GameID.String()
	})

	return &models.PopularitySnapshot{
		GeneratedAt:   generatedAt,
		ReferenceDate: ref.UTC().Format("2006-01-02"),
		Entries:       entries,
	}
}

// norm scales v by the cross-game maximum, floored at 1. For non-negative
// inputs the result is always within [0,1].
func norm(v, max float64) float64 {
	if max < 1 {
		max = 1
	}
	return v / max
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
