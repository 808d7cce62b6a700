package leaderboard

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcade-pulse/backend/internal/models"
	"github.com/arcade-pulse/backend/pkg/apperr"
)

func TestListFilterCombinations(t *testing.T) {
	gameID := uuid.New()
	date := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	base := `SELECT c.name, g.name, h.score, h.played_date
		FROM game_history h
		JOIN games g ON g.id = h.game_id
		JOIN contestants c ON c.id = h.contestant_id`

	tests := []struct {
		name     string
		filter   Filter
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:     "no filters",
			filter:   Filter{},
			wantSQL:  base + " ORDER BY h.score DESC, h.created_at DESC",
			wantArgs: nil,
		},
		{
			name:     "game only",
			filter:   Filter{GameID: &gameID},
			wantSQL:  base + " WHERE h.game_id = $1 ORDER BY h.score DESC, h.created_at DESC",
			wantArgs: []interface{}{gameID},
		},
		{
			name:     "date only",
			filter:   Filter{Date: &date},
			wantSQL:  base + " WHERE h.played_date = $1 ORDER BY h.score DESC, h.created_at DESC",
			wantArgs: []interface{}{date},
		},
		{
			name:     "game and date with limit",
			filter:   Filter{GameID: &gameID, Date: &date, Limit: 5},
			wantSQL:  base + " WHERE h.game_id = $1 AND h.played_date = $2 ORDER BY h.score DESC, h.created_at DESC LIMIT $3",
			wantArgs: []interface{}{gameID, date, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			rows := pgxmock.NewRows([]string{"name", "name", "score", "played_date"}).
				AddRow("alice", "skee ball", int64(4200), date).
				AddRow("bob", "skee ball", int64(1800), date)
			eq := mock.ExpectQuery(regexp.QuoteMeta(tt.wantSQL)).WillReturnRows(rows)
			if tt.wantArgs != nil {
				eq.WithArgs(tt.wantArgs...)
			}

			repo := &Repository{pool: mock}
			list, err := repo.List(context.Background(), tt.filter)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, models.LeaderboardEntry{
				ContestantName: "alice",
				GameName:       "skee ball",
				Score:          4200,
				PlayedDate:     date,
			}, list[0])
			assert.Equal(t, int64(1800), list[1].Score)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestListQueryErrorIsPersistence(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT c.name").WillReturnError(errors.New("connection reset"))

	repo := &Repository{pool: mock}
	_, err = repo.List(context.Background(), Filter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrPersistence)
}
