package leaderboard

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arcade-pulse/backend/pkg/response"
)

// Handler handles GET /leaderboard.
type Handler struct {
	repo *Repository
}

// NewHandler creates a leaderboard handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /leaderboard?game_id=&date=&limit=.
// date is YYYY-MM-DD; both filters are optional.
func (h *Handler) List(c *gin.Context) {
	var f Filter

	if gameStr := c.Query("game_id"); gameStr != "" {
		gameID, err := uuid.Parse(gameStr)
		if err != nil {
			response.BadRequest(c, "invalid game_id")
			return
		}
		f.GameID = &gameID
	}
	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			response.BadRequest(c, "invalid date, expected YYYY-MM-DD")
			return
		}
		f.Date = &date
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			response.BadRequest(c, "invalid limit")
			return
		}
		f.Limit = limit
	}

	list, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		response.Internal(c, "failed to load leaderboard")
		return
	}
	response.OK(c, gin.H{"entries": list})
}
