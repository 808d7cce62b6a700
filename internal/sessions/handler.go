package sessions

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arcade-pulse/backend/pkg/apperr"
	"github.com/arcade-pulse/backend/pkg/response"
)

// StartRequest is the body for POST /games/:id/sessions.
type StartRequest struct {
	ContestantID string `json:"contestant_id" binding:"required,uuid"`
}

// ScoreRequest is the body for PATCH /sessions/:id/score.
type ScoreRequest struct {
	Score int64 `json:"score" binding:"min=0"`
}

// Handler handles session lifecycle HTTP endpoints.
type Handler struct {
	manager *Manager
}

// NewHandler creates a session handler.
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// Start handles POST /games/:id/sessions.
func (h *Handler) Start(c *gin.Context) {
	gameID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid game id")
		return
	}
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	contestantID, err := uuid.Parse(req.ContestantID)
	if err != nil {
		response.BadRequest(c, "invalid contestant_id")
		return
	}

	s, err := h.manager.Start(c.Request.Context(), gameID, contestantID)
	if err != nil {
		writeError(c, err, "failed to start session")
		return
	}
	response.Created(c, s)
}

// RecordScore handles PATCH /sessions/:id/score.
func (h *Handler) RecordScore(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid session id")
		return
	}
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.manager.RecordScore(c.Request.Context(), sessionID, req.Score); err != nil {
		writeError(c, err, "failed to record score")
		return
	}
	response.NoContent(c)
}

// End handles POST /sessions/:id/end.
func (h *Handler) End(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid session id")
		return
	}
	record, err := h.manager.End(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err, "failed to end session")
		return
	}
	response.OK(c, record)
}

// List handles GET /sessions. Only active sessions are listed.
func (h *Handler) List(c *gin.Context) {
	list, err := h.manager.ListActive(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to list sessions")
		return
	}
	response.OK(c, list)
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		response.Conflict(c, err.Error())
	default:
		response.Internal(c, fallback)
	}
}
