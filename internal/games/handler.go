package games

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arcade-pulse/backend/internal/models"
	"github.com/arcade-pulse/backend/pkg/apperr"
	"github.com/arcade-pulse/backend/pkg/response"
)

// UpsertRequest is the body for POST /games and PATCH /games/:id.
type UpsertRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// Handler handles game HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a game handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Create handles POST /games.
func (h *Handler) Create(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	g := &models.Game{Name: req.Name, Description: req.Description}
	if err := h.repo.Create(c.Request.Context(), g); err != nil {
		response.Internal(c, "failed to create game")
		return
	}
	response.Created(c, g)
}

// GetByID handles GET /games/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid game id")
		return
	}
	g, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			response.NotFound(c, "game not found")
			return
		}
		response.Internal(c, "failed to load game")
		return
	}
	response.OK(c, g)
}

// List handles GET /games.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list games")
		return
	}
	response.OK(c, list)
}

// Upvote handles POST /games/:id/upvote.
func (h *Handler) Upvote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid game id")
		return
	}
	upvotes, err := h.repo.Upvote(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			response.NotFound(c, "game not found")
			return
		}
		response.Internal(c, "failed to upvote game")
		return
	}
	response.OK(c, gin.H{"game_id": id, "upvotes": upvotes})
}

// Update handles PATCH /games/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid game id")
		return
	}
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, req.Name, req.Description); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			response.NotFound(c, "game not found")
			return
		}
		response.Internal(c, "failed to update game")
		return
	}
	response.NoContent(c)
}

// Delete handles DELETE /games/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid game id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			response.NotFound(c, "game not found")
			return
		}
		response.Internal(c, "failed to delete game")
		return
	}
	response.NoContent(c)
}
