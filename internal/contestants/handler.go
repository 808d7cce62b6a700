package contestants

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arcade-pulse/backend/internal/models"
	"github.com/arcade-pulse/backend/pkg/apperr"
	"github.com/arcade-pulse/backend/pkg/response"
)

// UpsertRequest is the body for POST /contestants and PATCH /contestants/:id.
type UpsertRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// Handler handles contestant HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a contestant handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Create handles POST /contestants.
func (h *Handler) Create(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	contestant := &models.Contestant{Name: req.Name, Email: req.Email}
	if err := h.repo.Create(c.Request.Context(), contestant); err != nil {
		response.Internal(c, "failed to create contestant")
		return
	}
	response.Created(c, contestant)
}

// List handles GET /contestants.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list contestants")
		return
	}
	response.OK(c, list)
}

// Update handles PATCH /contestants/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid contestant id")
		return
	}
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, req.Name, req.Email); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			response.NotFound(c, "contestant not found")
			return
		}
		response.Internal(c, "failed to update contestant")
		return
	}
	response.NoContent(c)
}

// Delete handles DELETE /contestants/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid contestant id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			response.NotFound(c, "contestant not found")
			return
		}
		response.Internal(c, "failed to delete contestant")
		return
	}
	response.NoContent(c)
}
