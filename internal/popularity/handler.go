package popularity

import (
	"github.com/gin-gonic/gin"

	"github.com/arcade-pulse/backend/pkg/response"
)

// Handler serves the published popularity snapshot. It never triggers a
// computation: readers always get the latest published value.
type Handler struct {
	scheduler *Scheduler
	mirror    *RedisMirror
}

// NewHandler creates a popularity handler. scheduler may be nil when this
// instance relies entirely on the Redis mirror.
func NewHandler(scheduler *Scheduler, mirror *RedisMirror) *Handler {
	return &Handler{scheduler: scheduler, mirror: mirror}
}

// Get handles GET /popularity.
func (h *Handler) Get(c *gin.Context) {
	if h.scheduler != nil {
		if snap := h.scheduler.Latest(); snap != nil {
			response.OK(c, snap)
			return
		}
	}
	if h.mirror != nil {
		snap, err := h.mirror.Load(c.Request.Context())
		if err != nil {
			response.Internal(c, "failed to load popularity snapshot")
			return
		}
		if snap != nil {
			response.OK(c, snap)
			return
		}
	}
	response.ServiceUnavailable(c, "popularity snapshot not computed yet")
}
