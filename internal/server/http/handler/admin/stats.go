package admin

import (
	"go-adminstats/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct{ d Dependencies }

func NewStatsHandler(d Dependencies) *StatsHandler { return &StatsHandler{d: d} }

// Get GET /admin-stats
func (h *StatsHandler) Get(c *gin.Context) {
	stats, err := h.d.Stats.Snapshot(c.Request.Context())
	if err != nil {
		writeError(c, h.d.Logger, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	response.OK(c, stats)
}
