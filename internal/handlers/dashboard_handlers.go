package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- Admin Dashboard Stats ---
//

// GetDashboardStats returns the back-office KPIs
// GET /api/admin/dashboard
func (h *Handlers) GetDashboardStats(c *gin.Context) {
	stats, err := h.Store.DashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
