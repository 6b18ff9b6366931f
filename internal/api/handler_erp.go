package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetERPJobs handles GET /api/erp/jobs: the open job list for the capture
// form dropdowns. ERP unavailability surfaces as 502, no automatic retry.
func (h *Handler) GetERPJobs(c *gin.Context) {
	if h.erp == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ERP integration is disabled"})
		return
	}

	jobs, err := h.erp.FetchOpenJobs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "ERP is unavailable"})
		return
	}
	c.JSON(http.StatusOK, jobs)
}
