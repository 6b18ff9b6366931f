package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"shopfloor-backend/internal/model"
)

// The remaining capture forms (tool changes, heat treats, QC) are plain
// create/list plumbing; cost and SPC aggregation live in the reporting views.

// PostToolChange handles POST /api/tool-changes.
func (h *Handler) PostToolChange(c *gin.Context) {
	var tc model.ToolChange
	if err := c.ShouldBindJSON(&tc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tc.EquipmentNumber = strings.ToUpper(strings.TrimSpace(tc.EquipmentNumber))
	if tc.EquipmentNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "equipment_number is required"})
		return
	}
	if tc.ChangedAt.IsZero() {
		tc.ChangedAt = time.Now().UTC()
	}

	if err := h.store.CreateToolChange(c.Request.Context(), &tc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tool change"})
		return
	}
	c.JSON(http.StatusCreated, tc)
}

// GetToolChanges handles GET /api/tool-changes.
func (h *Handler) GetToolChanges(c *gin.Context) {
	changes, err := h.store.ListToolChanges(c.Request.Context(),
		strings.ToUpper(strings.TrimSpace(c.Query("equipment_number"))),
		strings.TrimSpace(c.Query("work_center")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tool changes"})
		return
	}
	if changes == nil {
		changes = []model.ToolChange{}
	}
	c.JSON(http.StatusOK, changes)
}

// PostHeatTreatCycle handles POST /api/heat-treats.
func (h *Handler) PostHeatTreatCycle(c *gin.Context) {
	var cycle model.HeatTreatCycle
	if err := c.ShouldBindJSON(&cycle); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if strings.TrimSpace(cycle.Furnace) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "furnace is required"})
		return
	}
	if cycle.StartedAt.IsZero() {
		cycle.StartedAt = time.Now().UTC()
	}

	if err := h.store.CreateHeatTreatCycle(c.Request.Context(), &cycle); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create heat treat cycle"})
		return
	}
	c.JSON(http.StatusCreated, cycle)
}

// GetHeatTreatCycles handles GET /api/heat-treats.
func (h *Handler) GetHeatTreatCycles(c *gin.Context) {
	cycles, err := h.store.ListHeatTreatCycles(c.Request.Context(), strings.TrimSpace(c.Query("furnace")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve heat treat cycles"})
		return
	}
	if cycles == nil {
		cycles = []model.HeatTreatCycle{}
	}
	c.JSON(http.StatusOK, cycles)
}

// PostQCMeasurement handles POST /api/qc-measurements.
func (h *Handler) PostQCMeasurement(c *gin.Context) {
	var m model.QCMeasurement
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if strings.TrimSpace(m.PartNumber) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "part_number is required"})
		return
	}
	if m.MeasuredAt.IsZero() {
		m.MeasuredAt = time.Now().UTC()
	}

	if err := h.store.CreateQCMeasurement(c.Request.Context(), &m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create QC measurement"})
		return
	}
	c.JSON(http.StatusCreated, m)
}

// GetQCMeasurements handles GET /api/qc-measurements.
func (h *Handler) GetQCMeasurements(c *gin.Context) {
	measurements, err := h.store.ListQCMeasurements(c.Request.Context(), strings.TrimSpace(c.Query("part_number")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve QC measurements"})
		return
	}
	if measurements == nil {
		measurements = []model.QCMeasurement{}
	}
	c.JSON(http.StatusOK, measurements)
}
