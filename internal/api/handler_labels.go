package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"shopfloor-backend/internal/label"
	"shopfloor-backend/internal/model"
)

// GetEquipmentLabel handles GET /api/labels/equipment/:number. Rendering a
// card also registers its QR definition, so a freshly printed card scans
// without any manual setup.
func (h *Handler) GetEquipmentLabel(c *gin.Context) {
	equipment := strings.ToUpper(strings.TrimSpace(c.Param("number")))
	if equipment == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "equipment number is required"})
		return
	}

	action := strings.ToUpper(c.DefaultQuery("action", model.EventStart))
	if action != model.EventStart && action != model.EventStop {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be START or STOP"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "256"))

	def := label.Definition(equipment, action)
	if err := h.store.UpsertQRCodeDefinitions(c.Request.Context(), []model.QRCodeDefinition{def}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register QR code"})
		return
	}

	png, err := label.PNG(equipment, action, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render label"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
