package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shopfloor-backend/internal/model"
	"shopfloor-backend/internal/notification"
	"shopfloor-backend/internal/pairing"
	"shopfloor-backend/internal/store"
)

type postEventRequest struct {
	EquipmentNumber string `json:"equipment_number"`
	EventType       string `json:"event_type"`
	QRCode          string `json:"qr_code"`
	Operator        string `json:"operator"`
	Shift           int    `json:"shift"`
	WorkCenter      string `json:"work_center"`
	PartNumber      string `json:"part_number"`
	JobNumber       string `json:"job_number"`
}

// PostEvent handles POST /api/events: one START/STOP scan.
func (h *Handler) PostEvent(c *gin.Context) {
	var req postEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	equipment := strings.ToUpper(strings.TrimSpace(req.EquipmentNumber))
	if equipment == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "equipment_number is required"})
		return
	}

	eventType, err := h.resolveEventType(c, equipment, &req)
	if err != nil {
		return // resolveEventType already wrote the response
	}

	event := &model.MachineStateEvent{
		EquipmentNumber: equipment,
		EventType:       eventType,
		EventTimestamp:  time.Now().UTC(), // server-assigned, never client-supplied
		Operator:        req.Operator,
		Shift:           req.Shift,
		WorkCenter:      req.WorkCenter,
		PartNumber:      req.PartNumber,
		JobNumber:       req.JobNumber,
		QRCodeData:      req.QRCode,
	}
	if err := h.store.CreateEvent(c.Request.Context(), event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record event"})
		return
	}

	events, err := h.store.ListEvents(c.Request.Context(), store.EventFilter{EquipmentNumber: equipment})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute unpaired events"})
		return
	}
	res := pairing.Pair(events)

	// A STOP that closed an interval means the machine just finished a run.
	if h.pool != nil && eventType == model.EventStop {
		for _, iv := range res.Intervals {
			if iv.Stop.ID == event.ID {
				h.pool.Dispatch(notification.RunCompleted{
					EquipmentNumber: equipment,
					Duration:        iv.Duration,
				})
				break
			}
		}
	}

	unpaired := res.Unpaired
	if unpaired == nil {
		unpaired = []model.MachineStateEvent{}
	}
	c.JSON(http.StatusCreated, gin.H{
		"event":           event,
		"unpaired_events": unpaired,
	})
}

// resolveEventType returns START/STOP either from the request directly or by
// looking up the scanned QR token. On failure it writes the 400 itself.
func (h *Handler) resolveEventType(c *gin.Context, equipment string, req *postEventRequest) (string, error) {
	if req.EventType != "" {
		typ := strings.ToUpper(strings.TrimSpace(req.EventType))
		if typ != model.EventStart && typ != model.EventStop {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "event_type must be START or STOP",
				"code":  "INVALID_EVENT_TYPE",
			})
			return "", errInvalidRequest
		}
		return typ, nil
	}

	if req.QRCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "either event_type or qr_code is required",
			"code":  "INVALID_EVENT_TYPE",
		})
		return "", errInvalidRequest
	}

	def, err := h.store.GetQRCodeDefinition(c.Request.Context(), req.QRCode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown QR code",
			"code":  "INVALID_EVENT_TYPE",
		})
		return "", errInvalidRequest
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up QR code"})
		return "", err
	}

	if def.EquipmentNumber != "" && def.EquipmentNumber != equipment {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "QR code belongs to equipment " + def.EquipmentNumber,
			"code":  "EQUIPMENT_MISMATCH",
		})
		return "", errInvalidRequest
	}
	return def.EventType, nil
}

var errInvalidRequest = errors.New("invalid request")

// GetUnpairedEvents handles GET /api/events/unpaired. An unpaired trailing
// START just means the machine is still running; the dashboard renders these
// as warnings, not errors.
func (h *Handler) GetUnpairedEvents(c *gin.Context) {
	equipment := strings.ToUpper(strings.TrimSpace(c.Query("equipment_number")))

	events, err := h.store.ListEvents(c.Request.Context(), store.EventFilter{EquipmentNumber: equipment})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve events"})
		return
	}

	unpaired := pairing.Unpaired(events)
	if unpaired == nil {
		unpaired = []model.MachineStateEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"unpaired_events": unpaired})
}

// GetRuntimeIntervals handles GET /api/events/runtime with an optional
// equipment and date window.
func (h *Handler) GetRuntimeIntervals(c *gin.Context) {
	filter := store.EventFilter{
		EquipmentNumber: strings.ToUpper(strings.TrimSpace(c.Query("equipment_number"))),
	}

	if raw := c.Query("from"); raw != "" {
		ts, err := parseTimestamp(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' timestamp. Use RFC3339 or YYYY-MM-DD."})
			return
		}
		filter.From = &ts
	}
	if raw := c.Query("to"); raw != "" {
		ts, err := parseTimestamp(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' timestamp. Use RFC3339 or YYYY-MM-DD."})
			return
		}
		filter.To = &ts
	}

	events, err := h.store.ListEvents(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve events"})
		return
	}

	res := pairing.Pair(events)
	intervals := res.Intervals
	if intervals == nil {
		intervals = []pairing.Interval{}
	}
	c.JSON(http.StatusOK, gin.H{"intervals": intervals})
}

func parseTimestamp(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", raw)
}
