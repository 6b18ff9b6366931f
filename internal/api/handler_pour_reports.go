package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shopfloor-backend/internal/ingest"
	"shopfloor-backend/internal/model"
	"shopfloor-backend/internal/store"
)

// pourReportRequest carries the raw string fields from the entry form; the
// same coercion rules apply as on CSV import so a form-entered "0" also
// normalizes to NULL.
type pourReportRequest map[string]string

// PostPourReport handles POST /api/pour-reports.
func (h *Handler) PostPourReport(c *gin.Context) {
	var req pourReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := ingest.TransformRow(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.CreatePourReport(c.Request.Context(), &report); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create pour report"})
		return
	}

	// Mirror the new record to the ERP off the request path. A sync failure is
	// logged, never surfaced; the record is already persisted locally.
	if h.erp != nil {
		go func(r model.PourReport) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := h.erp.SyncPourReport(ctx, &r); err != nil {
				log.Printf("ERP sync failed for pour report %s: %v", r.FullHeatNumber, err)
			}
		}(report)
	}

	c.JSON(http.StatusCreated, report)
}

// PutPourReport handles PUT /api/pour-reports/:id.
func (h *Handler) PutPourReport(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pour report ID"})
		return
	}

	var req pourReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := ingest.TransformRow(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.UpdatePourReport(c.Request.Context(), id, &report); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "pour report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update pour report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// DeletePourReport handles DELETE /api/pour-reports/:id.
func (h *Handler) DeletePourReport(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pour report ID"})
		return
	}

	if err := h.store.DeletePourReport(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "pour report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete pour report"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetPourReports handles GET /api/pour-reports with paging.
func (h *Handler) GetPourReports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	reports, err := h.store.ListPourReports(c.Request.Context(), store.PourReportFilter{
		HeatNumber: strings.TrimSpace(c.Query("heat_number")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve pour reports"})
		return
	}
	if reports == nil {
		reports = []model.PourReport{}
	}
	c.JSON(http.StatusOK, reports)
}

type importRequest struct {
	Rows           []map[string]string `json:"rows"`
	SkipDuplicates bool                `json:"skipDuplicates"`
}

// ImportPourReports handles POST /api/pour-reports/import. The body is either
// the JSON form above or a raw CSV upload (Content-Type: text/csv), in which
// case skipDuplicates comes from the query string. The response is always a
// full tally; a 10,000-row file never fails atomically.
func (h *Handler) ImportPourReports(c *gin.Context) {
	var rows []map[string]string
	skipDuplicates := false

	if strings.HasPrefix(c.ContentType(), "text/csv") {
		parsed, err := ingest.ParseCSV(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		rows = parsed
		skipDuplicates = c.Query("skip_duplicates") == "true"
	} else {
		var req importRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		rows = req.Rows
		skipDuplicates = req.SkipDuplicates
	}

	report := h.importer.Run(c.Request.Context(), rows, skipDuplicates)
	if report.Errors == nil {
		report.Errors = []string{}
	}
	c.JSON(http.StatusOK, report)
}
