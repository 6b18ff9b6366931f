package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"shopfloor-backend/internal/mw"
)

// RouterConfig tunes the shared middleware.
type RouterConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
}

// NewRouter creates and configures a new Gin router.
func NewRouter(handler *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.CacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Machine run-time events
		api.POST("/events", handler.PostEvent)
		api.GET("/events/unpaired", handler.GetUnpairedEvents)
		api.GET("/events/runtime", caching, handler.GetRuntimeIntervals)

		// Pour reports
		api.POST("/pour-reports", handler.PostPourReport)
		api.GET("/pour-reports", handler.GetPourReports)
		api.PUT("/pour-reports/:id", handler.PutPourReport)
		api.DELETE("/pour-reports/:id", handler.DeletePourReport)
		api.POST("/pour-reports/import", handler.ImportPourReports)

		// Other capture forms
		api.POST("/tool-changes", handler.PostToolChange)
		api.GET("/tool-changes", handler.GetToolChanges)
		api.POST("/heat-treats", handler.PostHeatTreatCycle)
		api.GET("/heat-treats", handler.GetHeatTreatCycles)
		api.POST("/qc-measurements", handler.PostQCMeasurement)
		api.GET("/qc-measurements", handler.GetQCMeasurements)

		// ERP lookups
		api.GET("/erp/jobs", caching, handler.GetERPJobs)

		// Scan card labels
		api.GET("/labels/equipment/:number", handler.GetEquipmentLabel)

		// Push subscriptions
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
