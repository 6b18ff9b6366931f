package api

import (
	"context"

	"github.com/SherClockHolmes/webpush-go"

	"shopfloor-backend/internal/erp"
	"shopfloor-backend/internal/ingest"
	"shopfloor-backend/internal/model"
	"shopfloor-backend/internal/notification"
	"shopfloor-backend/internal/store"
)

// ERPClient is the slice of the ERP gateway the handlers use.
type ERPClient interface {
	FetchOpenJobs(ctx context.Context) ([]erp.Job, error)
	SyncPourReport(ctx context.Context, report *model.PourReport) error
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	importer *ingest.Importer
	erp      ERPClient
	pool     *notification.WorkerPool
	webpush  *webpush.Options
}

// NewHandler creates a new API handler. erpClient and pool may be nil when
// the corresponding subsystem is disabled.
func NewHandler(s store.Store, importer *ingest.Importer, erpClient ERPClient, pool *notification.WorkerPool, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:    s,
		importer: importer,
		erp:      erpClient,
		pool:     pool,
		webpush:  webpushOptions,
	}
}
