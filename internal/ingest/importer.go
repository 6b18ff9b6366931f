package ingest

import (
	"context"
	"fmt"
	"log"

	"shopfloor-backend/internal/model"
)

const (
	// chunkSize bounds the payload of a single upsert round trip.
	chunkSize = 500
	// maxReportedErrors caps the human-readable error list in the report so a
	// pathological file cannot blow up the response body.
	maxReportedErrors = 25
)

// Upserter is the slice of the store the importer needs.
type Upserter interface {
	UpsertPourReports(ctx context.Context, reports []model.PourReport, skipDuplicates bool) error
}

// AggregateRefresher recomputes the downstream KPI views after an import.
type AggregateRefresher interface {
	RefreshPourReportKPIs(ctx context.Context) error
}

// Report is the machine-readable tally of one import run. The import always
// finishes and reports, it never fails atomically.
type Report struct {
	Imported      int      `json:"imported"`
	Failed        int      `json:"failed"`
	Skipped       int      `json:"skipped"`
	Errors        []string `json:"errors"`
	ErrorsOmitted int      `json:"errors_omitted,omitempty"`
}

func (r *Report) addError(msg string) {
	if len(r.Errors) >= maxReportedErrors {
		r.ErrorsOmitted++
		return
	}
	r.Errors = append(r.Errors, msg)
}

// Importer runs the stateless import pipeline:
// transform -> dedupe -> chunk -> upsert -> KPI refresh.
type Importer struct {
	store     Upserter
	refresher AggregateRefresher
}

// NewImporter creates an importer. refresher may be nil to disable the KPI
// side effect.
func NewImporter(store Upserter, refresher AggregateRefresher) *Importer {
	return &Importer{store: store, refresher: refresher}
}

// Run imports the given raw rows. Row and chunk failures are accumulated into
// the report; only the KPI refresh failure is logged without being reported,
// since it never fails the import itself.
func (im *Importer) Run(ctx context.Context, rows []map[string]string, skipDuplicates bool) Report {
	var report Report

	records := make([]model.PourReport, 0, len(rows))
	indexes := make([]int, 0, len(rows))
	for i, row := range rows {
		rec, err := TransformRow(row)
		if err != nil {
			report.Failed++
			report.addError(fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		records = append(records, rec)
		indexes = append(indexes, i)
	}

	deduped := im.dedupe(records, indexes, &report)

	anyChunkOK := false
	for start := 0; start < len(deduped); start += chunkSize {
		end := start + chunkSize
		if end > len(deduped) {
			end = len(deduped)
		}
		chunk := deduped[start:end]

		if err := im.store.UpsertPourReports(ctx, chunk, skipDuplicates); err != nil {
			// One bad chunk must not abort the rest of the file.
			report.Failed += len(chunk)
			report.addError(fmt.Sprintf("chunk %d (%d rows): %v", start/chunkSize+1, len(chunk), err))
			continue
		}
		report.Imported += len(chunk)
		anyChunkOK = true
	}

	if anyChunkOK && im.refresher != nil {
		if err := im.refresher.RefreshPourReportKPIs(ctx); err != nil {
			log.Printf("pour report KPI refresh failed after import: %v", err)
		}
	}

	return report
}

// dedupe collapses records sharing a full heat number; the last occurrence by
// original row index wins and earlier ones count as skipped. Records without a
// key are kept as-is, each under a synthetic per-index key.
func (im *Importer) dedupe(records []model.PourReport, indexes []int, report *Report) []model.PourReport {
	deduped := make([]model.PourReport, 0, len(records))
	seen := make(map[string]int, len(records))

	for i, rec := range records {
		key := rec.FullHeatNumber
		if key == "" {
			key = fmt.Sprintf("__row_%d", indexes[i])
		}
		if pos, dup := seen[key]; dup {
			report.Skipped++
			log.Printf("duplicate full_heat_number %q at row %d replaces earlier occurrence", rec.FullHeatNumber, indexes[i]+1)
			deduped[pos] = rec
			continue
		}
		seen[key] = len(deduped)
		deduped = append(deduped, rec)
	}
	return deduped
}
