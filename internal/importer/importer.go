// Package importer applies a parsed vendor feed to the product store as
// one atomic batch of barcode-keyed upserts.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/scanera/product-service/internal/feed"
	"github.com/scanera/product-service/internal/metrics"
)

// Product is the upsert command payload sent to the store for one
// validated, normalized record.
type Product struct {
	Barcode     string
	Title       string
	Price       decimal.Decimal
	Currency    string
	ImageURL    string
	Description string
	Brand       string
	Attributes  feed.Attributes
}

// BatchTx is a batch-scoped transaction against the store. It is acquired
// once per import and released exactly once, by Commit or Rollback.
type BatchTx interface {
	// Upsert creates or updates the product keyed by barcode and reports
	// whether the row was newly created.
	Upsert(ctx context.Context, p Product) (created bool, err error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Store opens batch transactions against the persistent product store.
type Store interface {
	BeginBatch(ctx context.Context) (BatchTx, error)
}

// RunRecorder persists an audit row per import invocation. Recording
// happens outside the batch transaction so failed imports stay visible.
type RunRecorder interface {
	StartRun(ctx context.Context, feedPath string) (string, error)
	FinishRun(ctx context.Context, runID string, s Summary, runErr error) error
}

// Summary is the batch result: rows newly created, rows updated, and
// records dropped for per-record defects.
type Summary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Importer runs feed import batches.
type Importer struct {
	store  Store
	runs   RunRecorder
	logger zerolog.Logger
}

// New creates an Importer. runs may be nil when no audit trail is wanted
// (e.g. dry runs from the CLI).
func New(store Store, runs RunRecorder, logger zerolog.Logger) *Importer {
	return &Importer{store: store, runs: runs, logger: logger}
}

// ImportBatch parses the feed at path and upserts every valid record
// inside one store transaction.
//
// Per-record defects (missing required fields, unparseable price) are
// logged, counted as skipped, and never abort the batch. Feed-level
// errors (missing file, malformed XML) and store errors abort the whole
// batch: the transaction is rolled back and the error propagates, with no
// partial counts returned. A missing feed file is detected before any
// transaction is opened.
func (im *Importer) ImportBatch(ctx context.Context, path string) (Summary, error) {
	var runID string
	if im.runs != nil {
		var err error
		if runID, err = im.runs.StartRun(ctx, path); err != nil {
			im.logger.Warn().Err(err).Msg("Failed to record import run")
		}
	}

	summary, err := im.runBatch(ctx, path)

	if im.runs != nil && runID != "" {
		if ferr := im.runs.FinishRun(ctx, runID, summary, err); ferr != nil {
			im.logger.Warn().Err(ferr).Msg("Failed to finish import run record")
		}
	}

	if err != nil {
		metrics.ImportsTotal.WithLabelValues("failed").Inc()
		return Summary{}, err
	}
	metrics.ImportsTotal.WithLabelValues("completed").Inc()

	im.logger.Info().
		Str("path", path).
		Int("created", summary.Created).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Msg("Feed import completed")
	return summary, nil
}

func (im *Importer) runBatch(ctx context.Context, path string) (Summary, error) {
	var s Summary

	f, err := feed.Open(path)
	if err != nil {
		return s, err
	}

	tx, err := im.store.BeginBatch(ctx)
	if err != nil {
		return s, fmt.Errorf("begin batch: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	for {
		item, err := f.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Summary{}, err
		}

		record := feed.MapItem(item)

		if err := feed.Validate(record); err != nil {
			var invalid *feed.InvalidRecordError
			errors.As(err, &invalid)
			im.logger.Warn().
				Strs("missing_fields", invalid.MissingFields).
				Str("barcode", record.Barcode).
				Msg("Skipping record with missing fields")
			metrics.RecordsSkippedTotal.WithLabelValues("missing_fields").Inc()
			s.Skipped++
			continue
		}

		price, err := feed.NormalizePrice(record.RawPrice)
		if err != nil {
			im.logger.Warn().
				Str("barcode", record.Barcode).
				Str("raw_price", record.RawPrice).
				Msg("Skipping record with invalid price")
			metrics.RecordsSkippedTotal.WithLabelValues("invalid_price").Inc()
			s.Skipped++
			continue
		}

		created, err := tx.Upsert(ctx, Product{
			Barcode:     record.Barcode,
			Title:       record.Title,
			Price:       price,
			Currency:    record.Currency,
			ImageURL:    record.ImageURL,
			Description: record.Description,
			Brand:       record.Brand,
			Attributes:  record.Attributes,
		})
		if err != nil {
			return Summary{}, fmt.Errorf("upsert product %s: %w", record.Barcode, err)
		}
		if created {
			s.Created++
			metrics.ProductsCreatedTotal.Inc()
		} else {
			s.Updated++
			metrics.ProductsUpdatedTotal.Inc()
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Summary{}, fmt.Errorf("commit batch: %w", err)
	}
	committed = true

	return s, nil
}
