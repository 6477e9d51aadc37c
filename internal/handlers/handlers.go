// Package handlers exposes the HTTP surface: product lookup by barcode,
// health, the internal sync trigger, and import run history.
package handlers

import (
	"context"

	"github.com/scanera/product-service/internal/database"
	"github.com/scanera/product-service/internal/importer"
)

// ProductGetter looks up a persisted product by barcode.
type ProductGetter interface {
	GetByBarcode(ctx context.Context, barcode string) (*database.Product, error)
}

// RunLister lists recent import run audit rows.
type RunLister interface {
	ListRecent(ctx context.Context, limit int) ([]database.ImportRun, error)
}

// SyncRunner runs one fetch + import cycle.
type SyncRunner interface {
	Run(ctx context.Context) (importer.Summary, error)
}

// Pinger reports persistent store connectivity.
type Pinger func(ctx context.Context) error
