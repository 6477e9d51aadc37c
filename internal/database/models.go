package database

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the persisted canonical product record, keyed by barcode.
// updated_at is set by the store on every write.
type Product struct {
	Barcode     string            `json:"barcode"`
	Title       string            `json:"title"`
	Price       decimal.Decimal   `json:"price"`
	Currency    string            `json:"currency"`
	ImageURL    string            `json:"imageUrl"`
	Description string            `json:"description"`
	Brand       string            `json:"brand"`
	Attributes  map[string]string `json:"attributes"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ImportRun is the audit record for one feed import batch.
type ImportRun struct {
	ID           string     `json:"id"`
	FeedPath     string     `json:"feedPath"`
	Status       string     `json:"status"`
	CreatedCount int        `json:"createdCount"`
	UpdatedCount int        `json:"updatedCount"`
	SkippedCount int        `json:"skippedCount"`
	Error        *string    `json:"error,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
}

// Import run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)
