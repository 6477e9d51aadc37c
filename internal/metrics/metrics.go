// Package metrics exposes prometheus instrumentation for the feed
// import pipeline.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ProductsCreatedTotal counts rows newly created by feed imports.
	ProductsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feed_products_created_total",
		Help: "Number of product rows created by feed imports",
	})

	// ProductsUpdatedTotal counts existing rows updated by feed imports.
	ProductsUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feed_products_updated_total",
		Help: "Number of product rows updated by feed imports",
	})

	// RecordsSkippedTotal counts feed records dropped for per-record
	// defects, labeled by reason (missing_fields, invalid_price).
	RecordsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_records_skipped_total",
		Help: "Number of feed records skipped during import",
	}, []string{"reason"})

	// ImportsTotal counts import batches by terminal status.
	ImportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_imports_total",
		Help: "Number of feed import batches by status",
	}, []string{"status"})
)

// Handler returns a gin handler serving the prometheus registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
