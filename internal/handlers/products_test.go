package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanera/product-service/internal/database"
	"github.com/scanera/product-service/internal/importer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubProducts struct {
	products map[string]*database.Product
	err      error
}

func (s *stubProducts) GetByBarcode(ctx context.Context, barcode string) (*database.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.products[barcode]
	if !ok {
		return nil, database.ErrProductNotFound
	}
	return p, nil
}

func TestGetProduct(t *testing.T) {
	products := &stubProducts{products: map[string]*database.Product{
		"7791111111111": {
			Barcode:    "7791111111111",
			Title:      "Yerba Mate 1kg",
			Price:      decimal.RequireFromString("1234.56"),
			Currency:   "ARS",
			Brand:      "Taragui",
			Attributes: map[string]string{"rubro": "Almacen"},
			UpdatedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
	}}

	router := gin.New()
	router.GET("/products/:barcode", GetProduct(products))

	t.Run("known barcode", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/products/7791111111111", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var got database.Product
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "Yerba Mate 1kg", got.Title)
		assert.Equal(t, "ARS", got.Currency)
		assert.Equal(t, "Almacen", got.Attributes["rubro"])
	})

	t.Run("unknown barcode", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/products/000", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "000")
	})

	t.Run("store failure", func(t *testing.T) {
		broken := &stubProducts{err: errors.New("connection refused")}
		router := gin.New()
		router.GET("/products/:barcode", GetProduct(broken))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/products/779", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

type stubSync struct {
	summary importer.Summary
	err     error
	calls   int
}

func (s *stubSync) Run(ctx context.Context) (importer.Summary, error) {
	s.calls++
	return s.summary, s.err
}

func TestTriggerSync(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		sync := &stubSync{summary: importer.Summary{Created: 5, Updated: 12, Skipped: 1}}
		router := gin.New()
		router.POST("/internal/admin/sync", TriggerSync(sync))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/internal/admin/sync", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, sync.calls)

		var resp SyncResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, SyncResponse{Created: 5, Updated: 12, Skipped: 1}, resp)
	})

	t.Run("failure", func(t *testing.T) {
		sync := &stubSync{err: errors.New("fetch feed: connection timed out")}
		router := gin.New()
		router.POST("/internal/admin/sync", TriggerSync(sync))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/internal/admin/sync", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHealthCheck(t *testing.T) {
	t.Run("database connected", func(t *testing.T) {
		router := gin.New()
		router.GET("/health", HealthCheck(func(ctx context.Context) error { return nil }))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"connected"`)
	})

	t.Run("database down", func(t *testing.T) {
		router := gin.New()
		router.GET("/health", HealthCheck(func(ctx context.Context) error { return errors.New("down") }))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

type stubRuns struct {
	runs  []database.ImportRun
	limit int
}

func (s *stubRuns) ListRecent(ctx context.Context, limit int) ([]database.ImportRun, error) {
	s.limit = limit
	return s.runs, nil
}

func TestListRuns(t *testing.T) {
	runs := &stubRuns{runs: []database.ImportRun{
		{ID: "run-1", FeedPath: "/data/productos.xml", Status: database.RunStatusCompleted, CreatedCount: 10},
	}}
	router := gin.New()
	router.GET("/internal/import-runs", ListRuns(runs))

	t.Run("default limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/internal/import-runs", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 20, runs.limit)
		assert.Contains(t, w.Body.String(), "run-1")
	})

	t.Run("explicit limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/internal/import-runs?limit=5", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 5, runs.limit)
	})

	t.Run("invalid limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/internal/import-runs?limit=0", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
