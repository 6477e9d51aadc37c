package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanera/product-service/internal/feed"
)

// stubStore keeps persisted barcodes across batches so idempotence can be
// asserted without a database.
type stubStore struct {
	existing   map[string]bool
	beginCalls int
	beginErr   error

	failBarcode string // Upsert fails when it sees this barcode
	lastTx      *stubTx
}

func newStubStore() *stubStore {
	return &stubStore{existing: make(map[string]bool)}
}

func (s *stubStore) BeginBatch(ctx context.Context) (BatchTx, error) {
	s.beginCalls++
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	s.lastTx = &stubTx{store: s, staged: make(map[string]bool)}
	return s.lastTx, nil
}

type stubTx struct {
	store      *stubStore
	staged     map[string]bool
	upserted   []Product
	committed  bool
	rolledBack bool
}

func (tx *stubTx) Upsert(ctx context.Context, p Product) (bool, error) {
	if tx.store.failBarcode != "" && p.Barcode == tx.store.failBarcode {
		return false, errors.New("connection reset by peer")
	}
	tx.upserted = append(tx.upserted, p)
	created := !tx.store.existing[p.Barcode] && !tx.staged[p.Barcode]
	tx.staged[p.Barcode] = true
	return created, nil
}

func (tx *stubTx) Commit(ctx context.Context) error {
	tx.committed = true
	for barcode := range tx.staged {
		tx.store.existing[barcode] = true
	}
	return nil
}

func (tx *stubTx) Rollback(ctx context.Context) error {
	tx.rolledBack = true
	return nil
}

type recordedRun struct {
	path    string
	summary Summary
	err     error
}

type stubRuns struct {
	started  []string
	finished []recordedRun
}

func (r *stubRuns) StartRun(ctx context.Context, feedPath string) (string, error) {
	r.started = append(r.started, feedPath)
	return "run-1", nil
}

func (r *stubRuns) FinishRun(ctx context.Context, runID string, s Summary, runErr error) error {
	r.finished = append(r.finished, recordedRun{summary: s, err: runErr})
	return nil
}

func writeFeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feed.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validFeed = `<?xml version="1.0" encoding="UTF-8"?>
<productos>
  <item>
    <cod_ean>7791111111111</cod_ean>
    <nombre>Yerba Mate 1kg</nombre>
    <precio_web>1.234,56</precio_web>
    <marca>Taragui</marca>
    <rubro>Almacen</rubro>
  </item>
  <item>
    <codigo>A-42</codigo>
    <nombre>Mate Listo</nombre>
    <precio>850,00</precio>
  </item>
  <item>
    <id>99</id>
    <nombre>Bombilla</nombre>
    <precio_mayorista>12 340,50</precio_mayorista>
  </item>
</productos>`

func TestImportBatchFirstRunCreatesSecondRunUpdates(t *testing.T) {
	store := newStubStore()
	imp := New(store, nil, zerolog.Nop())
	path := writeFeed(t, validFeed)

	first, err := imp.ImportBatch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, Summary{Created: 3, Updated: 0, Skipped: 0}, first)
	assert.True(t, store.lastTx.committed)

	second, err := imp.ImportBatch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, Summary{Created: 0, Updated: 3, Skipped: 0}, second)
}

func TestImportBatchNormalizesRecords(t *testing.T) {
	store := newStubStore()
	imp := New(store, nil, zerolog.Nop())

	_, err := imp.ImportBatch(context.Background(), writeFeed(t, validFeed))
	require.NoError(t, err)

	require.Len(t, store.lastTx.upserted, 3)

	first := store.lastTx.upserted[0]
	assert.Equal(t, "7791111111111", first.Barcode)
	assert.Equal(t, "Yerba Mate 1kg", first.Title)
	assert.True(t, first.Price.Equal(decimal.RequireFromString("1234.56")))
	assert.Equal(t, feed.DefaultCurrency, first.Currency)
	assert.Equal(t, "Taragui", first.Brand)
	assert.Equal(t, "Almacen", first.Attributes.Get("rubro"))

	assert.True(t, store.lastTx.upserted[1].Price.Equal(decimal.RequireFromString("850.00")))
	assert.True(t, store.lastTx.upserted[2].Price.Equal(decimal.RequireFromString("12340.50")))
}

func TestImportBatchSkipsDefectiveRecords(t *testing.T) {
	store := newStubStore()
	imp := New(store, nil, zerolog.Nop())

	path := writeFeed(t, `<productos>
  <item>
    <cod_ean>7791111111111</cod_ean>
    <nombre>Valido</nombre>
    <precio>100</precio>
  </item>
  <item>
    <nombre>Sin codigo de barras</nombre>
    <precio>100</precio>
  </item>
  <item>
    <cod_ean>7792222222222</cod_ean>
    <nombre>Precio roto</nombre>
    <precio>abc</precio>
  </item>
</productos>`)

	summary, err := imp.ImportBatch(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, Summary{Created: 1, Updated: 0, Skipped: 2}, summary)
	require.Len(t, store.lastTx.upserted, 1)
	assert.Equal(t, "7791111111111", store.lastTx.upserted[0].Barcode)
	assert.True(t, store.lastTx.committed, "per-record defects must not abort the batch")
}

func TestImportBatchMissingFeedOpensNoTransaction(t *testing.T) {
	store := newStubStore()
	imp := New(store, nil, zerolog.Nop())

	_, err := imp.ImportBatch(context.Background(), filepath.Join(t.TempDir(), "missing.xml"))

	assert.ErrorIs(t, err, feed.ErrFeedNotFound)
	assert.Zero(t, store.beginCalls, "no transaction may be opened for a missing feed")
}

func TestImportBatchStoreErrorRollsBackEverything(t *testing.T) {
	store := newStubStore()
	store.failBarcode = "A-42" // second record
	imp := New(store, nil, zerolog.Nop())

	summary, err := imp.ImportBatch(context.Background(), writeFeed(t, validFeed))

	require.Error(t, err)
	assert.Equal(t, Summary{}, summary, "no partial counts alongside a fatal error")
	assert.True(t, store.lastTx.rolledBack)
	assert.False(t, store.lastTx.committed)
}

func TestImportBatchMalformedMidStreamRollsBack(t *testing.T) {
	store := newStubStore()
	imp := New(store, nil, zerolog.Nop())

	path := writeFeed(t, `<productos>
  <item><cod_ean>779</cod_ean><nombre>Ok</nombre><precio>10</precio></item>
  <item><nombre>truncado`)

	summary, err := imp.ImportBatch(context.Background(), path)

	var malformed *feed.MalformedFeedError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, Summary{}, summary)
	assert.True(t, store.lastTx.rolledBack)
	assert.False(t, store.lastTx.committed)
}

func TestImportBatchRecordsRuns(t *testing.T) {
	store := newStubStore()
	runs := &stubRuns{}
	imp := New(store, runs, zerolog.Nop())

	path := writeFeed(t, validFeed)
	summary, err := imp.ImportBatch(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, runs.started, 1)
	assert.Equal(t, path, runs.started[0])
	require.Len(t, runs.finished, 1)
	assert.Equal(t, summary, runs.finished[0].summary)
	assert.NoError(t, runs.finished[0].err)
}

func TestImportBatchRecordsFailedRuns(t *testing.T) {
	store := newStubStore()
	store.failBarcode = "7791111111111"
	runs := &stubRuns{}
	imp := New(store, runs, zerolog.Nop())

	_, err := imp.ImportBatch(context.Background(), writeFeed(t, validFeed))
	require.Error(t, err)

	require.Len(t, runs.finished, 1)
	assert.Error(t, runs.finished[0].err)
}
