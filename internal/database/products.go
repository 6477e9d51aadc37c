package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scanera/product-service/internal/importer"
)

// ErrProductNotFound is returned when no product exists for a barcode.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository reads and writes canonical product records. It
// implements importer.Store: batch upserts run inside one transaction
// acquired from BeginBatch.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a repository over the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// BeginBatch opens a batch-scoped transaction for a feed import.
func (r *ProductRepository) BeginBatch(ctx context.Context) (importer.BatchTx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &productBatch{tx: tx}, nil
}

// GetByBarcode returns the product for a barcode, or ErrProductNotFound.
func (r *ProductRepository) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	var (
		p         Product
		attrsJSON []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT barcode, title, price, currency, image_url, description, brand, attributes, updated_at
		FROM products
		WHERE barcode = $1
	`, barcode).Scan(
		&p.Barcode, &p.Title, &p.Price, &p.Currency,
		&p.ImageURL, &p.Description, &p.Brand, &attrsJSON, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product %s: %w", barcode, err)
	}

	if err := json.Unmarshal(attrsJSON, &p.Attributes); err != nil {
		return nil, fmt.Errorf("decode attributes for %s: %w", barcode, err)
	}
	return &p, nil
}

// Count returns the number of persisted products.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// productBatch is one import batch transaction.
type productBatch struct {
	tx pgx.Tx
}

// Upsert creates or updates the product row keyed by barcode. The
// (xmax = 0) check on the returned row distinguishes a fresh insert from
// an update of an existing row.
func (b *productBatch) Upsert(ctx context.Context, p importer.Product) (bool, error) {
	attrsJSON, err := json.Marshal(p.Attributes)
	if err != nil {
		return false, fmt.Errorf("encode attributes: %w", err)
	}

	var created bool
	err = b.tx.QueryRow(ctx, `
		INSERT INTO products (barcode, title, price, currency, image_url, description, brand, attributes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (barcode) DO UPDATE SET
			title = EXCLUDED.title,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			image_url = EXCLUDED.image_url,
			description = EXCLUDED.description,
			brand = EXCLUDED.brand,
			attributes = EXCLUDED.attributes,
			updated_at = NOW()
		RETURNING (xmax = 0) AS created
	`, p.Barcode, p.Title, p.Price, p.Currency, p.ImageURL, p.Description, p.Brand, attrsJSON).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("upsert product: %w", err)
	}
	return created, nil
}

func (b *productBatch) Commit(ctx context.Context) error {
	return b.tx.Commit(ctx)
}

func (b *productBatch) Rollback(ctx context.Context) error {
	err := b.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
