package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/torgpult/catalog-service/internal/types"
)

// ProductRepo provides catalog access to the products table.
type ProductRepo struct {
	pool *pgxpool.Pool
}

// NewProductRepo creates a ProductRepo on the given pool.
func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

const productColumns = `id, name, category, price, stock_quantity, description,
	image_url, custom_description, catalog_extra, created_at, updated_at`

// FindBySKU looks up the product whose catalog_extra SKU matches exactly.
// An empty SKU never matches: feed entries without a stable identity are
// always inserted as new rows.
func (r *ProductRepo) FindBySKU(ctx context.Context, sku string) (*Product, error) {
	if sku == "" {
		return nil, nil
	}

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE catalog_extra->>'sku' = $1
		LIMIT 1
	`, productColumns), sku)

	product, err := scanProduct(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product by sku: %w", err)
	}
	return product, nil
}

// InsertBatch inserts a batch of new products in one round trip.
func (r *ProductRepo) InsertBatch(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range products {
		extra, err := json.Marshal(p.CatalogExtra)
		if err != nil {
			return fmt.Errorf("failed to marshal catalog extra: %w", err)
		}
		batch.Queue(`
			INSERT INTO products (name, category, price, stock_quantity, description, catalog_extra)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, p.Name, p.Category, p.Price, p.StockQuantity, p.Description, extra)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range products {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert product batch: %w", err)
		}
	}
	return nil
}

// UpdateInventory refreshes the volatile fields of a previously imported
// product: price, stock and the provenance payload. Name, category and
// description keep whatever the first import (or a manual edit) set.
func (r *ProductRepo) UpdateInventory(ctx context.Context, id int64, price float64, stock int, extra types.CatalogExtra) error {
	payload, err := json.Marshal(extra)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog extra: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET price = $1, stock_quantity = $2, catalog_extra = $3, updated_at = now()
		WHERE id = $4
	`, price, stock, payload, id)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d not found", id)
	}
	return nil
}

// CountImported returns how many products carry an import provenance SKU.
func (r *ProductRepo) CountImported(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM products WHERE catalog_extra->>'sku' IS NOT NULL
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count imported products: %w", err)
	}
	return count, nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var extra []byte

	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.StockQuantity,
		&p.Description, &p.ImageURL, &p.CustomDescription, &extra,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(extra) > 0 {
		var ce types.CatalogExtra
		if err := json.Unmarshal(extra, &ce); err == nil {
			p.CatalogExtra = &ce
		}
	}
	return &p, nil
}
