// Package reconcile upserts extracted feed offers into the product store.
// Offers are keyed by the vendor SKU carried in the product's provenance
// payload: a known SKU refreshes inventory fields in place, an unknown or
// empty SKU creates a new product. The importer never deletes anything.
package reconcile

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/torgpult/catalog-service/internal/database"
	"github.com/torgpult/catalog-service/internal/normalize"
	"github.com/torgpult/catalog-service/internal/types"
)

// DefaultBatchSize bounds the number of rows per insert round trip.
const DefaultBatchSize = 100

// ProductStore is the slice of the product table the reconciler needs.
// *database.ProductRepo implements it.
type ProductStore interface {
	FindBySKU(ctx context.Context, sku string) (*database.Product, error)
	InsertBatch(ctx context.Context, products []database.Product) error
	UpdateInventory(ctx context.Context, id int64, price float64, stock int, extra types.CatalogExtra) error
}

// Result holds the per-file reconciliation counts.
type Result struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Errors    int `json:"errors"`
}

// Reconciler applies offers to a product store.
type Reconciler struct {
	store     ProductStore
	batchSize int
	logger    zerolog.Logger
	now       func() time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithBatchSize overrides the insert batch size.
func WithBatchSize(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithClock overrides the timestamp source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// New creates a Reconciler over the given store.
func New(store ProductStore, logger zerolog.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:     store,
		batchSize: DefaultBatchSize,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile upserts one file's worth of offers. sourceFile is recorded in
// each product's provenance payload. A single offer's failure is counted
// and the rest continue; only context cancellation stops the loop early,
// and then between offers, never mid-write.
func (r *Reconciler) Reconcile(ctx context.Context, offers []types.Offer, sourceFile string) (Result, error) {
	var result Result
	pending := make([]database.Product, 0, r.batchSize)
	importedAt := r.now().UTC().Format(time.RFC3339)

	flush := func() {
		if len(pending) == 0 {
			return
		}
		if err := r.store.InsertBatch(ctx, pending); err != nil {
			r.logger.Error().Err(err).Int("batch", len(pending)).Str("file", sourceFile).
				Msg("Failed to insert product batch")
			result.Errors += len(pending)
		} else {
			result.Created += len(pending)
			result.Processed += len(pending)
		}
		pending = pending[:0]
	}

	for _, offer := range offers {
		if err := ctx.Err(); err != nil {
			flush()
			return result, err
		}

		price := normalize.Price(offer.PriceText)
		stock := normalize.Quantity(offer.StockText)
		extra := types.CatalogExtra{
			SKU:             offer.SKU,
			Group1:          offer.Group1,
			Group2:          offer.Group2,
			OriginalOstatok: offer.StockText,
			OriginalPrice:   offer.PriceText,
			ImportedFrom:    sourceFile,
			ImportedAt:      importedAt,
		}

		var existing *database.Product
		if offer.SKU != "" {
			var err error
			existing, err = r.store.FindBySKU(ctx, offer.SKU)
			if err != nil {
				r.logger.Warn().Err(err).Str("sku", offer.SKU).Msg("SKU lookup failed")
				result.Errors++
				continue
			}
		}

		if existing != nil {
			if err := r.store.UpdateInventory(ctx, existing.ID, price, stock, extra); err != nil {
				r.logger.Warn().Err(err).Str("sku", offer.SKU).Msg("Inventory update failed")
				result.Errors++
				continue
			}
			result.Updated++
			result.Processed++
			continue
		}

		category := offer.Category()
		description := normalize.Description(offer.SKU, offer.Group1, offer.Group2)
		pending = append(pending, database.Product{
			Name:          offer.Name,
			Category:      &category,
			Price:         price,
			StockQuantity: stock,
			Description:   &description,
			CatalogExtra:  &extra,
		})
		if len(pending) >= r.batchSize {
			flush()
		}
	}

	flush()
	return result, nil
}
