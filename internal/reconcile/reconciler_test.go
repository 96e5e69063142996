package reconcile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torgpult/catalog-service/internal/database"
	"github.com/torgpult/catalog-service/internal/types"
)

// fakeStore is an in-memory ProductStore.
type fakeStore struct {
	products   []database.Product
	nextID     int64
	failSKUs   map[string]bool // UpdateInventory / lookup failures by SKU
	failInsert bool
	inserts    int // number of InsertBatch calls
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, failSKUs: map[string]bool{}}
}

func (s *fakeStore) FindBySKU(_ context.Context, sku string) (*database.Product, error) {
	if sku == "" {
		return nil, nil
	}
	for i := range s.products {
		p := &s.products[i]
		if p.CatalogExtra != nil && p.CatalogExtra.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) InsertBatch(_ context.Context, products []database.Product) error {
	s.inserts++
	if s.failInsert {
		return fmt.Errorf("store unavailable")
	}
	for _, p := range products {
		p.ID = s.nextID
		s.nextID++
		s.products = append(s.products, p)
	}
	return nil
}

func (s *fakeStore) UpdateInventory(_ context.Context, id int64, price float64, stock int, extra types.CatalogExtra) error {
	if s.failSKUs[extra.SKU] {
		return fmt.Errorf("write rejected")
	}
	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i].Price = price
			s.products[i].StockQuantity = stock
			s.products[i].CatalogExtra = &extra
			return nil
		}
	}
	return fmt.Errorf("product %d not found", id)
}

func testReconciler(store ProductStore, opts ...Option) *Reconciler {
	return New(store, zerolog.Nop(), opts...)
}

func TestReconcileCreatesNewProducts(t *testing.T) {
	store := newFakeStore()
	r := testReconciler(store)

	offers := []types.Offer{
		{SKU: "A1", Group1: "Напитки", Group2: "Соки", Name: "Сок", StockText: "5", PriceText: "100"},
		{SKU: "B2", Group1: "Еда", Name: "Хлеб", StockText: "2", PriceText: "30,5"},
	}

	result, err := r.Reconcile(context.Background(), offers, "first.xml")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, result.Errors)

	require.Len(t, store.products, 2)
	first := store.products[0]
	assert.Equal(t, "Сок", first.Name)
	assert.Equal(t, "Соки", *first.Category)
	assert.Equal(t, 100.0, first.Price)
	assert.Equal(t, 5, first.StockQuantity)
	assert.Equal(t, "SKU: A1 | Группа: Напитки | Подгруппа: Соки", *first.Description)
	require.NotNil(t, first.CatalogExtra)
	assert.Equal(t, "first.xml", first.CatalogExtra.ImportedFrom)
	assert.Equal(t, "5", first.CatalogExtra.OriginalOstatok)
	assert.Equal(t, "100", first.CatalogExtra.OriginalPrice)
}

func TestReconcileUpsertsBySKU(t *testing.T) {
	store := newFakeStore()
	r := testReconciler(store)
	ctx := context.Background()

	_, err := r.Reconcile(ctx, []types.Offer{
		{SKU: "A1", Group1: "Напитки", Name: "Сок", StockText: "5", PriceText: "100"},
	}, "first.xml")
	require.NoError(t, err)

	result, err := r.Reconcile(ctx, []types.Offer{
		{SKU: "A1", Group1: "Напитки", Name: "Сок (новое имя)", StockText: "3", PriceText: "150"},
	}, "second.xml")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 0, result.Created)

	// exactly one row, inventory refreshed
	require.Len(t, store.products, 1)
	p := store.products[0]
	assert.Equal(t, 150.0, p.Price)
	assert.Equal(t, 3, p.StockQuantity)
	assert.Equal(t, "second.xml", p.CatalogExtra.ImportedFrom)

	// descriptive fields are not overwritten on refresh
	assert.Equal(t, "Сок", p.Name)
}

func TestReconcileEmptySKUAlwaysInserts(t *testing.T) {
	store := newFakeStore()
	r := testReconciler(store)
	ctx := context.Background()

	offers := []types.Offer{{Name: "Безымянный", StockText: "1", PriceText: "10"}}
	_, err := r.Reconcile(ctx, offers, "a.xml")
	require.NoError(t, err)
	_, err = r.Reconcile(ctx, offers, "b.xml")
	require.NoError(t, err)

	assert.Len(t, store.products, 2, "offers without SKU never match existing rows")
}

func TestReconcilePartialFailure(t *testing.T) {
	store := newFakeStore()
	r := testReconciler(store)
	ctx := context.Background()

	// seed three products, then fail the middle one's refresh
	seed := []types.Offer{
		{SKU: "A1", Name: "Один", StockText: "1", PriceText: "1"},
		{SKU: "B2", Name: "Два", StockText: "1", PriceText: "1"},
		{SKU: "C3", Name: "Три", StockText: "1", PriceText: "1"},
	}
	_, err := r.Reconcile(ctx, seed, "seed.xml")
	require.NoError(t, err)

	store.failSKUs["B2"] = true
	result, err := r.Reconcile(ctx, seed, "refresh.xml")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Errors)
	assert.Len(t, store.products, 3, "failed offer must not produce a duplicate")
}

func TestReconcileBatchesInserts(t *testing.T) {
	store := newFakeStore()
	r := testReconciler(store, WithBatchSize(100))

	offers := make([]types.Offer, 250)
	for i := range offers {
		offers[i] = types.Offer{
			SKU:       fmt.Sprintf("SKU-%03d", i),
			Name:      fmt.Sprintf("Товар %d", i),
			StockText: "1",
			PriceText: "10",
		}
	}

	result, err := r.Reconcile(context.Background(), offers, "big.xml")
	require.NoError(t, err)
	assert.Equal(t, 250, result.Created)
	assert.Equal(t, 3, store.inserts, "250 offers flush as 100+100+50")
	assert.Len(t, store.products, 250)
}

func TestReconcileFailedBatchCountsAllRows(t *testing.T) {
	store := newFakeStore()
	store.failInsert = true
	r := testReconciler(store)

	offers := []types.Offer{
		{SKU: "A1", Name: "Один", StockText: "1", PriceText: "1"},
		{SKU: "B2", Name: "Два", StockText: "1", PriceText: "1"},
	}

	result, err := r.Reconcile(context.Background(), offers, "f.xml")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 2, result.Errors)
}

func TestReconcileStopsBetweenOffersOnCancel(t *testing.T) {
	store := newFakeStore()
	r := testReconciler(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := r.Reconcile(ctx, []types.Offer{
		{SKU: "A1", Name: "Один", StockText: "1", PriceText: "1"},
	}, "c.xml")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, result.Processed)
}

func TestReconcileStampsImportTime(t *testing.T) {
	store := newFakeStore()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := testReconciler(store, WithClock(func() time.Time { return fixed }))

	_, err := r.Reconcile(context.Background(), []types.Offer{
		{SKU: "A1", Name: "Один", StockText: "1", PriceText: "1"},
	}, "t.xml")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01T12:00:00Z", store.products[0].CatalogExtra.ImportedAt)
}
