package database

import (
	"time"

	"github.com/torgpult/catalog-service/internal/types"
)

// Product represents one sellable catalog item. Products carrying a SKU
// inside CatalogExtra originate from feed imports; products without one
// were entered manually and the importer never touches them.
type Product struct {
	ID                int64               `json:"id"`
	Name              string              `json:"name"`
	Category          *string             `json:"category"`
	Price             float64             `json:"price"`
	StockQuantity     int                 `json:"stock_quantity"`
	Description       *string             `json:"description"`
	ImageURL          *string             `json:"image_url"`
	CustomDescription *string             `json:"custom_description"`
	CatalogExtra      *types.CatalogExtra `json:"catalog_extra"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// ImportFileRecord is one append-only row of the import audit log. The
// newest row per filename decides whether that file is reprocessed.
type ImportFileRecord struct {
	ID            int64           `json:"id"`
	Filename      string          `json:"filename"`
	FileHash      string          `json:"file_hash"`
	LastModified  *time.Time      `json:"last_modified"`
	ProductsCount int             `json:"products_count"`
	Status        types.RunStatus `json:"status"`
	ErrorMessage  *string         `json:"error_message"`
	ProcessedAt   time.Time       `json:"processed_at"`
}
