package types

import "time"

// Offer represents one product entry extracted from a vendor XML feed.
// It lives only for the duration of a single import pass.
type Offer struct {
	SKU       string `json:"sku"`
	Group1    string `json:"group1"`
	Group2    string `json:"group2"`
	Name      string `json:"name"`
	StockText string `json:"stockText"`
	PriceText string `json:"priceText"`
	Position  int    `json:"position"` // 1-based position in the source document
}

// Category returns the effective category: subgroup wins over group.
func (o Offer) Category() string {
	if o.Group2 != "" {
		return o.Group2
	}
	return o.Group1
}

// CatalogExtra is the provenance payload attached to imported products.
// JSON keys match the products.catalog_extra column contract.
type CatalogExtra struct {
	SKU             string `json:"sku"`
	Group1          string `json:"group1"`
	Group2          string `json:"group2"`
	OriginalOstatok string `json:"original_ostatok"`
	OriginalPrice   string `json:"original_price"`
	ImportedFrom    string `json:"imported_from"`
	ImportedAt      string `json:"imported_at"`
}

// ExtractionError represents a per-offer failure during feed extraction
type ExtractionError struct {
	Position int    `json:"position,omitempty"`
	Message  string `json:"message"`
}

// ParseResult represents the outcome of extracting one feed document
type ParseResult struct {
	Offers     []Offer           `json:"offers"`
	Errors     []ExtractionError `json:"errors,omitempty"`
	TotalNodes int               `json:"totalNodes"`
	ItemTag    string            `json:"itemTag"` // tag name that matched: offer, product or item
}

// RunStatus represents status of one processed source file
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusError   RunStatus = "error"
)

// ImportSummary is the aggregate outcome of one directory sync run
type ImportSummary struct {
	RunID          string    `json:"runId"`
	ProcessedFiles int       `json:"processedFiles"`
	SkippedFiles   int       `json:"skippedFiles"`
	FailedFiles    int       `json:"failedFiles"`
	TotalOffers    int       `json:"totalOffers"`
	Errors         []string  `json:"errors,omitempty"`
	StartedAt      time.Time `json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
}
