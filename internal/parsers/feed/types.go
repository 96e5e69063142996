package feed

import "fmt"

// itemTags are the candidate item node names, in priority order. The
// first tag that matches at least one node anywhere in the document wins.
var itemTags = []string{"offer", "product", "item"}

// Fallback chains for the fields 1C exports tag inconsistently. Each list
// is evaluated in order; the first non-empty value wins.
var (
	skuAttrs    = []string{"sku", "id"}
	group1Attrs = []string{"group1", "category"}
	group2Attrs = []string{"group2", "subcategory"}
	nameElems   = []string{"name", "title"}
	stockElems  = []string{"ostatok", "quantity", "stock"}
	priceElems  = []string{"price", "cost"}
)

// Defaults for fields the feed omits entirely.
const (
	defaultGroup1 = "Без категории"
	defaultName   = "Неизвестный товар"
	defaultStock  = "0"
	defaultPrice  = "0"
)

// ParseError means the document is not well-formed XML. The whole file is
// rejected; there are no partial results.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("feed: parse %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NoOffersError means the document parsed but contains none of the
// recognized item tags.
type NoOffersError struct {
	Filename string
}

func (e *NoOffersError) Error() string {
	return fmt.Sprintf("feed: no offers found in %s", e.Filename)
}
