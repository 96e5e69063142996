package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/torgpult/catalog-service/internal/types"
)

func TestParseOfferDocument(t *testing.T) {
	content := []byte(`<?xml version="1.0" encoding="utf-8"?>
<catalog>
  <offer sku="A1" group1="Напитки" group2="Соки">
    <name>Сок яблочный</name>
    <ostatok>12,5</ostatok>
    <price>1 234,50</price>
  </offer>
  <offer sku="B2" group1="Напитки">
    <name>Вода</name>
    <ostatok>3</ostatok>
    <price>25</price>
  </offer>
</catalog>`)

	result, err := Parse(content, "catalog.xml")
	require.NoError(t, err)
	require.Len(t, result.Offers, 2)
	assert.Equal(t, "offer", result.ItemTag)
	assert.Equal(t, 2, result.TotalNodes)
	assert.Empty(t, result.Errors)

	first := result.Offers[0]
	assert.Equal(t, "A1", first.SKU)
	assert.Equal(t, "Напитки", first.Group1)
	assert.Equal(t, "Соки", first.Group2)
	assert.Equal(t, "Сок яблочный", first.Name)
	assert.Equal(t, "12,5", first.StockText)
	assert.Equal(t, "1 234,50", first.PriceText)
	assert.Equal(t, 1, first.Position)

	second := result.Offers[1]
	assert.Equal(t, "", second.Group2)
	assert.Equal(t, "Напитки", second.Category())
}

func TestParseTagFallback(t *testing.T) {
	// zero <offer> nodes but one <product> node still extracts
	content := []byte(`<root><product sku="P1"><name>Товар</name><price>10</price></product></root>`)

	result, err := Parse(content, "products.xml")
	require.NoError(t, err)
	require.Len(t, result.Offers, 1)
	assert.Equal(t, "product", result.ItemTag)
	assert.Equal(t, "P1", result.Offers[0].SKU)
}

func TestParseItemTagFallback(t *testing.T) {
	content := []byte(`<feed><item id="I1"><title>Штука</title><stock>4</stock><cost>7,5</cost></item></feed>`)

	result, err := Parse(content, "items.xml")
	require.NoError(t, err)
	require.Len(t, result.Offers, 1)

	offer := result.Offers[0]
	assert.Equal(t, "item", result.ItemTag)
	assert.Equal(t, "I1", offer.SKU, "id attribute is the SKU fallback")
	assert.Equal(t, "Штука", offer.Name, "title is the name fallback")
	assert.Equal(t, "4", offer.StockText, "stock is the quantity fallback")
	assert.Equal(t, "7,5", offer.PriceText, "cost is the price fallback")
}

func TestParseAttributeFallbacks(t *testing.T) {
	content := []byte(`<root><offer category="Еда" subcategory="Хлеб"><name>Батон</name></offer></root>`)

	result, err := Parse(content, "feed.xml")
	require.NoError(t, err)
	require.Len(t, result.Offers, 1)

	offer := result.Offers[0]
	assert.Equal(t, "", offer.SKU)
	assert.Equal(t, "Еда", offer.Group1)
	assert.Equal(t, "Хлеб", offer.Group2)
	assert.Equal(t, "0", offer.StockText)
	assert.Equal(t, "0", offer.PriceText)
}

func TestParseDefaults(t *testing.T) {
	content := []byte(`<root><offer></offer></root>`)

	result, err := Parse(content, "bare.xml")
	require.NoError(t, err)
	require.Len(t, result.Offers, 1)

	offer := result.Offers[0]
	assert.Equal(t, "", offer.SKU)
	assert.Equal(t, "Без категории", offer.Group1)
	assert.Equal(t, "Неизвестный товар", offer.Name)
	assert.Equal(t, "Без категории", offer.Category())
}

func TestParseNoOffers(t *testing.T) {
	content := []byte(`<root><row><name>что-то</name></row></root>`)

	_, err := Parse(content, "rows.xml")
	var noOffers *NoOffersError
	require.ErrorAs(t, err, &noOffers)
	assert.Equal(t, "rows.xml", noOffers.Filename)
}

func TestParseMalformed(t *testing.T) {
	content := []byte(`<root><offer sku="A1"><name>Сок</root>`)

	_, err := Parse(content, "broken.xml")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "broken.xml", parseErr.Filename)
}

func TestParseWindows1251Document(t *testing.T) {
	// "<root><offer sku="A1"><name>Сок</name></offer></root>" with the
	// element text in windows-1251 bytes
	content := append([]byte(`<?xml version="1.0" encoding="windows-1251"?><root><offer sku="A1"><name>`),
		0xD1, 0xEE, 0xEA)
	content = append(content, []byte(`</name></offer></root>`)...)

	result, err := Parse(content, "cp1251.xml")
	require.NoError(t, err)
	require.Len(t, result.Offers, 1)
	assert.Equal(t, "Сок", result.Offers[0].Name)
}

func TestCategoryDerivation(t *testing.T) {
	tests := []struct {
		name     string
		offer    types.Offer
		expected string
	}{
		{name: "Group only", offer: types.Offer{Group1: "Drinks"}, expected: "Drinks"},
		{name: "Subgroup wins", offer: types.Offer{Group1: "Drinks", Group2: "Soda"}, expected: "Soda"},
		{name: "Both empty", offer: types.Offer{}, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.offer.Category())
		})
	}
}
