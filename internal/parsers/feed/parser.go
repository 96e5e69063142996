// Package feed extracts product offers from vendor 1C XML exports. The
// exports are only loosely structured: item nodes show up as <offer>,
// <product> or <item>, identity and grouping ride on attributes, and the
// remaining fields sit in child elements under several possible names.
package feed

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/torgpult/catalog-service/internal/parsers/charset"
	"github.com/torgpult/catalog-service/internal/types"
)

// node is a generic decoded XML element.
type node struct {
	name     string
	attrs    map[string]string
	children []*node
	text     string
}

// Parse extracts offers from raw feed bytes. filename is carried into
// errors for the import log. A malformed document fails as a whole; a
// well-formed document with unusable individual items yields the good
// items plus per-item errors in the result.
func Parse(content []byte, filename string) (*types.ParseResult, error) {
	enc := charset.DetectEncoding(content)
	decoded, err := charset.Decode(content, enc)
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}

	root, err := decodeDocument(decoded)
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}

	var items []*node
	itemTag := ""
	for _, tag := range itemTags {
		items = collectByName(root, tag, nil)
		if len(items) > 0 {
			itemTag = tag
			break
		}
	}
	if itemTag == "" {
		return nil, &NoOffersError{Filename: filename}
	}

	result := &types.ParseResult{
		Offers:     make([]types.Offer, 0, len(items)),
		TotalNodes: len(items),
		ItemTag:    itemTag,
	}

	for i, item := range items {
		offer, err := extractOffer(item, i+1)
		if err != nil {
			result.Errors = append(result.Errors, types.ExtractionError{
				Position: i + 1,
				Message:  err.Error(),
			})
			continue
		}
		result.Offers = append(result.Offers, offer)
	}

	return result, nil
}

// decodeDocument parses the whole document into a node tree. The charset
// has already been normalized to UTF-8, so the decoder reader is a no-op.
func decodeDocument(content string) (*node, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))
	decoder.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	root := &node{name: ""}
	stack := []*node{root}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local, attrs: make(map[string]string, len(t.Attr))}
			for _, attr := range t.Attr {
				n.attrs[attr.Name.Local] = attr.Value
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
			stack = append(stack, n)

		case xml.CharData:
			if text := strings.TrimSpace(string(t)); text != "" {
				cur := stack[len(stack)-1]
				cur.text += text
			}

		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if len(stack) != 1 {
		return nil, io.ErrUnexpectedEOF
	}
	return root, nil
}

// collectByName gathers all nodes with the given name, document order,
// anywhere in the tree.
func collectByName(n *node, name string, acc []*node) []*node {
	for _, child := range n.children {
		if child.name == name {
			acc = append(acc, child)
		}
		acc = collectByName(child, name, acc)
	}
	return acc
}

// extractOffer maps one item node to an Offer using the fallback chains.
func extractOffer(item *node, position int) (types.Offer, error) {
	if item == nil {
		return types.Offer{}, io.ErrUnexpectedEOF
	}

	return types.Offer{
		SKU:       firstAttr(item, skuAttrs, ""),
		Group1:    firstAttr(item, group1Attrs, defaultGroup1),
		Group2:    firstAttr(item, group2Attrs, ""),
		Name:      firstChildText(item, nameElems, defaultName),
		StockText: firstChildText(item, stockElems, defaultStock),
		PriceText: firstChildText(item, priceElems, defaultPrice),
		Position:  position,
	}, nil
}

// firstAttr returns the first non-empty attribute from the candidate
// list, or fallback when none are set.
func firstAttr(item *node, candidates []string, fallback string) string {
	for _, name := range candidates {
		if v, ok := item.attrs[name]; ok && v != "" {
			return v
		}
	}
	return fallback
}

// firstChildText returns the text of the first direct child element
// matching the candidate list, or fallback when none carry text.
func firstChildText(item *node, candidates []string, fallback string) string {
	for _, name := range candidates {
		for _, child := range item.children {
			if child.name == name && child.text != "" {
				return child.text
			}
		}
	}
	return fallback
}
