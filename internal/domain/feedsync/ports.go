package feedsync

import "context"

// Fetcher retrieves the raw body of a feed source
type Fetcher interface {
	Fetch(ctx context.Context, source FeedSource) ([]byte, error)
}

// Parser turns a raw feed body into a normalized document.
// The returned node is a synthetic document node whose single child is the
// XML root element.
type Parser interface {
	Parse(source FeedSource, body []byte) (*Node, error)
}

// ProductMapper is the strategy for one feed format
type ProductMapper interface {
	// Format returns the feed format this mapper understands
	Format() Format
	// Items returns the product item nodes of a parsed document
	Items(doc *Node) []*Node
	// Map converts one item into a product, a skip or an error
	Map(item *Node, source FeedSource) MapResult
}

// MapperResolver selects the mapper for a declared feed format
type MapperResolver interface {
	MapperFor(format Format) (ProductMapper, error)
}
