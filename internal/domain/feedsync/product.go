package feedsync

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CanonicalProduct is a normalized, source-agnostic product built from one feed item.
// It lives only for the duration of a sync run.
type CanonicalProduct struct {
	ExternalID     string
	Name           string
	Description    string
	Price          decimal.Decimal
	Category       string
	Brand          string
	PrimaryImage   string
	Images         []string
	TotalStock     int
	VariationCount int
	SourceName     string
	LastUpdated    time.Time

	// Vendor details carried for logging and first insert
	ProductURL   string
	SalesUnit    string
	CategoryTree string
	Rating       decimal.Decimal
	ReviewCount  int
}

// Validate checks the invariants every mapper must uphold
func (p *CanonicalProduct) Validate() error {
	if strings.TrimSpace(p.ExternalID) == "" {
		return fmt.Errorf("%w: external ID is required", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidProduct)
	}
	if p.TotalStock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidProduct)
	}
	return nil
}

// MapKind tags the outcome of mapping a single feed item
type MapKind int

const (
	// MapProduct means the item produced a canonical product
	MapProduct MapKind = iota
	// MapSkip means the item is not a product and is silently excluded
	MapSkip
	// MapError means mapping failed and the item is dropped
	MapError
)

// String returns the string representation of MapKind
func (k MapKind) String() string {
	switch k {
	case MapProduct:
		return "product"
	case MapSkip:
		return "skip"
	case MapError:
		return "error"
	default:
		return "unknown"
	}
}

// MapResult is the tagged outcome of mapping one feed item
type MapResult struct {
	Kind    MapKind
	Product *CanonicalProduct
	Reason  string
	Err     error
}

// Mapped returns a product outcome
func Mapped(p *CanonicalProduct) MapResult {
	return MapResult{Kind: MapProduct, Product: p}
}

// Skipped returns a skip outcome with a short reason for debug logs
func Skipped(reason string) MapResult {
	return MapResult{Kind: MapSkip, Reason: reason}
}

// Failed returns an error outcome
func Failed(err error) MapResult {
	return MapResult{Kind: MapError, Err: err}
}
