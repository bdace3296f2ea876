package catalog

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// PriceScale is the number of decimal places a stored price keeps
const PriceScale int32 = 2

// Product is a tenant-scoped catalog row kept in sync with a vendor feed.
// The pair (TenantID, ExternalID) is unique. Rating, ReviewCount and
// HasVariations belong to the storefront and are never changed by sync.
type Product struct {
	shared.BaseEntity
	TenantID      uuid.UUID
	ExternalID    string
	Name          string
	Description   string
	Price         decimal.Decimal
	Category      string
	Brand         string
	Image         string
	Images        []string
	Stock         int
	Rating        decimal.Decimal
	ReviewCount   int
	HasVariations bool
	Source        string
	LastUpdated   time.Time
}

// NewProduct creates a new product for a tenant
func NewProduct(tenantID uuid.UUID, externalID, name string, now time.Time) (*Product, error) {
	if tenantID == uuid.Nil {
		return nil, errors.New("tenant ID cannot be empty")
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, errors.New("external ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("product name cannot be empty")
	}

	return &Product{
		BaseEntity:  shared.NewBaseEntity(now),
		TenantID:    tenantID,
		ExternalID:  externalID,
		Name:        name,
		Price:       decimal.Zero,
		Rating:      decimal.Zero,
		Images:      []string{},
		LastUpdated: now,
	}, nil
}

// SetImages replaces the image list and keeps the primary image in step with it
func (p *Product) SetImages(images []string) {
	p.Images = append([]string{}, images...)
	p.Image = ""
	if len(p.Images) > 0 {
		p.Image = p.Images[0]
	}
}

// SyncChanges compares the synced fields against fresh feed values and applies
// the ones that differ. The returned change set is empty when nothing changed,
// in which case the product, LastUpdated included, is left untouched.
// The price is compared at PriceScale, the precision the row stores.
func (p *Product) SyncChanges(name string, price decimal.Decimal, stock int, images []string, at time.Time) ChangeSet {
	var cs ChangeSet
	price = price.Round(PriceScale)

	if p.Name != name {
		cs.Name = &name
		p.Name = name
	}
	if !p.Price.Equal(price) {
		cs.Price = &price
		p.Price = price
	}
	if p.Stock != stock {
		cs.Stock = &stock
		p.Stock = stock
	}
	if !equalImages(p.Images, images) {
		p.SetImages(images)
		cs.Images = p.Images
		cs.Image = p.Image
		cs.ImagesChanged = true
	}

	if cs.IsEmpty() {
		return cs
	}
	cs.LastUpdated = at
	p.LastUpdated = at
	return cs
}

// ChangeSet holds the synced columns that differ from the stored row.
// Nil pointers mean the column is unchanged.
type ChangeSet struct {
	Name          *string
	Price         *decimal.Decimal
	Stock         *int
	Images        []string
	Image         string
	ImagesChanged bool
	LastUpdated   time.Time
}

// IsEmpty returns true if no synced column changed
func (c ChangeSet) IsEmpty() bool {
	return c.Name == nil && c.Price == nil && c.Stock == nil && !c.ImagesChanged
}

// Fields returns the names of the changed columns, sorted
func (c ChangeSet) Fields() []string {
	var fields []string
	if c.Name != nil {
		fields = append(fields, "name")
	}
	if c.Price != nil {
		fields = append(fields, "price")
	}
	if c.Stock != nil {
		fields = append(fields, "stock")
	}
	if c.ImagesChanged {
		fields = append(fields, "image", "images")
	}
	sort.Strings(fields)
	return fields
}

// equalImages compares image lists in order; nil and empty are equal
func equalImages(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
