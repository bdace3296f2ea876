package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the persistence operations used by catalog sync.
// Each call is its own unit of work.
type ProductRepository interface {
	// FindByExternalID finds a product by its feed identifier within a tenant.
	// Returns shared.ErrNotFound if absent.
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*Product, error)

	// Insert stores a new product. Returns shared.ErrAlreadyExists on a
	// duplicate (tenant, external ID) pair.
	Insert(ctx context.Context, product *Product) error

	// UpdateFields writes only the columns present in the change set.
	// Returns shared.ErrNotFound if no row matched.
	UpdateFields(ctx context.Context, tenantID, id uuid.UUID, changes ChangeSet) error
}
