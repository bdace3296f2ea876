package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Tenant is a storefront whose catalog is kept in sync with vendor feeds
type Tenant struct {
	shared.BaseEntity
	Code     string
	Name     string
	IsActive bool
}

// TenantDirectory lists the tenants eligible for catalog synchronization
type TenantDirectory interface {
	// ListActiveTenants returns active tenants in a stable order
	ListActiveTenants(ctx context.Context) ([]Tenant, error)

	// GetActiveTenant returns one active tenant.
	// Returns shared.ErrNotFound if it does not exist or is inactive.
	GetActiveTenant(ctx context.Context, id uuid.UUID) (*Tenant, error)
}
