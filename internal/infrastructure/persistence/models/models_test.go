package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductModel_RoundTrip(t *testing.T) {
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	p, err := catalog.NewProduct(uuid.New(), "1001", "Dome Tent", now)
	require.NoError(t, err)
	p.Price = decimal.RequireFromString("1299.90")
	p.Stock = 3
	p.SetImages([]string{"a.jpg", "b.jpg"})
	p.Rating = decimal.RequireFromString("4.20")
	p.HasVariations = true
	p.Source = "Huglu Outdoor"

	m := ProductModelFromDomain(p)
	assert.Equal(t, "products", m.TableName())
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, []string(m.Images))

	back := m.ToDomain()
	assert.Equal(t, p, back)

	m.Images[0] = "changed.jpg"
	assert.Equal(t, "a.jpg", p.Images[0], "model must not alias the domain slice")
}

func TestTenantModel_RoundTrip(t *testing.T) {
	tenant := identity.Tenant{
		BaseEntity: shared.NewBaseEntity(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		Code:       "huglu",
		Name:       "Huglu Store",
		IsActive:   true,
	}
	var m TenantModel
	m.FromDomain(tenant)

	assert.Equal(t, "tenants", m.TableName())
	assert.Equal(t, tenant, m.ToDomain())
}
