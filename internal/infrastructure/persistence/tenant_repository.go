package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTenantRepository implements identity.TenantDirectory using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// ListActiveTenants returns active tenants ordered by name, then ID
func (r *GormTenantRepository) ListActiveTenants(ctx context.Context) ([]identity.Tenant, error) {
	var tenantModels []models.TenantModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Order("id ASC").
		Find(&tenantModels).Error; err != nil {
		return nil, err
	}

	tenants := make([]identity.Tenant, len(tenantModels))
	for i := range tenantModels {
		tenants[i] = tenantModels[i].ToDomain()
	}
	return tenants, nil
}

// GetActiveTenant returns an active tenant by ID
func (r *GormTenantRepository) GetActiveTenant(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	var model models.TenantModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	tenant := model.ToDomain()
	return &tenant, nil
}
