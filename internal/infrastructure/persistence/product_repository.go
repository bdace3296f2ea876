package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByExternalID finds a product by its feed identifier within a tenant
func (r *GormProductRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Insert stores a new product
func (r *GormProductRepository) Insert(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// UpdateFields writes only the changed sync columns plus last_updated.
// Storefront-owned columns such as rating, and the row's updated_at, are
// never part of the statement.
func (r *GormProductRepository) UpdateFields(ctx context.Context, tenantID, id uuid.UUID, changes catalog.ChangeSet) error {
	if changes.IsEmpty() {
		return nil
	}

	columns := map[string]any{
		"last_updated": changes.LastUpdated,
	}
	if changes.Name != nil {
		columns["name"] = *changes.Name
	}
	if changes.Price != nil {
		columns["price"] = *changes.Price
	}
	if changes.Stock != nil {
		columns["stock"] = *changes.Stock
	}
	if changes.ImagesChanged {
		columns["images"] = datatypes.JSONSlice[string](append([]string{}, changes.Images...))
		columns["image"] = changes.Image
	}

	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		UpdateColumns(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
