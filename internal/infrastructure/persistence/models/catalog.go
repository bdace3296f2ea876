package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"gorm.io/datatypes"
)

// ProductModel is the persistence model for the Product domain entity.
// (tenant_id, external_id) is the upsert key of catalog sync.
type ProductModel struct {
	BaseModel
	TenantID      uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_product_tenant_external,priority:1"`
	ExternalID    string                      `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_tenant_external,priority:2"`
	Name          string                      `gorm:"type:varchar(500);not null"`
	Description   string                      `gorm:"type:text"`
	Price         decimal.Decimal             `gorm:"type:decimal(10,2);not null"`
	Category      string                      `gorm:"type:varchar(200)"`
	Brand         string                      `gorm:"type:varchar(200)"`
	Image         string                      `gorm:"type:varchar(1000)"`
	Images        datatypes.JSONSlice[string] `gorm:"not null"`
	Stock         int                         `gorm:"not null"`
	Rating        decimal.Decimal             `gorm:"type:decimal(3,2);not null"`
	ReviewCount   int                         `gorm:"not null"`
	HasVariations bool                        `gorm:"not null"`
	Source        string                      `gorm:"type:varchar(200);index"`
	LastUpdated   time.Time                   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity
func (m *ProductModel) ToDomain() *catalog.Product {
	images := make([]string, len(m.Images))
	copy(images, m.Images)
	return &catalog.Product{
		BaseEntity:    m.BaseModel.ToDomain(),
		TenantID:      m.TenantID,
		ExternalID:    m.ExternalID,
		Name:          m.Name,
		Description:   m.Description,
		Price:         m.Price,
		Category:      m.Category,
		Brand:         m.Brand,
		Image:         m.Image,
		Images:        images,
		Stock:         m.Stock,
		Rating:        m.Rating,
		ReviewCount:   m.ReviewCount,
		HasVariations: m.HasVariations,
		Source:        m.Source,
		LastUpdated:   m.LastUpdated,
	}
}

// FromDomain populates the persistence model from a domain Product entity
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.TenantID = p.TenantID
	m.ExternalID = p.ExternalID
	m.Name = p.Name
	m.Description = p.Description
	m.Price = p.Price
	m.Category = p.Category
	m.Brand = p.Brand
	m.Image = p.Image
	m.Images = datatypes.JSONSlice[string](append([]string{}, p.Images...))
	m.Stock = p.Stock
	m.Rating = p.Rating
	m.ReviewCount = p.ReviewCount
	m.HasVariations = p.HasVariations
	m.Source = p.Source
	m.LastUpdated = p.LastUpdated
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
