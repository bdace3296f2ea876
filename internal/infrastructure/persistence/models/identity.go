package models

import (
	"github.com/storefront/backend/internal/domain/identity"
)

// TenantModel is the persistence model for the Tenant domain entity
type TenantModel struct {
	BaseModel
	Code     string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name     string `gorm:"type:varchar(200);not null"`
	IsActive bool   `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant entity
func (m *TenantModel) ToDomain() identity.Tenant {
	return identity.Tenant{
		BaseEntity: m.BaseModel.ToDomain(),
		Code:       m.Code,
		Name:       m.Name,
		IsActive:   m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Tenant entity
func (m *TenantModel) FromDomain(t identity.Tenant) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.Code = t.Code
	m.Name = t.Name
	m.IsActive = t.IsActive
}
