package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTenantRepository_ListActiveTenants(t *testing.T) {
	t.Run("queries active tenants in stable order", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTenantRepository(db)

		a, b := uuid.New(), uuid.New()
		rows := sqlmock.NewRows([]string{"id", "code", "name", "is_active"}).
			AddRow(a, "alpha", "Alpha", true).
			AddRow(b, "beta", "Beta", true)
		mock.ExpectQuery(`SELECT \* FROM "tenants" WHERE is_active = \$1 ORDER BY name ASC,id ASC`).
			WithArgs(true).
			WillReturnRows(rows)

		tenants, err := repo.ListActiveTenants(context.Background())
		require.NoError(t, err)
		require.Len(t, tenants, 2)
		assert.Equal(t, a, tenants[0].ID)
		assert.Equal(t, "Beta", tenants[1].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTenantRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormTenantRepository(db)

	insert := func(name string, active bool) identity.Tenant {
		tenant := identity.Tenant{
			BaseEntity: shared.NewBaseEntity(time.Now().UTC()),
			Code:       name,
			Name:       name,
			IsActive:   active,
		}
		var m models.TenantModel
		m.FromDomain(tenant)
		require.NoError(t, db.Create(&m).Error)
		return tenant
	}

	zulu := insert("zulu", true)
	alpha := insert("alpha", true)
	dormant := insert("dormant", false)

	t.Run("lists only active tenants ordered by name", func(t *testing.T) {
		tenants, err := repo.ListActiveTenants(ctx)
		require.NoError(t, err)
		require.Len(t, tenants, 2)
		assert.Equal(t, alpha.ID, tenants[0].ID)
		assert.Equal(t, zulu.ID, tenants[1].ID)
	})

	t.Run("get active tenant", func(t *testing.T) {
		got, err := repo.GetActiveTenant(ctx, zulu.ID)
		require.NoError(t, err)
		assert.Equal(t, "zulu", got.Code)
	})

	t.Run("inactive tenant is not found", func(t *testing.T) {
		_, err := repo.GetActiveTenant(ctx, dormant.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown tenant is not found", func(t *testing.T) {
		_, err := repo.GetActiveTenant(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
