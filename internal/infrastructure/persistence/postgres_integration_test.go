//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

// newPostgresDatabase starts a throwaway PostgreSQL container and connects
// through NewDatabase, the same path the server uses.
func newPostgresDatabase(t *testing.T) *Database {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("admin123"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := NewDatabase(&config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "postgres",
		Password:        "admin123",
		DBName:          "storefront_test",
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 5,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.DB.AutoMigrate(&models.TenantModel{}, &models.ProductModel{}))
	return db
}

func TestPostgres_ProductLifecycle(t *testing.T) {
	db := newPostgresDatabase(t)
	ctx := context.Background()
	require.NoError(t, db.Ping(ctx))

	tenantRepo := NewGormTenantRepository(db.DB)
	repo := NewGormProductRepository(db.DB)

	now := time.Now().UTC().Truncate(time.Microsecond)
	tenant := identity.Tenant{BaseEntity: shared.NewBaseEntity(now), Code: "huglu", Name: "Huglu", IsActive: true}
	var tm models.TenantModel
	tm.FromDomain(tenant)
	require.NoError(t, db.DB.Create(&tm).Error)

	tenants, err := tenantRepo.ListActiveTenants(ctx)
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, tenant.ID, tenants[0].ID)

	product := newTestProduct(t, tenant.ID, "1001")
	require.NoError(t, repo.Insert(ctx, product))

	t.Run("duplicate external ID is rejected", func(t *testing.T) {
		dup := newTestProduct(t, tenant.ID, "1001")
		assert.ErrorIs(t, repo.Insert(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("same external ID under another tenant is allowed", func(t *testing.T) {
		other := newTestProduct(t, uuid.New(), "1001")
		assert.NoError(t, repo.Insert(ctx, other))
	})

	t.Run("update writes only changed columns", func(t *testing.T) {
		stored, err := repo.FindByExternalID(ctx, tenant.ID, "1001")
		require.NoError(t, err)

		changes := stored.SyncChanges(stored.Name, decimal.RequireFromString("129.90"), stored.Stock, stored.Images, now.Add(time.Hour))
		assert.Equal(t, []string{"price"}, changes.Fields())
		require.NoError(t, repo.UpdateFields(ctx, tenant.ID, stored.ID, changes))

		reloaded, err := repo.FindByExternalID(ctx, tenant.ID, "1001")
		require.NoError(t, err)
		assert.True(t, reloaded.Price.Equal(decimal.RequireFromString("129.90")))
		assert.Equal(t, stored.Name, reloaded.Name)
		assert.Equal(t, []string{"https://cdn.example.com/1.jpg", "https://cdn.example.com/2.jpg"}, reloaded.Images)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := repo.FindByExternalID(ctx, tenant.ID, "404")
		assert.ErrorIs(t, err, shared.ErrNotFound)

		price := decimal.NewFromInt(1)
		err = repo.UpdateFields(ctx, tenant.ID, uuid.New(), catalog.ChangeSet{Price: &price, LastUpdated: now})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
