package feedsync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/feedsync"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Outcome is the result of reconciling one product
type Outcome int

const (
	OutcomeCreated Outcome = iota + 1
	OutcomeUpdated
	OutcomeUnchanged
)

// String returns the string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	case OutcomeUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// Reconciler upserts canonical products into a tenant's catalog.
// Each product is its own unit of work.
type Reconciler struct {
	products catalog.ProductRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewReconciler creates a Reconciler
func NewReconciler(products catalog.ProductRepository, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		products: products,
		logger:   logger,
		now:      time.Now,
	}
}

// Reconcile inserts the product when the tenant has no row for its external
// ID, otherwise writes only the synced fields that changed. Rating, review
// count and variation flag of an existing row are never touched.
func (r *Reconciler) Reconcile(ctx context.Context, tenantID uuid.UUID, p *feedsync.CanonicalProduct) (Outcome, error) {
	existing, err := r.products.FindByExternalID(ctx, tenantID, p.ExternalID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return r.insert(ctx, tenantID, p)
	case err != nil:
		return 0, &feedsync.PersistenceError{Op: "find", TenantID: tenantID, ExternalID: p.ExternalID, Err: err}
	}

	changes := existing.SyncChanges(p.Name, p.Price, p.TotalStock, p.Images, p.LastUpdated)
	if changes.IsEmpty() {
		return OutcomeUnchanged, nil
	}
	if err := r.products.UpdateFields(ctx, tenantID, existing.ID, changes); err != nil {
		return 0, &feedsync.PersistenceError{Op: "update", TenantID: tenantID, ExternalID: p.ExternalID, Err: err}
	}

	r.logger.Debug("Product updated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("external_id", p.ExternalID),
		zap.Strings("fields", changes.Fields()),
	)
	return OutcomeUpdated, nil
}

func (r *Reconciler) insert(ctx context.Context, tenantID uuid.UUID, p *feedsync.CanonicalProduct) (Outcome, error) {
	product, err := catalog.NewProduct(tenantID, p.ExternalID, p.Name, r.now())
	if err != nil {
		return 0, &feedsync.PersistenceError{Op: "insert", TenantID: tenantID, ExternalID: p.ExternalID, Err: err}
	}
	product.Description = p.Description
	product.Price = p.Price.Round(catalog.PriceScale)
	product.Category = p.Category
	product.Brand = p.Brand
	product.SetImages(p.Images)
	product.Stock = p.TotalStock
	product.Rating = p.Rating
	product.ReviewCount = p.ReviewCount
	product.HasVariations = p.VariationCount > 0
	product.Source = p.SourceName
	product.LastUpdated = p.LastUpdated

	if err := r.products.Insert(ctx, product); err != nil {
		return 0, &feedsync.PersistenceError{Op: "insert", TenantID: tenantID, ExternalID: p.ExternalID, Err: err}
	}

	r.logger.Debug("Product created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("external_id", p.ExternalID),
	)
	return OutcomeCreated, nil
}
