package feedsync

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/feedsync"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Insert(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateFields(ctx context.Context, tenantID, id uuid.UUID, changes catalog.ChangeSet) error {
	args := m.Called(ctx, tenantID, id, changes)
	return args.Error(0)
}

// MockTenantDirectory is a mock implementation of identity.TenantDirectory
type MockTenantDirectory struct {
	mock.Mock
}

func (m *MockTenantDirectory) ListActiveTenants(ctx context.Context) ([]identity.Tenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Tenant), args.Error(1)
}

func (m *MockTenantDirectory) GetActiveTenant(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

// memoryProductRepository keeps products in memory keyed by tenant and external ID
type memoryProductRepository struct {
	mu       sync.Mutex
	products map[string]*catalog.Product
	inserts  int
	updates  int
	fields   [][]string
}

func newMemoryProductRepository() *memoryProductRepository {
	return &memoryProductRepository{products: make(map[string]*catalog.Product)}
}

func memoryKey(tenantID uuid.UUID, externalID string) string {
	return tenantID.String() + "/" + externalID
}

func (r *memoryProductRepository) FindByExternalID(_ context.Context, tenantID uuid.UUID, externalID string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[memoryKey(tenantID, externalID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *p
	clone.Images = append([]string{}, p.Images...)
	return &clone, nil
}

func (r *memoryProductRepository) Insert(_ context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memoryKey(product.TenantID, product.ExternalID)
	if _, exists := r.products[key]; exists {
		return shared.ErrAlreadyExists
	}
	clone := *product
	r.products[key] = &clone
	r.inserts++
	return nil
}

func (r *memoryProductRepository) UpdateFields(_ context.Context, tenantID, id uuid.UUID, changes catalog.ChangeSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.TenantID != tenantID || p.ID != id {
			continue
		}
		if changes.Name != nil {
			p.Name = *changes.Name
		}
		if changes.Price != nil {
			p.Price = *changes.Price
		}
		if changes.Stock != nil {
			p.Stock = *changes.Stock
		}
		if changes.ImagesChanged {
			p.Images = append([]string{}, changes.Images...)
			p.Image = changes.Image
		}
		p.LastUpdated = changes.LastUpdated
		r.updates++
		r.fields = append(r.fields, changes.Fields())
		return nil
	}
	return shared.ErrNotFound
}

func (r *memoryProductRepository) get(tenantID uuid.UUID, externalID string) *catalog.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[memoryKey(tenantID, externalID)]
}

func (r *memoryProductRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.products)
}

// staticDirectory serves a fixed tenant list
type staticDirectory struct {
	tenants []identity.Tenant
	err     error
}

func (d *staticDirectory) ListActiveTenants(context.Context) ([]identity.Tenant, error) {
	if d.err != nil {
		return nil, d.err
	}
	out := append([]identity.Tenant(nil), d.tenants...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (d *staticDirectory) GetActiveTenant(_ context.Context, id uuid.UUID) (*identity.Tenant, error) {
	for _, t := range d.tenants {
		if t.ID == id {
			tenant := t
			return &tenant, nil
		}
	}
	return nil, shared.ErrNotFound
}

// stubFetcher returns canned bodies by source name
type stubFetcher struct {
	mu      sync.Mutex
	bodies  map[string]string
	errs    map[string]error
	calls   []string
	block   chan struct{}
	entered chan struct{}
}

func (f *stubFetcher) Fetch(ctx context.Context, source feedsync.FeedSource) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, source.Name)
	f.mu.Unlock()

	if f.entered != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.errs[source.Name]; err != nil {
		return nil, err
	}
	return []byte(f.bodies[source.Name]), nil
}

func (f *stubFetcher) fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
