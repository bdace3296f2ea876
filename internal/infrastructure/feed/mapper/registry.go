// Package mapper holds the per-format strategies that turn parsed feed
// items into canonical products.
package mapper

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/storefront/backend/internal/domain/feedsync"
	"github.com/storefront/backend/internal/domain/shared"
)

// Option configures the built-in mappers
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithNow overrides the clock used to stamp LastUpdated
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Registry resolves a ProductMapper by declared feed format
type Registry struct {
	mu      sync.RWMutex
	mappers map[feedsync.Format]feedsync.ProductMapper
}

// NewRegistry creates a registry with the ticimax and rss mappers registered
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{mappers: make(map[feedsync.Format]feedsync.ProductMapper)}
	_ = r.Register(NewTicimaxMapper(opts...))
	_ = r.Register(NewGenericMapper(opts...))
	return r
}

// Register adds a mapper for its format
func (r *Registry) Register(m feedsync.ProductMapper) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	format := m.Format()
	if _, exists := r.mappers[format]; exists {
		return fmt.Errorf("%w: mapper for format '%s' already registered", shared.ErrAlreadyExists, format)
	}
	r.mappers[format] = m
	return nil
}

// MapperFor returns the mapper registered for a format
func (r *Registry) MapperFor(format feedsync.Format) (feedsync.ProductMapper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.mappers[format]
	if !exists {
		return nil, fmt.Errorf("%w: %q", feedsync.ErrUnknownFormat, format)
	}
	return m, nil
}

// Formats returns the registered format names, sorted
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.mappers))
	for f := range r.mappers {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}
