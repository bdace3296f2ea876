package feedsync

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Format identifies the shape of a vendor feed and selects its mapper strategy
type Format string

const (
	// FormatTicimax is the variation-bearing Ticimax product export
	FormatTicimax Format = "ticimax"
	// FormatRSS is the generic RSS-style product listing
	FormatRSS Format = "rss"
)

// IsValid returns true if the format is known
func (f Format) IsValid() bool {
	switch f {
	case FormatTicimax, FormatRSS:
		return true
	default:
		return false
	}
}

// String returns the string representation of Format
func (f Format) String() string {
	return string(f)
}

// TenantScope restricts a feed source to all tenants or to one tenant
type TenantScope string

// TenantScopeAll applies a source to every active tenant
const TenantScopeAll TenantScope = "all"

// ParseTenantScope parses "all" (or empty) and tenant UUIDs
func ParseTenantScope(raw string) (TenantScope, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, string(TenantScopeAll)) {
		return TenantScopeAll, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: tenant scope %q is neither \"all\" nor a tenant ID", ErrInvalidSource, raw)
	}
	return TenantScope(id.String()), nil
}

// IsAll returns true if the scope covers every tenant
func (s TenantScope) IsAll() bool {
	return s == "" || s == TenantScopeAll
}

// Includes reports whether the given tenant is covered by the scope
func (s TenantScope) Includes(tenantID uuid.UUID) bool {
	if s.IsAll() {
		return true
	}
	id, err := uuid.Parse(string(s))
	if err != nil {
		return false
	}
	return id == tenantID
}

// FeedSource is a configured remote vendor feed
type FeedSource struct {
	Name        string
	URL         string
	TenantScope TenantScope
	Format      Format
	Priority    int
}

// Validate checks the source is usable by the sync engine
func (s FeedSource) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSource)
	}
	u, err := url.Parse(s.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: source %q has invalid url %q", ErrInvalidSource, s.Name, s.URL)
	}
	if !s.Format.IsValid() {
		return fmt.Errorf("%w: source %q has unknown format %q", ErrUnknownFormat, s.Name, s.Format)
	}
	if !s.TenantScope.IsAll() {
		if _, err := uuid.Parse(string(s.TenantScope)); err != nil {
			return fmt.Errorf("%w: source %q has invalid tenant scope %q", ErrInvalidSource, s.Name, s.TenantScope)
		}
	}
	return nil
}

// SortSources returns a copy of sources ordered by priority, then name.
// Lower priority values run first.
func SortSources(sources []FeedSource) []FeedSource {
	sorted := make([]FeedSource, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// SourcesForTenant filters sources down to those whose scope includes the tenant,
// preserving order
func SourcesForTenant(sources []FeedSource, tenantID uuid.UUID) []FeedSource {
	result := make([]FeedSource, 0, len(sources))
	for _, s := range sources {
		if s.TenantScope.Includes(tenantID) {
			result = append(result, s)
		}
	}
	return result
}
