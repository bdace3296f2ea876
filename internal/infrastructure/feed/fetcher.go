// Package feed retrieves vendor product feeds over HTTP and normalizes their
// XML into feedsync.Node trees.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/storefront/backend/internal/domain/feedsync"
	"go.uber.org/zap"
)

// FetcherConfig holds HTTP settings for feed retrieval
type FetcherConfig struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

// DefaultFetcherConfig returns the default fetcher configuration
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:      30 * time.Second,
		UserAgent:    "Storefront-Catalog-Sync/1.0",
		MaxBodyBytes: 50 << 20,
	}
}

// HTTPFetcher implements feedsync.Fetcher with a single GET per call.
// There are no retries; the next scheduled run is the retry.
type HTTPFetcher struct {
	client *http.Client
	config FetcherConfig
	logger *zap.Logger
}

// NewHTTPFetcher creates a fetcher. A nil client uses a dedicated client
// bounded by the configured timeout.
func NewHTTPFetcher(cfg FetcherConfig, client *http.Client, logger *zap.Logger) *HTTPFetcher {
	defaults := DefaultFetcherConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPFetcher{
		client: client,
		config: cfg,
		logger: logger,
	}
}

// Fetch downloads the raw feed body of a source
func (f *HTTPFetcher) Fetch(ctx context.Context, source feedsync.FeedSource) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	fail := func(status int, err error) error {
		return &feedsync.FetchError{Source: source.Name, URL: source.URL, StatusCode: status, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return nil, fail(0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "application/xml, text/xml;q=0.9, */*;q=0.1")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fail(resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodyBytes+1))
	if err != nil {
		return nil, fail(0, fmt.Errorf("failed to read response: %w", err))
	}
	if int64(len(body)) > f.config.MaxBodyBytes {
		return nil, fail(0, fmt.Errorf("%w: limit %d bytes", feedsync.ErrResponseTooLarge, f.config.MaxBodyBytes))
	}

	f.logger.Debug("Feed downloaded",
		zap.String("source", source.Name),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return body, nil
}
