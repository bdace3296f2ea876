// Package feedsync contains the catalog feed synchronization bounded context.
// It describes how vendor product feeds are pulled, normalized and reconciled
// into the tenant-scoped product catalog.
//
// Key concepts:
//   - FeedSource: a configured remote vendor feed and the format it is written in
//   - Node: the array-safe tree a raw XML feed is normalized into
//   - CanonicalProduct: a source-agnostic product ready for reconciliation
//   - MapResult: the tagged outcome of mapping one feed item (product, skip or error)
//   - SyncStatus: the read-only snapshot of the current or last sync run
//
// Design Pattern: Ports & Adapters
//   - Ports (Fetcher, Parser, ProductMapper, MapperResolver) are declared here
//   - Adapters live in infrastructure/feed and infrastructure/feed/mapper
package feedsync
