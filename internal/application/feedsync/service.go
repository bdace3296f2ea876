// Package feedsync runs the catalog synchronization pipeline: for every
// (tenant, feed source) pair it fetches, parses, maps and reconciles the
// vendor feed into the tenant's catalog.
package feedsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/feedsync"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const spanService = "feed_sync"

// Metrics receives pipeline events. telemetry.SyncMetrics implements it.
type Metrics interface {
	ProductReconciled(ctx context.Context, source, outcome string)
	SyncError(ctx context.Context, source, stage string)
	RunFinished(ctx context.Context, trigger string, elapsed time.Duration, aborted bool)
}

type noopMetrics struct{}

func (noopMetrics) ProductReconciled(context.Context, string, string)       {}
func (noopMetrics) SyncError(context.Context, string, string)               {}
func (noopMetrics) RunFinished(context.Context, string, time.Duration, bool) {}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithClock overrides the clock used for lastSyncTime and run duration
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m Metrics) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithRunState shares an existing run state
func WithRunState(state *RunState) ServiceOption {
	return func(s *Service) {
		if state != nil {
			s.state = state
		}
	}
}

// Service owns the run guard and drives one sync run at a time
type Service struct {
	sources    []feedsync.FeedSource
	fetcher    feedsync.Fetcher
	parser     feedsync.Parser
	mappers    feedsync.MapperResolver
	reconciler *Reconciler
	tenants    identity.TenantDirectory
	state      *RunState
	metrics    Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a Service. Sources are processed by priority, then name.
func NewService(
	sources []feedsync.FeedSource,
	fetcher feedsync.Fetcher,
	parser feedsync.Parser,
	mappers feedsync.MapperResolver,
	reconciler *Reconciler,
	tenants identity.TenantDirectory,
	logger *zap.Logger,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		sources:    feedsync.SortSources(sources),
		fetcher:    fetcher,
		parser:     parser,
		mappers:    mappers,
		reconciler: reconciler,
		tenants:    tenants,
		state:      NewRunState(),
		metrics:    noopMetrics{},
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sources returns the configured sources in processing order
func (s *Service) Sources() []feedsync.FeedSource {
	return append([]feedsync.FeedSource(nil), s.sources...)
}

// Status returns a snapshot of the current or last run
func (s *Service) Status() feedsync.SyncStatus {
	return s.state.Snapshot()
}

// Run performs one synchronous sync run.
//
// It returns feedsync.ErrSyncAlreadyRunning without side effects when
// another run holds the guard, and a *feedsync.FatalError when the run
// could not proceed. Failures of single pairs or items are counted in the
// status and do not fail the run.
func (s *Service) Run(ctx context.Context, req feedsync.RunRequest) error {
	if req.Trigger == "" {
		req.Trigger = feedsync.TriggerManual
	}
	if !s.state.TryStart() {
		s.logger.Warn("Sync already in progress, skipping", zap.String("trigger", string(req.Trigger)))
		return feedsync.ErrSyncAlreadyRunning
	}
	defer s.state.Release()
	s.state.ResetCounters()

	runID := uuid.New().String()
	ctx, log := logger.WithRunID(ctx, s.logger, runID)
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "run",
		telemetry.WithAttribute(telemetry.SpanAttrRunID, runID),
		telemetry.WithAttribute(telemetry.SpanAttrTrigger, string(req.Trigger)),
	)
	defer span.End()

	start := s.now()
	log.Info("Catalog sync started",
		zap.String("trigger", string(req.Trigger)),
		zap.Int("sources", len(s.sources)),
	)

	tenants, err := s.resolveTenants(ctx, req)
	if err != nil {
		return s.abort(ctx, span, log, req, start, &feedsync.FatalError{Op: "resolve tenants", Err: err})
	}

	var failures error
	for _, tenant := range tenants {
		for _, source := range feedsync.SourcesForTenant(s.sources, tenant.ID) {
			if err := ctx.Err(); err != nil {
				return s.abort(ctx, span, log, req, start, &feedsync.FatalError{Op: "run interrupted", Err: err})
			}
			failures = multierr.Append(failures, s.syncPair(ctx, tenant, source))
		}
	}

	s.state.MarkCompleted(s.now())
	elapsed := s.now().Sub(start)
	s.metrics.RunFinished(ctx, string(req.Trigger), elapsed, false)

	stats := s.state.Snapshot().Stats
	telemetry.SetAttributes(span,
		"total_products", stats.TotalProducts,
		"new_products", stats.NewProducts,
		"updated_products", stats.UpdatedProducts,
		"errors", stats.Errors,
	)
	fields := []zap.Field{
		zap.Int("tenants", len(tenants)),
		zap.Int64("total_products", stats.TotalProducts),
		zap.Int64("new_products", stats.NewProducts),
		zap.Int64("updated_products", stats.UpdatedProducts),
		zap.Int64("errors", stats.Errors),
		zap.Duration("elapsed", elapsed),
	}
	if failures != nil {
		log.Warn("Catalog sync completed with failed sources",
			append(fields, zap.Int("failed_sources", len(multierr.Errors(failures))), zap.Error(failures))...)
		return nil
	}
	log.Info("Catalog sync completed", fields...)
	return nil
}

func (s *Service) abort(ctx context.Context, span trace.Span, log *zap.Logger, req feedsync.RunRequest, start time.Time, fatal *feedsync.FatalError) error {
	s.state.RecordError()
	s.metrics.SyncError(ctx, "", "run")
	s.metrics.RunFinished(ctx, string(req.Trigger), s.now().Sub(start), true)
	telemetry.RecordError(span, fatal)
	log.Error("Catalog sync aborted", zap.Error(fatal))
	return fatal
}

// resolveTenants returns the requested tenant, or every active tenant
func (s *Service) resolveTenants(ctx context.Context, req feedsync.RunRequest) ([]identity.Tenant, error) {
	if req.TenantID == nil {
		return s.tenants.ListActiveTenants(ctx)
	}
	tenant, err := s.tenants.GetActiveTenant(ctx, *req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("tenant %s: %w", req.TenantID, err)
	}
	return []identity.Tenant{*tenant}, nil
}

// pairCounts tallies one (tenant, source) pass for its summary log line
type pairCounts struct {
	items, created, updated, unchanged, skipped, mapFailed, persistFailed int
}

// syncPair runs fetch, parse, map and reconcile for one source and tenant.
// A returned error means the pair was abandoned; it has already been counted.
func (s *Service) syncPair(ctx context.Context, tenant identity.Tenant, source feedsync.FeedSource) error {
	ctx, log := logger.WithTenantID(ctx, logger.FromContext(ctx), tenant.ID.String())
	log = log.With(zap.String("source", source.Name))
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "source",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenant.ID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrSource, source.Name),
		telemetry.WithAttribute(telemetry.SpanAttrFormat, source.Format.String()),
	)
	defer span.End()

	log.Info("Syncing source", zap.String("tenant", tenant.Name), zap.String("format", source.Format.String()))

	fail := func(stage string, err error) error {
		s.state.RecordError()
		s.metrics.SyncError(ctx, source.Name, stage)
		telemetry.RecordError(span, err)
		log.Error("Source sync failed", zap.String("stage", stage), zap.Error(err))
		return err
	}

	mapper, err := s.mappers.MapperFor(source.Format)
	if err != nil {
		return fail("map", &feedsync.FeedError{Source: source.Name, Err: err})
	}
	body, err := s.fetcher.Fetch(ctx, source)
	if err != nil {
		return fail("fetch", err)
	}
	doc, err := s.parser.Parse(source, body)
	if err != nil {
		return fail("parse", err)
	}

	var counts pairCounts
	items := mapper.Items(doc)
	counts.items = len(items)
	telemetry.SetAttributes(span, telemetry.SpanAttrItems, len(items))

	for i, item := range items {
		result := mapItem(mapper, item, source)
		switch result.Kind {
		case feedsync.MapSkip:
			counts.skipped++
			log.Debug("Feed item skipped", zap.Int("index", i), zap.String("reason", result.Reason))
		case feedsync.MapError:
			counts.mapFailed++
			mapErr := &feedsync.MappingError{Source: source.Name, Index: i, Err: result.Err}
			log.Warn("Feed item dropped", zap.Error(mapErr))
		case feedsync.MapProduct:
			outcome, err := s.reconcile(ctx, tenant.ID, result.Product)
			if err != nil {
				counts.persistFailed++
				s.state.RecordError()
				s.metrics.SyncError(ctx, source.Name, "persist")
				log.Warn("Product not saved", zap.String("external_id", result.Product.ExternalID), zap.Error(err))
				continue
			}
			s.state.RecordOutcome(outcome)
			s.metrics.ProductReconciled(ctx, source.Name, outcome.String())
			switch outcome {
			case OutcomeCreated:
				counts.created++
			case OutcomeUpdated:
				counts.updated++
			default:
				counts.unchanged++
			}
		}
	}

	log.Info("Source synced",
		zap.Int("items", counts.items),
		zap.Int("created", counts.created),
		zap.Int("updated", counts.updated),
		zap.Int("unchanged", counts.unchanged),
		zap.Int("skipped", counts.skipped),
		zap.Int("map_failed", counts.mapFailed),
		zap.Int("persist_failed", counts.persistFailed),
	)
	return nil
}

// mapItem contains panics from a mapper to the item that caused them
func mapItem(mapper feedsync.ProductMapper, item *feedsync.Node, source feedsync.FeedSource) (result feedsync.MapResult) {
	defer func() {
		if r := recover(); r != nil {
			result = feedsync.Failed(fmt.Errorf("panic while mapping: %v", r))
		}
	}()
	result = mapper.Map(item, source)
	if result.Kind == feedsync.MapProduct && result.Product == nil {
		return feedsync.Failed(errors.New("mapper returned no product"))
	}
	return result
}

// reconcile contains panics from persistence to the product that caused them
func (s *Service) reconcile(ctx context.Context, tenantID uuid.UUID, p *feedsync.CanonicalProduct) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &feedsync.PersistenceError{Op: "reconcile", TenantID: tenantID, ExternalID: p.ExternalID, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return s.reconciler.Reconcile(ctx, tenantID, p)
}
