package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// SyncMetrics mirrors the catalog sync counters as OpenTelemetry instruments
type SyncMetrics struct {
	products *Counter
	errors   *Counter
	runs     *Counter
	duration *Histogram
}

// NewSyncMetrics registers the sync instruments on meter
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		m   SyncMetrics
		err error
	)
	m.products, err = NewCounter(meter,
		"storefront_sync_products_total",
		"Products reconciled by catalog sync, by outcome",
		"{products}",
	)
	if err != nil {
		return nil, err
	}
	m.errors, err = NewCounter(meter,
		"storefront_sync_errors_total",
		"Catalog sync failures, by pipeline stage",
		"{errors}",
	)
	if err != nil {
		return nil, err
	}
	m.runs, err = NewCounter(meter,
		"storefront_sync_runs_total",
		"Catalog sync runs, by trigger and result",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}
	m.duration, err = NewHistogram(meter, HistogramOpts{
		Name:        "storefront_sync_run_duration_seconds",
		Description: "Wall time of a catalog sync run",
		Unit:        "s",
		Boundaries:  RunDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ProductReconciled counts one product written or confirmed unchanged
func (m *SyncMetrics) ProductReconciled(ctx context.Context, source, outcome string) {
	m.products.Inc(ctx, AttrSource.String(source), AttrOutcome.String(outcome))
}

// SyncError counts one failure at a pipeline stage (fetch, parse, map, persist, run)
func (m *SyncMetrics) SyncError(ctx context.Context, source, stage string) {
	m.errors.Inc(ctx, AttrSource.String(source), AttrStage.String(stage))
}

// RunFinished records a completed or aborted run
func (m *SyncMetrics) RunFinished(ctx context.Context, trigger string, elapsed time.Duration, aborted bool) {
	result := "completed"
	if aborted {
		result = "aborted"
	}
	m.runs.Inc(ctx, AttrTrigger.String(trigger), AttrResult.String(result))
	m.duration.RecordDuration(ctx, elapsed, AttrTrigger.String(trigger), AttrResult.String(result))
}
