// Package bootstrap assembles the process-wide components shared by the
// API server and the one-shot sync command.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	feedsyncapp "github.com/storefront/backend/internal/application/feedsync"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/feed"
	"github.com/storefront/backend/internal/infrastructure/feed/mapper"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// MeterName scopes the catalog sync instruments
const MeterName = "storefront-backend/feedsync"

// Telemetry holds the OpenTelemetry providers of the process
type Telemetry struct {
	Tracer *telemetry.TracerProvider
	Meter  *telemetry.MeterProvider
	Logs   *telemetry.LoggerProvider
}

// SetupTelemetry creates the tracer, meter and log providers. Disabled
// signals get no-op providers.
func SetupTelemetry(ctx context.Context, cfg config.TelemetryConfig, log *zap.Logger) (*Telemetry, error) {
	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		SamplingRatio:     cfg.SamplingRatio,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("tracer provider: %w", err)
	}

	meter, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.MetricsEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ExportInterval:    cfg.MetricsInterval,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, log)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("meter provider: %w", err), tracer.Shutdown(ctx))
	}

	logs, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.LogsEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, log)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("logger provider: %w", err), meter.Shutdown(ctx), tracer.Shutdown(ctx))
	}

	return &Telemetry{Tracer: tracer, Meter: meter, Logs: logs}, nil
}

// Shutdown flushes and stops every provider
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(t.Logs.Shutdown(ctx), t.Meter.Shutdown(ctx), t.Tracer.Shutdown(ctx))
}

// NewLogger builds the application logger. When logs is enabled every entry
// is also exported through the OpenTelemetry bridge.
func NewLogger(cfg config.LogConfig, logs *telemetry.LoggerProvider) (*zap.Logger, error) {
	logCfg := &logger.Config{
		Level:      cfg.Level,
		Format:     cfg.Format,
		Output:     cfg.Output,
		TimeFormat: logger.DefaultConfig().TimeFormat,
	}
	if logs == nil || !logs.IsEnabled() {
		return logger.New(logCfg)
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	return logger.New(logCfg, logs.NewZapCore(level))
}

// OpenDatabase connects to PostgreSQL with the zap-backed GORM logger and,
// when enabled, query tracing
func OpenDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	var plugins []gorm.Plugin
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		tracing := telemetry.DefaultDBTracingConfig()
		tracing.Enabled = true
		tracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
		tracing.DBName = cfg.Database.DBName
		plugins = append(plugins, telemetry.NewDBTracingPlugin(tracing, log))
	}

	return persistence.NewDatabase(&cfg.Database, gormLog, plugins...)
}

// NewFeedSyncService wires the sync engine against the given database
func NewFeedSyncService(cfg config.FeedSyncConfig, db *gorm.DB, meter metric.Meter, log *zap.Logger) (*feedsyncapp.Service, error) {
	sources, err := cfg.FeedSources()
	if err != nil {
		return nil, err
	}

	metrics, err := telemetry.NewSyncMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("sync metrics: %w", err)
	}

	syncLog := logger.Named(log, "feedsync")
	fetcher := feed.NewHTTPFetcher(feed.FetcherConfig{
		Timeout:      cfg.FetchTimeout,
		UserAgent:    cfg.UserAgent,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}, nil, syncLog)
	reconciler := feedsyncapp.NewReconciler(persistence.NewGormProductRepository(db), syncLog)

	return feedsyncapp.NewService(
		sources,
		fetcher,
		feed.NewXMLParser(),
		mapper.NewRegistry(),
		reconciler,
		persistence.NewGormTenantRepository(db),
		syncLog,
		feedsyncapp.WithMetrics(metrics),
	), nil
}

// NewFeedSyncScheduler builds the recurring trigger for a sync service
func NewFeedSyncScheduler(cfg config.FeedSyncConfig, runner scheduler.SyncRunner, log *zap.Logger) (*scheduler.FeedSyncScheduler, error) {
	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return scheduler.NewFeedSyncScheduler(scheduler.FeedSyncSchedulerConfig{
		Enabled:      cfg.Enabled,
		CronSchedule: cfg.CronSchedule,
		Location:     location,
		InitialDelay: cfg.InitialDelay,
		BusyWindow: scheduler.BusyWindow{
			StartHour: cfg.BusyStartHour,
			EndHour:   cfg.BusyEndHour,
			Delay:     cfg.BusyDelay,
		},
	}, runner, logger.Named(log, "scheduler"))
}
