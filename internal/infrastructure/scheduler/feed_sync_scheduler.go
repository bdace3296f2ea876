package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/feedsync"
)

// SyncRunner performs sync runs and reports their status
type SyncRunner interface {
	Run(ctx context.Context, req feedsync.RunRequest) error
	Status() feedsync.SyncStatus
}

// FeedSyncSchedulerConfig holds configuration for the feed sync scheduler
type FeedSyncSchedulerConfig struct {
	// Enabled turns the recurring timer on; manual triggers work either way
	Enabled bool
	// CronSchedule is a standard 5-field cron expression
	CronSchedule string
	// Location is the timezone for the cron schedule and the busy window
	Location *time.Location
	// InitialDelay is the wait before the startup run; 0 disables it
	InitialDelay time.Duration
	// BusyWindow postpones scheduled runs during peak hours
	BusyWindow BusyWindow
}

// DefaultFeedSyncSchedulerConfig returns default configuration
func DefaultFeedSyncSchedulerConfig() FeedSyncSchedulerConfig {
	return FeedSyncSchedulerConfig{
		Enabled:      true,
		CronSchedule: "0 */4 * * *",
		Location:     time.Local,
		InitialDelay: 2 * time.Minute,
		BusyWindow:   DefaultBusyWindow(),
	}
}

// Validate validates the configuration
func (c *FeedSyncSchedulerConfig) Validate() error {
	if _, err := ParseFireSchedule(c.CronSchedule, c.Location); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.InitialDelay < 0 {
		return fmt.Errorf("%w: initial delay must not be negative", ErrInvalidConfig)
	}
	return c.BusyWindow.Validate()
}

// Option configures a FeedSyncScheduler
type Option func(*FeedSyncScheduler)

// WithClock replaces the wall clock
func WithClock(clock Clock) Option {
	return func(s *FeedSyncScheduler) {
		s.clock = clock
	}
}

// FeedSyncScheduler drives recurring, startup and manual catalog sync runs
type FeedSyncScheduler struct {
	config   FeedSyncSchedulerConfig
	schedule *FireSchedule
	runner   SyncRunner
	clock    Clock
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup // timer loop, startup run and manual runs
	mu        sync.Mutex
	isRunning bool
	stopping  bool
}

// NewFeedSyncScheduler creates a new feed sync scheduler
func NewFeedSyncScheduler(config FeedSyncSchedulerConfig, runner SyncRunner, logger *zap.Logger, opts ...Option) (*FeedSyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	schedule, err := ParseFireSchedule(config.CronSchedule, config.Location)
	if err != nil {
		return nil, err
	}

	s := &FeedSyncScheduler{
		config:   config,
		schedule: schedule,
		runner:   runner,
		clock:    SystemClock{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start starts the timer loop and, if configured, the startup run
func (s *FeedSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.stopping = false
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Feed sync scheduler disabled")
		return nil
	}
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	if s.config.InitialDelay > 0 {
		s.wg.Add(1)
		go s.initialRun(ctx)
	}
	s.wg.Add(1)
	go s.runLoop(ctx)
	s.mu.Unlock()

	s.logger.Info("Feed sync scheduler started",
		zap.String("schedule", s.schedule.String()),
		zap.String("timezone", s.schedule.location.String()),
		zap.Duration("initial_delay", s.config.InitialDelay),
		zap.Int("busy_start_hour", s.config.BusyWindow.StartHour),
		zap.Int("busy_end_hour", s.config.BusyWindow.EndHour),
	)
	return nil
}

// Stop cancels the timer loop and waits, bounded by ctx, for every run in
// progress including manual ones. Manual triggers arriving after Stop fail
// with feedsync.ErrShuttingDown until the next Start.
func (s *FeedSyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopping = true
	wasRunning := s.isRunning
	s.isRunning = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if wasRunning {
			s.logger.Info("Feed sync scheduler stopped gracefully")
		}
		return nil
	case <-ctx.Done():
		s.logger.Warn("Feed sync scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the timer loop is active
func (s *FeedSyncScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// PlanNext computes the next scheduled run after now
func (s *FeedSyncScheduler) PlanNext(now time.Time) Plan {
	fireAt := s.schedule.Next(now)
	runAt, deferred := s.config.BusyWindow.Defer(fireAt)
	return Plan{FireAt: fireAt, RunAt: runAt, Deferred: deferred}
}

// TriggerManualSync runs a sync for every active tenant right away.
// It blocks until the run finishes and never defers for busy hours.
func (s *FeedSyncScheduler) TriggerManualSync(ctx context.Context) error {
	return s.trigger(ctx, feedsync.RunRequest{Trigger: feedsync.TriggerManual})
}

// TriggerManualSyncForTenant runs a sync for one tenant right away
func (s *FeedSyncScheduler) TriggerManualSyncForTenant(ctx context.Context, tenantID uuid.UUID) error {
	return s.trigger(ctx, feedsync.RunRequest{TenantID: &tenantID, Trigger: feedsync.TriggerManual})
}

// GetSyncStatus returns the status of the current or last run
func (s *FeedSyncScheduler) GetSyncStatus() feedsync.SyncStatus {
	return s.runner.Status()
}

// trigger detaches the run from the caller's cancellation so that a
// disconnected client does not interrupt it. The run is tracked so Stop can
// wait for it.
func (s *FeedSyncScheduler) trigger(ctx context.Context, req feedsync.RunRequest) error {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return feedsync.ErrShuttingDown
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	fields := []zap.Field{zap.String("trigger", string(req.Trigger))}
	if req.TenantID != nil {
		fields = append(fields, zap.String("tenant_id", req.TenantID.String()))
	}
	s.logger.Info("Manual sync triggered", fields...)
	return s.runner.Run(context.WithoutCancel(ctx), req)
}

func (s *FeedSyncScheduler) initialRun(ctx context.Context) {
	defer s.wg.Done()

	select {
	case <-ctx.Done():
		return
	case <-s.clock.After(s.config.InitialDelay):
	}
	s.logger.Info("Initial sync starting")
	s.execute(ctx, feedsync.TriggerStartup)
}

// runLoop waits for each planned run time and executes it. The next plan is
// computed after the run returns, so fires missed during a long run are
// skipped rather than queued.
func (s *FeedSyncScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		now := s.clock.Now()
		plan := s.PlanNext(now)
		if plan.Deferred {
			s.logger.Info("Scheduled sync falls in busy hours, deferring",
				zap.Time("fire_at", plan.FireAt),
				zap.Time("run_at", plan.RunAt),
			)
		} else {
			s.logger.Debug("Next scheduled sync", zap.Time("run_at", plan.RunAt))
		}

		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(plan.RunAt.Sub(now)):
		}
		s.execute(ctx, feedsync.TriggerScheduled)
	}
}

func (s *FeedSyncScheduler) execute(ctx context.Context, trigger feedsync.Trigger) {
	err := s.runner.Run(ctx, feedsync.RunRequest{Trigger: trigger})
	switch {
	case err == nil:
	case errors.Is(err, feedsync.ErrSyncAlreadyRunning):
		s.logger.Info("Sync skipped, another run in progress", zap.String("trigger", string(trigger)))
	default:
		s.logger.Error("Sync run failed", zap.String("trigger", string(trigger)), zap.Error(err))
	}
}
