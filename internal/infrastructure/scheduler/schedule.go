package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// FireSchedule computes recurring fire times from a standard 5-field cron
// expression, evaluated in a fixed location
type FireSchedule struct {
	expr     string
	schedule cron.Schedule
	location *time.Location
}

// ParseFireSchedule parses expr ("0 */4 * * *") for the given location.
// A nil location means time.Local.
func ParseFireSchedule(expr string, location *time.Location) (*FireSchedule, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSchedule, expr, err)
	}
	if location == nil {
		location = time.Local
	}
	return &FireSchedule{expr: expr, schedule: schedule, location: location}, nil
}

// Next returns the first fire time strictly after t, in the schedule's location
func (s *FireSchedule) Next(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.location))
}

// String returns the cron expression
func (s *FireSchedule) String() string {
	return s.expr
}

// BusyWindow is a daily range of wall-clock hours during which scheduled
// runs are postponed. Both hours are inclusive; StartHour > EndHour wraps
// past midnight.
type BusyWindow struct {
	StartHour int
	EndHour   int
	Delay     time.Duration
}

// DefaultBusyWindow covers business hours, 09:00 to 18:59
func DefaultBusyWindow() BusyWindow {
	return BusyWindow{StartHour: 9, EndHour: 18, Delay: 30 * time.Minute}
}

// Validate checks hour ranges and the delay
func (w BusyWindow) Validate() error {
	if w.StartHour < 0 || w.StartHour > 23 || w.EndHour < 0 || w.EndHour > 23 {
		return fmt.Errorf("%w: busy hours must be between 0 and 23, got %d-%d", ErrInvalidConfig, w.StartHour, w.EndHour)
	}
	if w.Delay < 0 {
		return fmt.Errorf("%w: busy delay must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Contains reports whether t's hour falls inside the window
func (w BusyWindow) Contains(t time.Time) bool {
	h := t.Hour()
	if w.StartHour <= w.EndHour {
		return h >= w.StartHour && h <= w.EndHour
	}
	return h >= w.StartHour || h <= w.EndHour
}

// Defer returns when a run fired at t should execute, and whether it was
// postponed. The deferred time is not re-checked against the window.
func (w BusyWindow) Defer(t time.Time) (time.Time, bool) {
	if w.Delay == 0 || !w.Contains(t) {
		return t, false
	}
	return t.Add(w.Delay), true
}

// Plan is the next scheduled run
type Plan struct {
	FireAt   time.Time
	RunAt    time.Time
	Deferred bool
}
