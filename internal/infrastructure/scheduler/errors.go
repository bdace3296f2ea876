package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrInvalidSchedule is returned for a cron expression that cannot be parsed
	ErrInvalidSchedule = errors.New("invalid cron schedule")
)
