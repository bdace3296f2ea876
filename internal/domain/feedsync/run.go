package feedsync

import (
	"time"

	"github.com/google/uuid"
)

// Trigger describes what started a sync run
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
	TriggerStartup   Trigger = "startup"
)

// RunRequest describes one sync run.
// A nil TenantID fans out over every active tenant.
type RunRequest struct {
	TenantID *uuid.UUID
	Trigger  Trigger
}

// Stats holds the counters of the current or last run
type Stats struct {
	TotalProducts   int64 `json:"totalProducts"`
	NewProducts     int64 `json:"newProducts"`
	UpdatedProducts int64 `json:"updatedProducts"`
	Errors          int64 `json:"errors"`
}

// SyncStatus is a point-in-time snapshot of the sync engine
type SyncStatus struct {
	IsRunning    bool       `json:"isRunning"`
	LastSyncTime *time.Time `json:"lastSyncTime"`
	Stats        Stats      `json:"stats"`
}
