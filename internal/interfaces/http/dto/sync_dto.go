package dto

import (
	"time"

	"github.com/storefront/backend/internal/domain/feedsync"
)

// SyncStatsResponse holds the counters of the current or last sync run
type SyncStatsResponse struct {
	TotalProducts   int64 `json:"totalProducts"`
	NewProducts     int64 `json:"newProducts"`
	UpdatedProducts int64 `json:"updatedProducts"`
	Errors          int64 `json:"errors"`
}

// SyncStatusResponse is the body of GET /sync/status
type SyncStatusResponse struct {
	IsRunning    bool              `json:"isRunning"`
	LastSyncTime *time.Time        `json:"lastSyncTime"`
	Stats        SyncStatsResponse `json:"stats"`
}

// TriggerSyncRequest holds the optional query parameters of POST /sync/trigger
type TriggerSyncRequest struct {
	TenantID string `form:"tenant_id" binding:"omitempty,uuid"`
}

// NewSyncStatusResponse converts a domain status into its API shape
func NewSyncStatusResponse(status feedsync.SyncStatus) SyncStatusResponse {
	return SyncStatusResponse{
		IsRunning:    status.IsRunning,
		LastSyncTime: status.LastSyncTime,
		Stats: SyncStatsResponse{
			TotalProducts:   status.Stats.TotalProducts,
			NewProducts:     status.Stats.NewProducts,
			UpdatedProducts: status.Stats.UpdatedProducts,
			Errors:          status.Stats.Errors,
		},
	}
}
