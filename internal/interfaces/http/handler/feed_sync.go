package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/feedsync"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

// SyncController is the control surface of the catalog sync engine
type SyncController interface {
	TriggerManualSync(ctx context.Context) error
	TriggerManualSyncForTenant(ctx context.Context, tenantID uuid.UUID) error
	GetSyncStatus() feedsync.SyncStatus
}

// FeedSyncHandler exposes manual sync triggering and sync status
type FeedSyncHandler struct {
	BaseHandler
	sync   SyncController
	logger *zap.Logger
}

// NewFeedSyncHandler creates a new FeedSyncHandler. A nil controller makes
// every endpoint answer 503.
func NewFeedSyncHandler(sync SyncController, logger *zap.Logger) *FeedSyncHandler {
	return &FeedSyncHandler{sync: sync, logger: logger}
}

// TriggerSync godoc
// @ID           triggerFeedSync
// @Summary      Run a catalog sync now
// @Description  Runs a synchronous sync for all active tenants, or one tenant with tenant_id.
// @Description  Counts are read from the status endpoint.
// @Tags         sync
// @Produce      json
// @Param        tenant_id query string false "Tenant ID" format(uuid)
// @Success      200 {object} MessageResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /sync/trigger [post]
func (h *FeedSyncHandler) TriggerSync(c *gin.Context) {
	if h.sync == nil {
		h.ServiceUnavailable(c, "Catalog sync service not available")
		return
	}

	var req dto.TriggerSyncRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "tenant_id must be a UUID")
		return
	}

	var err error
	if req.TenantID != "" {
		err = h.sync.TriggerManualSyncForTenant(c.Request.Context(), uuid.MustParse(req.TenantID))
	} else {
		err = h.sync.TriggerManualSync(c.Request.Context())
	}

	switch {
	case err == nil:
		h.Message(c, "Manual sync triggered successfully")
	case errors.Is(err, feedsync.ErrSyncAlreadyRunning):
		h.ErrorWithCode(c, dto.ErrCodeSyncInProgress, "Sync already in progress")
	case errors.Is(err, shared.ErrNotFound):
		h.NotFound(c, "Tenant not found or inactive")
	case errors.Is(err, feedsync.ErrShuttingDown):
		h.ServiceUnavailable(c, "Catalog sync service is shutting down")
	default:
		h.logger.Error("Manual sync failed", zap.String("request_id", getRequestID(c)), zap.Error(err))
		h.ErrorWithCode(c, dto.ErrCodeSyncFailed, "Error triggering manual sync")
	}
}

// GetStatus godoc
// @ID           getFeedSyncStatus
// @Summary      Get catalog sync status
// @Tags         sync
// @Produce      json
// @Success      200 {object} APIResponse[dto.SyncStatusResponse]
// @Failure      503 {object} ErrorResponse
// @Router       /sync/status [get]
func (h *FeedSyncHandler) GetStatus(c *gin.Context) {
	if h.sync == nil {
		h.ServiceUnavailable(c, "Catalog sync service not available")
		return
	}
	h.Success(c, dto.NewSyncStatusResponse(h.sync.GetSyncStatus()))
}

// RegisterRoutes registers sync routes under the API group
func (h *FeedSyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewDomainGroup("sync", "/sync").
		POST("/trigger", h.TriggerSync).
		GET("/status", h.GetStatus).
		RegisterRoutes(rg)
}
