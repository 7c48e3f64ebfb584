package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appintegration "github.com/woodcraft/backend/internal/application/integration"
	"github.com/woodcraft/backend/internal/domain/integration"
	"github.com/woodcraft/backend/internal/infrastructure/logger"
	"github.com/woodcraft/backend/internal/interfaces/http/dto"
	"github.com/woodcraft/backend/internal/interfaces/http/middleware"
)

// defaultListStatus is listed when no status filter is given
const defaultListStatus = integration.SyncStatusError

// SyncUseCase is the part of the sync service the HTTP API drives
type SyncUseCase interface {
	Sync(ctx context.Context, tenantID uuid.UUID, entityType integration.EntityType, entityID uuid.UUID) (*appintegration.SyncOutcome, error)
	BulkSync(ctx context.Context, tenantID uuid.UUID, entityType integration.EntityType, ids []uuid.UUID, parallelism int) (*integration.SyncResult, error)
	BulkSyncPending(ctx context.Context, tenantID uuid.UUID, entityType integration.EntityType, limit int) (*integration.SyncResult, error)
	GetStatus(ctx context.Context, tenantID uuid.UUID, entityType integration.EntityType, id uuid.UUID) (*integration.LedgerEntry, error)
	ListByStatus(ctx context.Context, tenantID uuid.UUID, entityType integration.EntityType, status integration.SyncStatus, limit int) ([]integration.LedgerEntry, error)
}

var _ SyncUseCase = (*appintegration.SyncService)(nil)

// SyncHandler handles the commerce sync endpoints
type SyncHandler struct {
	BaseHandler
	service SyncUseCase
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(service SyncUseCase) *SyncHandler {
	return &SyncHandler{service: service}
}

// RegisterRoutes mounts the handler under rg, normally /api/v1/sync
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:type/bulk", h.BulkSync)
	rg.POST("/:type/:id", h.SyncEntity)
	rg.GET("/:type/:id/status", h.GetStatus)
	rg.GET("/:type", h.ListByStatus)
}

// scope resolves the tenant and entity type shared by every endpoint.
// On failure the response is already written.
func (h *SyncHandler) scope(c *gin.Context) (uuid.UUID, integration.EntityType, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not found in token")
		return uuid.Nil, "", false
	}
	entityType, err := integration.ParseEntityType(c.Param("type"))
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, "", false
	}
	return tenantID, entityType, true
}

func (h *SyncHandler) entityID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return uuid.Nil, false
	}
	return id, true
}

// SyncEntity godoc
// @Summary      Sync one entity
// @Description  Push one product or category to the remote shop. A failed run answers with the mapped error status and still carries the run outcome.
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        type path string true "Entity type" Enums(product, category)
// @Param        id path string true "Entity ID" format(uuid)
// @Success      200 {object} dto.Response{data=dto.SyncOutcomeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{data=dto.SyncOutcomeResponse,error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{data=dto.SyncOutcomeResponse,error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{data=dto.SyncOutcomeResponse,error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{data=dto.SyncOutcomeResponse,error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{data=dto.SyncOutcomeResponse,error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sync/{type}/{id} [post]
func (h *SyncHandler) SyncEntity(c *gin.Context) {
	tenantID, entityType, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.entityID(c)
	if !ok {
		return
	}

	ctx := logger.WithEntityID(c.Request.Context(), id.String())
	outcome, err := h.service.Sync(ctx, tenantID, entityType, id)
	if err != nil {
		if outcome == nil {
			h.HandleError(c, err)
			return
		}
		_ = c.Error(err)
		code := integration.ErrorCode(err)
		data := dto.ToSyncOutcomeResponse(outcome)
		c.JSON(dto.GetHTTPStatus(code), dto.Response{
			Success: false,
			Data:    data,
			Error: &dto.ErrorInfo{
				Code:      code,
				Message:   outcome.Message,
				RequestID: middleware.GetRequestID(c),
			},
		})
		return
	}

	h.Success(c, dto.ToSyncOutcomeResponse(outcome))
}

// BulkSync godoc
// @Summary      Sync many entities
// @Description  Synchronize the listed entities, or up to limit entities still pending
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        type path string true "Entity type" Enums(product, category)
// @Param        request body dto.BulkSyncRequest true "Entities to sync"
// @Success      200 {object} dto.Response{data=dto.BulkSyncResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sync/{type}/bulk [post]
func (h *SyncHandler) BulkSync(c *gin.Context) {
	tenantID, entityType, ok := h.scope(c)
	if !ok {
		return
	}

	var req dto.BulkSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if len(req.IDs) == 0 && !req.Pending {
		h.BadRequest(c, "Either ids or pending must be given")
		return
	}

	var (
		result *integration.SyncResult
		err    error
	)
	if req.Pending {
		result, err = h.service.BulkSyncPending(c.Request.Context(), tenantID, entityType, req.Limit)
	} else {
		ids := make([]uuid.UUID, 0, len(req.IDs))
		for _, raw := range req.IDs {
			id, perr := uuid.Parse(raw)
			if perr != nil {
				h.BadRequest(c, "Invalid entity ID format: "+raw)
				return
			}
			ids = append(ids, id)
		}
		result, err = h.service.BulkSync(c.Request.Context(), tenantID, entityType, ids, req.Parallelism)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.ToBulkSyncResponse(result))
}

// GetStatus godoc
// @Summary      Get sync status
// @Description  Read the ledger entry of one entity
// @Tags         sync
// @Produce      json
// @Param        type path string true "Entity type" Enums(product, category)
// @Param        id path string true "Entity ID" format(uuid)
// @Success      200 {object} dto.Response{data=dto.SyncStatusResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sync/{type}/{id}/status [get]
func (h *SyncHandler) GetStatus(c *gin.Context) {
	tenantID, entityType, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.entityID(c)
	if !ok {
		return
	}

	entry, err := h.service.GetStatus(c.Request.Context(), tenantID, entityType, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToSyncStatusResponse(*entry))
}

// ListByStatus godoc
// @Summary      List entities by sync status
// @Description  List ledger entries with the given status, newest first. Defaults to status=error.
// @Tags         sync
// @Produce      json
// @Param        type path string true "Entity type" Enums(product, category)
// @Param        status query string false "Sync status" Enums(pending, synced, error)
// @Param        limit query int false "Maximum entries" minimum(1) maximum(500)
// @Success      200 {object} dto.Response{data=[]dto.SyncStatusResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sync/{type} [get]
func (h *SyncHandler) ListByStatus(c *gin.Context) {
	tenantID, entityType, ok := h.scope(c)
	if !ok {
		return
	}

	var q dto.ListStatusQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	status := defaultListStatus
	if q.Status != "" {
		status = integration.SyncStatus(q.Status)
	}

	entries, err := h.service.ListByStatus(c.Request.Context(), tenantID, entityType, status, q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToSyncStatusResponses(entries))
}
