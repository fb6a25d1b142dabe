package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fulfilhub/backend/internal/application/bolsync"
	"github.com/fulfilhub/backend/internal/domain/integration"
	"github.com/fulfilhub/backend/internal/domain/shared"
	"github.com/fulfilhub/backend/internal/interfaces/http/dto"
	"github.com/fulfilhub/backend/internal/interfaces/http/middleware"
)

// BolSyncService is the application-layer surface the handler depends on
type BolSyncService interface {
	Reconcile(ctx context.Context, installationID int64) (*bolsync.Result, error)
	ShipOrder(ctx context.Context, installationID int64, req integration.ShipmentRequest) (json.RawMessage, error)
	GetReturns(ctx context.Context, installationID int64, page int) (json.RawMessage, error)
	HandleReturn(ctx context.Context, installationID int64, returnID string, req integration.ReturnHandlingRequest) (json.RawMessage, error)
}

// BolHandler exposes the bol.com marketplace operations over HTTP. Every
// route takes an installationId query parameter and rejects callers that
// are not assigned to that installation.
type BolHandler struct {
	BaseHandler
	service BolSyncService
	logger  *zap.Logger
}

// NewBolHandler creates a new bol handler
func NewBolHandler(service BolSyncService, logger *zap.Logger) *BolHandler {
	return &BolHandler{
		service: service,
		logger:  logger.Named("bol-handler"),
	}
}

// RegisterRoutes registers the bol marketplace routes
func (h *BolHandler) RegisterRoutes(rg *gin.RouterGroup) {
	bol := rg.Group("/bol")
	{
		bol.GET("/sync-orders", h.SyncOrders)
		bol.PUT("/shipment", h.Shipment)
		bol.GET("/returns", h.Returns)
		bol.PUT("/return/:returnId", h.HandleReturn)
	}
}

// resolveInstallation parses the installationId query parameter and checks
// that the authenticated caller may act on it. On failure the response has
// already been written and ok is false.
func (h *BolHandler) resolveInstallation(c *gin.Context) (int64, bool) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return 0, false
	}

	raw := c.Query("installationId")
	if raw == "" {
		h.BadRequest(c, "installationId query parameter is required")
		return 0, false
	}
	installationID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || installationID <= 0 {
		h.BadRequest(c, "installationId must be a positive integer")
		return 0, false
	}

	if !claims.CanAccessInstallation(installationID) {
		h.logger.Warn("installation access denied",
			zap.Int64("user_id", claims.UserID),
			zap.Int64("installation_id", installationID),
		)
		h.Forbidden(c, shared.ErrAccessDenied.Message)
		return 0, false
	}

	return installationID, true
}

// SyncOrders runs one synchronous reconciliation for the installation
// GET /api/bol/sync-orders?installationId=N
func (h *BolHandler) SyncOrders(c *gin.Context) {
	installationID, ok := h.resolveInstallation(c)
	if !ok {
		return
	}

	result, err := h.service.Reconcile(c.Request.Context(), installationID)
	if err != nil {
		h.logger.Error("order sync failed",
			zap.Int64("installation_id", installationID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, dto.SyncFailureResponse{
			Error:   "bol order synchronisation failed",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.SyncOrdersResponse{
		Success:  true,
		Imported: result.Imported,
		Updated:  result.Updated,
		Total:    result.Total,
	})
}

// Shipment pushes a shipment to the marketplace and marks the local order
// shipped
// PUT /api/bol/shipment?installationId=N
func (h *BolHandler) Shipment(c *gin.Context) {
	installationID, ok := h.resolveInstallation(c)
	if !ok {
		return
	}

	var req dto.ShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid shipment request: "+err.Error())
		return
	}

	raw, err := h.service.ShipOrder(c.Request.Context(), installationID, integration.ShipmentRequest{
		OrderID:         req.OrderID,
		TransporterCode: req.TransporterCode,
		TrackAndTrace:   req.TrackAndTrace,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, raw)
}

// Returns passes one page of unhandled marketplace returns through unmodified
// GET /api/bol/returns?installationId=N&page=P
func (h *BolHandler) Returns(c *gin.Context) {
	installationID, ok := h.resolveInstallation(c)
	if !ok {
		return
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "page must be a positive integer")
			return
		}
		page = parsed
	}

	raw, err := h.service.GetReturns(c.Request.Context(), installationID, page)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}

// HandleReturn proxies a return-handling decision to the marketplace
// PUT /api/bol/return/:returnId?installationId=N
func (h *BolHandler) HandleReturn(c *gin.Context) {
	installationID, ok := h.resolveInstallation(c)
	if !ok {
		return
	}

	returnID := c.Param("returnId")
	if returnID == "" {
		h.BadRequest(c, "returnId path parameter is required")
		return
	}

	var req dto.ReturnHandlingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid return handling request: "+err.Error())
		return
	}

	raw, err := h.service.HandleReturn(c.Request.Context(), installationID, returnID, integration.ReturnHandlingRequest{
		HandlingResult:   req.HandlingResult,
		QuantityReturned: req.QuantityReturned,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, raw)
}
