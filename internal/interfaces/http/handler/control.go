package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	controlapp "github.com/nedlog/warehouse-control/internal/application/control"
	"github.com/nedlog/warehouse-control/internal/domain/control"
	"github.com/nedlog/warehouse-control/internal/interfaces/http/dto"
)

// ControlHandler handles exclusivity control API endpoints
type ControlHandler struct {
	BaseHandler
	controlService *controlapp.ControlService
}

// NewControlHandler creates a new ControlHandler
func NewControlHandler(controlService *controlapp.ControlService) *ControlHandler {
	return &ControlHandler{controlService: controlService}
}

// RegisterRoutes registers control routes
func (h *ControlHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ctrl := rg.Group("/control")
	{
		ctrl.POST("/incoming", h.HandleIncoming)
		ctrl.POST("/outgoing", h.HandleOutgoing)
	}

	locations := rg.Group("/locations")
	{
		locations.GET("/:code/summary", h.LocationSummary)
		locations.GET("/:code/log", h.ControlLog)
		locations.PATCH("/:code/control-fields", h.UpdateControlFields)
	}
}

// HandleIncoming evaluates an incoming stock transaction before it posts
func (h *ControlHandler) HandleIncoming(c *gin.Context) {
	h.handleTransaction(c, h.controlService.HandleIncoming)
}

// HandleOutgoing evaluates an outgoing stock transaction after it posted
func (h *ControlHandler) HandleOutgoing(c *gin.Context) {
	h.handleTransaction(c, h.controlService.HandleOutgoing)
}

func (h *ControlHandler) handleTransaction(c *gin.Context, evaluate func(ctx context.Context, txn control.TransactionContext, actingUser string) []controlapp.ItemResult) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, err.Error())
		return
	}
	if !req.Validate() {
		h.BadRequest(c, "unknown document type: "+req.DocumentType)
		return
	}

	results := evaluate(c.Request.Context(), req.ToDomain(), getActingUser(c))
	h.Success(c, results)
}

// LocationSummary returns the control state and on-hand quantity of a location
func (h *ControlHandler) LocationSummary(c *gin.Context) {
	summary, err := h.controlService.LocationSummary(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ControlLog returns a page of the location's audit trail
func (h *ControlHandler) ControlLog(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, err.Error())
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	entries, total, err := h.controlService.ControlLog(c.Request.Context(), c.Param("code"), req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ControlLogEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, NewControlLogEntryResponse(entry))
	}
	h.SuccessWithMeta(c, responses, total, req.Page, req.PageSize)
}

// UpdateControlFields applies a manual correction of a location's control fields
func (h *ControlHandler) UpdateControlFields(c *gin.Context) {
	var req ControlFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	if err := h.controlService.ApplyControlFields(c.Request.Context(), c.Param("code"), req.ToDomain()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
