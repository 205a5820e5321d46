package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	reportapp "github.com/nedlog/warehouse-control/internal/application/report"
	"github.com/nedlog/warehouse-control/internal/domain/control"
)

// ReportHandler handles read-side reporting endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.Service
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.Service) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/location-status", h.LocationStatus)
	}

	rg.GET("/locations/:code/activity", h.Activity)
}

// LocationStatus returns the location/customer status report, optionally
// filtered by location, customer or status
func (h *ReportHandler) LocationStatus(c *gin.Context) {
	filter := reportapp.StatusFilter{
		Location: c.Query("location"),
		Customer: c.Query("customer"),
		Status:   control.LocationStatus(c.Query("status")),
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		h.BadRequest(c, "unknown status: "+string(filter.Status))
		return
	}

	rows, err := h.reportService.LocationStatus(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Activity returns the per-location activity summary over a trailing window
func (h *ReportHandler) Activity(c *gin.Context) {
	days := reportapp.DefaultActivityWindowDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.BadRequest(c, "days must be a positive integer")
			return
		}
		days = parsed
	}

	summary, err := h.reportService.Activity(c.Request.Context(), c.Param("code"), days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
