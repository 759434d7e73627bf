package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/response"
	"github.com/sensoryplay/portal-backend/internal/service"
	"github.com/sensoryplay/portal-backend/internal/validator"
)

// DashboardQuery tunes the admin dashboard.
type DashboardQuery struct {
	Upcoming int `form:"upcoming" binding:"omitempty,min=1,max=20"`
}

// DashboardHandler handles admin dashboard endpoints.
type DashboardHandler struct {
	dashboardService *service.DashboardService
	log              zerolog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		log:              log.With().Str("component", "dashboard_handler").Logger(),
	}
}

// GetDashboardData godoc
// GET /api/v1/admin/dashboard?upcoming=5
// Returns parent and booking counts, fill rate, revenue, and the next classes
// with their enrollment.
func (h *DashboardHandler) GetDashboardData(c *gin.Context) {
	var q DashboardQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	data, err := h.dashboardService.GetDashboardData(c.Request.Context(), q.Upcoming)
	if err != nil {
		h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("dashboard query failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, data)
}
