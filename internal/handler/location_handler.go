package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/sensoryplay/portal-backend/internal/response"
	"github.com/sensoryplay/portal-backend/internal/service"
	"github.com/sensoryplay/portal-backend/internal/validator"
)

// LocationHandler handles venues.
type LocationHandler struct {
	locationService *service.LocationService
	log             zerolog.Logger
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(locationService *service.LocationService, log zerolog.Logger) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
		log:             log.With().Str("component", "location_handler").Logger(),
	}
}

// ListLocations godoc
// GET /api/v1/public/locations
func (h *LocationHandler) ListLocations(c *gin.Context) {
	locations, err := h.locationService.List(c.Request.Context())
	if err != nil {
		failCatalog(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"locations": locations})
}

// GetLocation godoc
// GET /api/v1/public/locations/:id
// Returns the location with its upcoming classes.
func (h *LocationHandler) GetLocation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	loc, err := h.locationService.Get(c.Request.Context(), id)
	if err != nil {
		failCatalog(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"location": loc})
}

// CreateLocation godoc
// POST /api/v1/admin/locations
func (h *LocationHandler) CreateLocation(c *gin.Context) {
	var req model.LocationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	loc, err := h.locationService.Create(c.Request.Context(), req)
	if err != nil {
		failCatalog(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"location": loc})
}

// UpdateLocation godoc
// PUT /api/v1/admin/locations/:id
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.LocationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	loc, err := h.locationService.Update(c.Request.Context(), id, req)
	if err != nil {
		failCatalog(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"location": loc})
}

// DeleteLocation godoc
// DELETE /api/v1/admin/locations/:id
func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.locationService.Delete(c.Request.Context(), id); err != nil {
		failCatalog(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "location deleted successfully"})
}
