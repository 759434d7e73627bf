package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/sensoryplay/portal-backend/internal/response"
	"github.com/sensoryplay/portal-backend/internal/service"
	"github.com/sensoryplay/portal-backend/internal/validator"
)

// ClassHandler handles the class catalog: public browsing and admin CRUD.
type ClassHandler struct {
	classService *service.ClassService
	log          zerolog.Logger
}

// NewClassHandler creates a new ClassHandler.
func NewClassHandler(classService *service.ClassService, log zerolog.Logger) *ClassHandler {
	return &ClassHandler{
		classService: classService,
		log:          log.With().Str("component", "class_handler").Logger(),
	}
}

// failCatalog maps catalog service errors to API errors.
func failCatalog(c *gin.Context, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrClassNotFound)
	case errors.Is(err, service.ErrLocationNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrLocationNotFound)
	case errors.Is(err, service.ErrCapacityBelowEnrolled):
		response.Fail(c, http.StatusConflict, response.ErrCapacityBelowEnrolled)
	case errors.Is(err, service.ErrDependencyExists):
		response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
	case errors.Is(err, service.ErrInvalidDateRange):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidRange)
	case errors.Is(err, service.ErrInvalidSchedule):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"date": "date and time do not form a valid start time"})
	default:
		log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("catalog request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// ListClasses godoc
// GET /api/v1/public/classes
// Lists classes filtered by location, age group, date range and upcoming_only.
func (h *ClassHandler) ListClasses(c *gin.Context) {
	var q model.ClassQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	classes, err := h.classService.List(c.Request.Context(), q)
	if err != nil {
		failCatalog(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"classes": classes})
}

// GetClass godoc
// GET /api/v1/public/classes/:id
func (h *ClassHandler) GetClass(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	class, err := h.classService.Get(c.Request.Context(), id)
	if err != nil {
		failCatalog(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": class})
}

// CreateClass godoc
// POST /api/v1/admin/classes
func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req model.ClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Create(c.Request.Context(), req)
	if err != nil {
		failCatalog(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"class": model.NewClassView(*class)})
}

// UpdateClass godoc
// PUT /api/v1/admin/classes/:id
// Capacity cannot be lowered below the enrolled count.
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.ClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	class, err := h.classService.Update(c.Request.Context(), id, req)
	if err != nil {
		failCatalog(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"class": model.NewClassView(*class)})
}

// DeleteClass godoc
// DELETE /api/v1/admin/classes/:id
// Fails with DEPENDENCY_EXISTS while bookings reference the class.
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.classService.Delete(c.Request.Context(), id); err != nil {
		failCatalog(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "class deleted successfully"})
}
