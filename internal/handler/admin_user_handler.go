package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sensoryplay/portal-backend/internal/middleware"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/sensoryplay/portal-backend/internal/response"
	"github.com/sensoryplay/portal-backend/internal/service"
	"github.com/sensoryplay/portal-backend/internal/validator"
)

type AdminUserHandler struct {
	service *service.UserService
}

func NewAdminUserHandler(service *service.UserService) *AdminUserHandler {
	return &AdminUserHandler{service: service}
}

// ListUsers godoc
// GET /api/v1/admin/users?page=1&per_page=10
// Accounts newest first, each with its bookings.
func (h *AdminUserHandler) ListUsers(c *gin.Context) {
	page, perPage := pageQuery(c)

	users, total, err := h.service.ListWithBookings(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, users, response.NewPagination(page, perPage, total))
}

// ChangeRole godoc
// PATCH /api/v1/admin/users/:id/role
func (h *AdminUserHandler) ChangeRole(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateUserRoleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.service.ChangeRole(c.Request.Context(), claims.UserID, id, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfDemotion):
			response.Fail(c, http.StatusForbidden, response.ErrSelfRoleChange)
		case errors.Is(err, service.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrUserNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}
