package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/middleware"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/sensoryplay/portal-backend/internal/response"
	"github.com/sensoryplay/portal-backend/internal/service"
	"github.com/sensoryplay/portal-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// SignUp godoc
// POST /api/v1/auth/signup
// Creates a parent account and signs it in.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req model.SignUpRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	result, err := h.authService.SignUp(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
			return
		}
		h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("sign up failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// SignIn godoc
// POST /api/v1/auth/signin
// Validates email + password and returns a JWT.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req model.SignInRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	result, err := h.authService.SignIn(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("sign in failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// SignOut godoc
// POST /api/v1/auth/signout
// Revokes the session behind the presented token.
func (h *AuthHandler) SignOut(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.SignOut(c.Request.Context(), claims); err != nil {
		h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("sign out failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// GetSession godoc
// GET /api/v1/auth/session
// Returns the profile of the signed-in user.
func (h *AuthHandler) GetSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.authService.GetSession(c.Request.Context(), claims)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Fail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":       user,
		"expires_at": claims.ExpiresAt,
	})
}

// ForgotPassword godoc
// POST /api/v1/auth/password/forgot
// Emails a reset link. Always succeeds for well-formed input so addresses
// cannot be probed.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.authService.RequestPasswordReset(c.Request.Context(), email); err != nil {
		h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("password reset request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"message": "if the address is registered, a reset link has been sent"})
}

// ResetPassword godoc
// POST /api/v1/auth/password/reset
// Consumes a reset token and sets a new password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req); err != nil {
		if errors.Is(err, service.ErrResetTokenInvalid) {
			response.Fail(c, http.StatusBadRequest, response.ErrResetTokenInvalid)
			return
		}
		h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("password reset failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "password updated"})
}

// ChangePassword godoc
// POST /api/v1/auth/password/change
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.ChangePasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), claims.UserID, req); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		case errors.Is(err, service.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrUserNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "password updated"})
}
