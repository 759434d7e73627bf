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

// SettingHandler serves the portal's key-value settings.
type SettingHandler struct {
	settingService *service.SettingService
	log            zerolog.Logger
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(settingService *service.SettingService, log zerolog.Logger) *SettingHandler {
	return &SettingHandler{
		settingService: settingService,
		log:            log.With().Str("component", "setting_handler").Logger(),
	}
}

// GetAllSettings godoc
// GET /api/v1/admin/settings
// Returns the stored values and the keys that may be written.
func (h *SettingHandler) GetAllSettings(c *gin.Context) {
	settings, err := h.settingService.GetAllSettings(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": settings, "keys": model.SettingKeys})
}

// UpdateSettings godoc
// PUT /api/v1/admin/settings
// Unknown keys and invalid values reject the whole update.
func (h *SettingHandler) UpdateSettings(c *gin.Context) {
	var req model.UpdateSettingsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.settingService.UpdateSettings(c.Request.Context(), req.Settings); err != nil {
		var settingErr *service.SettingError
		if errors.As(err, &settingErr) {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{settingErr.Key: settingErr.Reason})
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.log.Info().Strs("keys", mapKeys(req.Settings)).Str("request_id", response.RequestID(c)).Msg("settings updated")
	response.Success(c, http.StatusOK, gin.H{"message": "settings updated successfully"})
}

// GetPublicSettings godoc
// GET /api/v1/public/settings
func (h *SettingHandler) GetPublicSettings(c *gin.Context) {
	settings, err := h.settingService.GetPublicSettings(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, settings)
}

func mapKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
