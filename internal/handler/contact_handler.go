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

// ContactHandler handles the public contact form.
type ContactHandler struct {
	contactService *service.ContactService
	log            zerolog.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contactService *service.ContactService, log zerolog.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		log:            log.With().Str("component", "contact_handler").Logger(),
	}
}

// SubmitContact godoc
// POST /api/v1/public/contact
// Stores the message and queues the admin relay and sender confirmation.
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req model.ContactRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	msg, err := h.contactService.Submit(c.Request.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("contact submission failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"success": true, "id": msg.ID})
}
