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

// NewsletterHandler handles the mailing list.
type NewsletterHandler struct {
	newsletterService *service.NewsletterService
	log               zerolog.Logger
}

// NewNewsletterHandler creates a new NewsletterHandler.
func NewNewsletterHandler(newsletterService *service.NewsletterService, log zerolog.Logger) *NewsletterHandler {
	return &NewsletterHandler{
		newsletterService: newsletterService,
		log:               log.With().Str("component", "newsletter_handler").Logger(),
	}
}

// Subscribe godoc
// POST /api/v1/public/newsletter/subscribe
// Idempotent; re-subscribes an address that previously left.
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req model.SubscribeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.newsletterService.Subscribe(c.Request.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("subscribe failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"subscriber": sub})
}

// Unsubscribe godoc
// POST /api/v1/public/newsletter/unsubscribe
// Unknown addresses succeed as well.
func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	var req model.UnsubscribeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.newsletterService.Unsubscribe(c.Request.Context(), req.Email); err != nil {
		h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("unsubscribe failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "unsubscribed"})
}

// ListSubscribers godoc
// GET /api/v1/admin/newsletter?page=1&per_page=10
func (h *NewsletterHandler) ListSubscribers(c *gin.Context) {
	page, perPage := pageQuery(c)

	subs, total, err := h.newsletterService.List(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, subs, response.NewPagination(page, perPage, total))
}
