package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/middleware"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/sensoryplay/portal-backend/internal/response"
	"github.com/sensoryplay/portal-backend/internal/service"
	"github.com/sensoryplay/portal-backend/internal/validator"
)

// BookingHandler handles parent bookings and their admin management.
type BookingHandler struct {
	bookingService *service.BookingService
	log            zerolog.Logger
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService, log zerolog.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		log:            log.With().Str("component", "booking_handler").Logger(),
	}
}

func (h *BookingHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBookingNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrBookingNotFound)
	case errors.Is(err, service.ErrClassNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrClassNotFound)
	case errors.Is(err, service.ErrClassFull):
		response.Fail(c, http.StatusConflict, response.ErrClassFull)
	case errors.Is(err, service.ErrClassStarted):
		response.Fail(c, http.StatusConflict, response.ErrClassAlreadyStarted)
	default:
		h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("booking request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// CreateBooking godoc
// POST /api/v1/bookings
// Reserves one seat for a child. Returns CLASS_FULL when no seat is left.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateBookingRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": booking})
}

// ListMyBookings godoc
// GET /api/v1/bookings
// Active bookings of the signed-in user, newest first.
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	bookings, err := h.bookingService.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": bookings})
}

// GetBooking godoc
// GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookingService.Get(c.Request.Context(), act, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": booking})
}

// QuoteCancellation godoc
// GET /api/v1/bookings/:id/cancellation
// Reports the refund tier and amount of cancelling now.
func (h *BookingHandler) QuoteCancellation(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	quote, err := h.bookingService.QuoteCancellation(c.Request.Context(), act, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cancellation": quote})
}

// CancelBooking godoc
// POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	cancel, err := h.bookingService.Cancel(c.Request.Context(), act, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cancellation": cancel})
}

// ResendConfirmation godoc
// POST /api/v1/bookings/:id/resend-confirmation
func (h *BookingHandler) ResendConfirmation(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.bookingService.ResendConfirmation(c.Request.Context(), act, id); err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"message": "confirmation email queued"})
}

// ListAllBookings godoc
// GET /api/v1/admin/bookings?status=active&page=1&per_page=10
func (h *BookingHandler) ListAllBookings(c *gin.Context) {
	status := model.BookingStatus(c.Query("status"))
	if status != "" && status != model.BookingActive && status != model.BookingCancelled {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"status": "status must be one of [active cancelled]"})
		return
	}
	page, perPage := pageQuery(c)

	bookings, total, err := h.bookingService.ListAll(c.Request.Context(), status, page, perPage)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, bookings, response.NewPagination(page, perPage, total))
}

// UpdatePaymentStatus godoc
// PATCH /api/v1/admin/bookings/:id/payment
func (h *BookingHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdatePaymentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.bookingService.SetPaymentStatus(c.Request.Context(), id, req.PaymentStatus); err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking_id": id, "payment_status": req.PaymentStatus})
}
