package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/sensoryplay/portal-backend/internal/repository"
)

// Booking errors.
var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrClassFull       = errors.New("class is fully booked")
)

// BookingNotifier sends the booking lifecycle emails.
type BookingNotifier interface {
	BookingConfirmed(ctx context.Context, b *model.Booking, c *model.Class) error
	BookingCancelled(ctx context.Context, b *model.Booking, c *model.Class, cancel model.Cancellation) error
}

// Actor identifies who is acting on a booking.
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// BookingService handles seat reservations, cancellations, and refunds.
type BookingService struct {
	bookings  BookingStore
	classes   ClassStore
	notifier  BookingNotifier
	publisher AvailabilityPublisher
	cache     CatalogCache
	now       func() time.Time
	log       zerolog.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings BookingStore,
	classes ClassStore,
	notifier BookingNotifier,
	publisher AvailabilityPublisher,
	cache CatalogCache,
	log zerolog.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		classes:   classes,
		notifier:  notifier,
		publisher: publisher,
		cache:     cache,
		now:       time.Now,
		log:       log.With().Str("component", "booking_service").Logger(),
	}
}

func (s *BookingService) getClass(ctx context.Context, id uuid.UUID) (*model.Class, error) {
	c, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return c, nil
}

// Create books one seat for a child. The seat and the booking row are written
// together; a full class leaves no booking behind.
func (s *BookingService) Create(ctx context.Context, userID uuid.UUID, req model.CreateBookingRequest) (*model.Booking, error) {
	classID, err := uuid.Parse(req.ClassID)
	if err != nil {
		return nil, ErrClassNotFound
	}
	c, err := s.getClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if c.HasStarted(s.now()) {
		return nil, ErrClassStarted
	}
	if c.SpotsLeft() == 0 {
		return nil, ErrClassFull
	}

	b := &model.Booking{
		ClassID:       c.ID,
		UserID:        userID,
		ParentName:    req.ParentName,
		ContactEmail:  req.Email,
		ContactPhone:  req.Phone,
		ChildName:     req.ChildName,
		ChildAge:      req.ChildAge,
		SpecialNeeds:  req.SpecialNeeds,
		PaymentStatus: model.PaymentPending,
		Status:        model.BookingActive,
	}

	avail, err := s.bookings.CreateWithEnrollment(ctx, b)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrClassFull):
			return nil, ErrClassFull
		case errors.Is(err, repository.ErrInUse):
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	c.Enrolled = avail.Enrolled
	s.enrollmentChanged(ctx, avail)

	s.log.Info().
		Str("booking_id", b.ID.String()).
		Str("class_id", c.ID.String()).
		Int("spots_left", avail.SpotsLeft).
		Msg("booking created")

	if err := s.notifier.BookingConfirmed(ctx, b, c); err != nil {
		s.log.Error().Err(err).Str("booking_id", b.ID.String()).Msg("booking confirmation not queued")
	}
	return b, nil
}

// ListMine returns the active bookings of a user, newest first.
func (s *BookingService) ListMine(ctx context.Context, userID uuid.UUID) ([]model.BookingWithClass, error) {
	return s.bookings.ListActiveByUser(ctx, userID)
}

// ListAll returns every booking for admins.
func (s *BookingService) ListAll(ctx context.Context, status model.BookingStatus, page, perPage int) ([]model.BookingWithClass, int, error) {
	offset := (page - 1) * perPage
	return s.bookings.ListPaginated(ctx, status, perPage, offset)
}

// Get returns a booking visible to the actor. Bookings of other users look missing.
func (s *BookingService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if b.UserID != actor.UserID && !actor.IsAdmin {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

func (s *BookingService) getActive(ctx context.Context, actor Actor, id uuid.UUID) (*model.Booking, *model.Class, error) {
	b, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	if b.Status != model.BookingActive {
		return nil, nil, ErrBookingNotFound
	}
	c, err := s.getClass(ctx, b.ClassID)
	if err != nil {
		return nil, nil, err
	}
	return b, c, nil
}

func (s *BookingService) quote(b *model.Booking, c *model.Class, now time.Time) (*model.Cancellation, error) {
	tier, err := ClassifyRefund(c.StartsAt, now)
	if err != nil {
		return nil, err
	}
	return &model.Cancellation{
		BookingID:   b.ID,
		Tier:        tier,
		Settlement:  tier.Settlement(),
		AmountCents: RefundAmount(tier, c.PriceCents),
		HoursBefore: c.StartsAt.Sub(now).Hours(),
	}, nil
}

// QuoteCancellation reports what cancelling now would refund, without cancelling.
func (s *BookingService) QuoteCancellation(ctx context.Context, actor Actor, id uuid.UUID) (*model.Cancellation, error) {
	b, c, err := s.getActive(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.quote(b, c, s.now())
}

// Cancel cancels an active booking, releases its seat, and records the refund.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*model.Cancellation, error) {
	b, c, err := s.getActive(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cancel, err := s.quote(b, c, now)
	if err != nil {
		return nil, err
	}

	avail, err := s.bookings.CancelWithEnrollment(ctx, b, cancel.Tier, cancel.AmountCents, now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	c.Enrolled = avail.Enrolled
	s.enrollmentChanged(ctx, avail)

	s.log.Info().
		Str("booking_id", b.ID.String()).
		Str("refund_tier", string(cancel.Tier)).
		Int("refund_cents", cancel.AmountCents).
		Msg("booking cancelled")

	if err := s.notifier.BookingCancelled(ctx, b, c, *cancel); err != nil {
		s.log.Error().Err(err).Str("booking_id", b.ID.String()).Msg("cancellation email not queued")
	}
	return cancel, nil
}

// ResendConfirmation queues the confirmation email of an active booking again.
func (s *BookingService) ResendConfirmation(ctx context.Context, actor Actor, id uuid.UUID) error {
	b, c, err := s.getActive(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.notifier.BookingConfirmed(ctx, b, c)
}

// SetPaymentStatus records payment for a booking.
func (s *BookingService) SetPaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	if err := s.bookings.UpdatePaymentStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookingNotFound
		}
		return err
	}
	return nil
}

// enrollmentChanged fans out a new availability snapshot. Failures are logged only.
func (s *BookingService) enrollmentChanged(ctx context.Context, avail model.Availability) {
	if err := s.publisher.PublishAvailability(ctx, avail); err != nil {
		s.log.Warn().Err(err).Str("class_id", avail.ClassID.String()).Msg("availability publish failed")
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}
