package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus tracks whether a booking has been paid for.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

// BookingStatus distinguishes live bookings from cancelled ones.
type BookingStatus string

const (
	BookingActive    BookingStatus = "active"
	BookingCancelled BookingStatus = "cancelled"
)

// RefundTier is the settlement a parent receives when cancelling.
type RefundTier string

const (
	RefundFull    RefundTier = "full"
	RefundPartial RefundTier = "partial"
	RefundNone    RefundTier = "none"
)

// Settlement describes how the refund amount is paid out.
func (t RefundTier) Settlement() string {
	switch t {
	case RefundFull:
		return "refund"
	case RefundPartial:
		return "credit"
	default:
		return "none"
	}
}

// Booking is a parent's reservation of one seat in a class for a named child.
type Booking struct {
	ID            uuid.UUID     `json:"id"`
	ClassID       uuid.UUID     `json:"class_id"`
	UserID        uuid.UUID     `json:"user_id"`
	ParentName    string        `json:"parent_name"`
	ContactEmail  string        `json:"contact_email"`
	ContactPhone  string        `json:"contact_phone"`
	ChildName     string        `json:"child_name"`
	ChildAge      int           `json:"child_age"`
	SpecialNeeds  string        `json:"special_needs,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Status        BookingStatus `json:"status"`
	RefundTier    RefundTier    `json:"refund_tier,omitempty"`
	RefundCents   int           `json:"refund_cents"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// ClassSummary is the slice of a class shown next to a booking.
type ClassSummary struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	StartsAt   time.Time `json:"starts_at"`
	PriceCents int       `json:"price_cents"`
	LocationID uuid.UUID `json:"location_id"`
}

// BookingWithClass is a booking joined with its class summary.
type BookingWithClass struct {
	Booking
	Class ClassSummary `json:"class"`
}

// Cancellation is the outcome of a cancellation quote or a completed cancellation.
type Cancellation struct {
	BookingID   uuid.UUID  `json:"booking_id"`
	Tier        RefundTier `json:"refund_tier"`
	Settlement  string     `json:"settlement"`
	AmountCents int        `json:"amount_cents"`
	HoursBefore float64    `json:"hours_before_class"`
}

// CreateBookingRequest is the two-step booking form submitted as one payload.
type CreateBookingRequest struct {
	ClassID      string `json:"class_id" binding:"required,uuid"`
	ParentName   string `json:"parent_name" binding:"required,min=2,max=100"`
	Email        string `json:"email" binding:"required,email,max=255"`
	Phone        string `json:"phone" binding:"required,min=7,max=20"`
	ChildName    string `json:"child_name" binding:"required,min=1,max=100"`
	ChildAge     int    `json:"child_age" binding:"required,min=1,max=17"`
	SpecialNeeds string `json:"special_needs" binding:"omitempty,max=1000"`
}

// UpdatePaymentRequest is the admin payload for marking a booking's payment.
type UpdatePaymentRequest struct {
	PaymentStatus PaymentStatus `json:"payment_status" binding:"required,oneof=pending completed"`
}
