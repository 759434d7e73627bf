package model

import "time"

// EmailKind identifies the template an outbound email was rendered from.
type EmailKind string

const (
	EmailContactNotify       EmailKind = "contact_notify"
	EmailContactConfirmation EmailKind = "contact_confirmation"
	EmailBookingConfirmation EmailKind = "booking_confirmation"
	EmailBookingNotify       EmailKind = "booking_notify"
	EmailBookingCancelled    EmailKind = "booking_cancelled"
	EmailPasswordReset       EmailKind = "password_reset"
)

// EmailMessage is a rendered message waiting in the outbox.
type EmailMessage struct {
	ID          string    `json:"id"`
	Kind        EmailKind `json:"kind"`
	FromEmail   string    `json:"from_email"`
	FromName    string    `json:"from_name"`
	To          string    `json:"to"`
	ToName      string    `json:"to_name,omitempty"`
	ReplyTo     string    `json:"reply_to,omitempty"`
	ReplyToName string    `json:"reply_to_name,omitempty"`
	Subject     string    `json:"subject"`
	HTMLBody    string    `json:"html_body"`
	Attempts    int       `json:"attempts"`
	QueuedAt    time.Time `json:"queued_at"`
}
