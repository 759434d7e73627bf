package mailer

import (
	"context"
	"errors"
	"net/mail"

	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/model"
)

// ErrInvalidRecipient is returned for messages without a usable To address.
var ErrInvalidRecipient = errors.New("invalid recipient address")

// Mailer delivers a rendered email.
type Mailer interface {
	Send(ctx context.Context, msg model.EmailMessage) error
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	log zerolog.Logger
}

// NewLogMailer creates a new LogMailer.
func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log.With().Str("component", "log_mailer").Logger()}
}

// Send validates the addresses and logs the message.
func (m *LogMailer) Send(_ context.Context, msg model.EmailMessage) error {
	if _, err := mail.ParseAddress(msg.To); err != nil {
		return ErrInvalidRecipient
	}

	ev := m.log.Info().
		Str("email_id", msg.ID).
		Str("kind", string(msg.Kind)).
		Str("from", msg.FromEmail).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("body_bytes", len(msg.HTMLBody))
	if msg.ReplyTo != "" {
		ev = ev.Str("reply_to", msg.ReplyTo)
	}
	ev.Msg("email sent")
	return nil
}
