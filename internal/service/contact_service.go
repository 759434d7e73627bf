package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/model"
)

// ContactNotifier relays contact form messages.
type ContactNotifier interface {
	ContactReceived(ctx context.Context, m *model.ContactMessage) error
}

// ContactService stores contact form submissions and relays them by email.
type ContactService struct {
	messages ContactStore
	notifier ContactNotifier
	log      zerolog.Logger
}

// NewContactService creates a new ContactService.
func NewContactService(messages ContactStore, notifier ContactNotifier, log zerolog.Logger) *ContactService {
	return &ContactService{
		messages: messages,
		notifier: notifier,
		log:      log.With().Str("component", "contact_service").Logger(),
	}
}

// Submit persists the message and queues the admin relay and sender
// confirmation. Once stored the submission succeeds; a failed relay is logged
// and the message stays readable from the contact_messages table.
func (s *ContactService) Submit(ctx context.Context, req model.ContactRequest) (*model.ContactMessage, error) {
	m := &model.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("store contact message: %w", err)
	}

	if err := s.notifier.ContactReceived(ctx, m); err != nil {
		s.log.Error().Err(err).Str("message_id", m.ID.String()).Msg("contact relay failed")
	}
	return m, nil
}
