package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/model"
)

// NewsletterService manages the mailing list.
type NewsletterService struct {
	subscribers NewsletterStore
	log         zerolog.Logger
}

// NewNewsletterService creates a new NewsletterService.
func NewNewsletterService(subscribers NewsletterStore, log zerolog.Logger) *NewsletterService {
	return &NewsletterService{
		subscribers: subscribers,
		log:         log.With().Str("component", "newsletter_service").Logger(),
	}
}

// Subscribe adds or re-activates an address. Repeating it is harmless.
func (s *NewsletterService) Subscribe(ctx context.Context, req model.SubscribeRequest) (*model.Subscriber, error) {
	sub := &model.Subscriber{
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Name:  strings.TrimSpace(req.Name),
	}
	if err := s.subscribers.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	s.log.Info().Str("email", sub.Email).Msg("newsletter subscription")
	return sub, nil
}

// Unsubscribe removes an address from the list.
func (s *NewsletterService) Unsubscribe(ctx context.Context, email string) error {
	return s.subscribers.Unsubscribe(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// List returns current subscribers for admins.
func (s *NewsletterService) List(ctx context.Context, page, perPage int) ([]model.Subscriber, int, error) {
	return s.subscribers.ListActive(ctx, perPage, (page-1)*perPage)
}
