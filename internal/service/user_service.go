package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/sensoryplay/portal-backend/internal/repository"
)

// ErrSelfDemotion stops an admin from removing their own admin role.
var ErrSelfDemotion = errors.New("admins cannot change their own role")

// UserService backs the admin view of accounts.
type UserService struct {
	users    UserStore
	bookings BookingStore
	sessions SessionStore
	log      zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, bookings BookingStore, sessions SessionStore, log zerolog.Logger) *UserService {
	return &UserService{
		users:    users,
		bookings: bookings,
		sessions: sessions,
		log:      log.With().Str("component", "user_service").Logger(),
	}
}

// ListWithBookings returns a page of users, each with all of their bookings.
func (s *UserService) ListWithBookings(ctx context.Context, page, perPage int) ([]model.UserWithBookings, int, error) {
	users, total, err := s.users.ListPaginated(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	byUser, err := s.bookings.ListByUsers(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]model.UserWithBookings, 0, len(users))
	for _, u := range users {
		bookings := byUser[u.ID]
		if bookings == nil {
			bookings = []model.BookingWithClass{}
		}
		out = append(out, model.UserWithBookings{User: u, Bookings: bookings})
	}
	return out, total, nil
}

// ChangeRole promotes or demotes an account. Tokens carry the role, so every
// live session of the account is revoked and the user has to sign in again.
func (s *UserService) ChangeRole(ctx context.Context, actorID, userID uuid.UUID, role model.Role) (*model.User, error) {
	if actorID == userID {
		return nil, ErrSelfDemotion
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := s.sessions.RevokeAll(ctx, userID); err != nil {
		return nil, fmt.Errorf("revoke sessions after role change: %w", err)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", userID.String()).Str("role", string(role)).Str("by", actorID.String()).Msg("role changed")
	return u, nil
}
