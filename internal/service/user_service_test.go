package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListWithBookingsIncludesCancelledHistory(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	classes := newFakeClasses()
	bookings := newFakeBookings(classes)
	svc := NewUserService(users, bookings, newFakeSessions(), zerolog.Nop())

	parent := &model.User{Email: "p@example.com", Role: model.RoleParent}
	require.NoError(t, users.Create(ctx, parent))
	loner := &model.User{Email: "l@example.com", Role: model.RoleParent}
	require.NoError(t, users.Create(ctx, loner))

	c := classes.add(model.Class{Title: "Splash", Capacity: 3, StartsAt: time.Now().Add(72 * time.Hour)})
	b := &model.Booking{ClassID: c.ID, UserID: parent.ID, ChildName: "Ari", Status: model.BookingActive}
	_, err := bookings.CreateWithEnrollment(ctx, b)
	require.NoError(t, err)
	_, err = bookings.CancelWithEnrollment(ctx, b, model.RefundFull, 0, time.Now())
	require.NoError(t, err)

	list, total, err := svc.ListWithBookings(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 2)

	byEmail := map[string]model.UserWithBookings{}
	for _, u := range list {
		byEmail[u.Email] = u
	}
	require.Len(t, byEmail["p@example.com"].Bookings, 1)
	assert.Equal(t, "Splash", byEmail["p@example.com"].Bookings[0].Class.Title)
	assert.Equal(t, model.BookingCancelled, byEmail["p@example.com"].Bookings[0].Status)
	assert.NotNil(t, byEmail["l@example.com"].Bookings)
	assert.Empty(t, byEmail["l@example.com"].Bookings)
}

func TestChangeRole(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	svc := NewUserService(users, newFakeBookings(newFakeClasses()), newFakeSessions(), zerolog.Nop())

	admin := &model.User{Email: "a@example.com", Role: model.RoleAdmin}
	require.NoError(t, users.Create(ctx, admin))
	parent := &model.User{Email: "p@example.com", Role: model.RoleParent}
	require.NoError(t, users.Create(ctx, parent))

	u, err := svc.ChangeRole(ctx, admin.ID, parent.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	_, err = svc.ChangeRole(ctx, admin.ID, admin.ID, model.RoleParent)
	assert.ErrorIs(t, err, ErrSelfDemotion)

	_, err = svc.ChangeRole(ctx, admin.ID, uuid.New(), model.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangeRoleRevokesExistingTokens(t *testing.T) {
	ctx := context.Background()
	auth, users, sessions, _ := newAuthFixture()
	svc := NewUserService(users, newFakeBookings(newFakeClasses()), sessions, zerolog.Nop())

	root := &model.User{Email: "root@example.com", Role: model.RoleAdmin}
	require.NoError(t, users.Create(ctx, root))

	res := signUp(t, auth, "helper@example.com")
	_, err := svc.ChangeRole(ctx, root.ID, res.User.ID, model.RoleAdmin)
	require.NoError(t, err)

	_, err = auth.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	promoted, err := auth.SignIn(ctx, model.SignInRequest{Email: "helper@example.com", Password: "hunter22"})
	require.NoError(t, err)
	claims, err := auth.Authenticate(ctx, promoted.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	_, err = svc.ChangeRole(ctx, root.ID, res.User.ID, model.RoleParent)
	require.NoError(t, err)

	_, err = auth.Authenticate(ctx, promoted.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestFillRate(t *testing.T) {
	assert.Equal(t, 0.0, FillRate(0, 0))
	assert.Equal(t, 37.5, FillRate(3, 8))
	assert.Equal(t, 33.3, FillRate(1, 3))
	assert.Equal(t, 100.0, FillRate(8, 8))
}
