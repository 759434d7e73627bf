package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/config"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type captureResetNotifier struct {
	token string
	to    string
}

func (c *captureResetNotifier) PasswordReset(_ context.Context, u *model.User, token string) error {
	c.token = token
	c.to = u.Email
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTExpiry:        time.Hour,
		BcryptCost:       bcrypt.MinCost,
		PasswordResetTTL: 30 * time.Minute,
		PasswordResetURL: "http://localhost:5173/reset-password",
		MailFrom:         "noreply@example.com",
		MailFromName:     "Learn by Sensory",
		AdminNotifyEmail: "admin@example.com",
		ClassTimezone:    "America/Los_Angeles",
	}
}

func newAuthFixture() (*AuthService, *fakeUsers, *fakeSessions, *captureResetNotifier) {
	users := newFakeUsers()
	sessions := newFakeSessions()
	notifier := &captureResetNotifier{}
	return NewAuthService(testConfig(), users, sessions, notifier, zerolog.Nop()), users, sessions, notifier
}

func signUp(t *testing.T, svc *AuthService, email string) *AuthResult {
	t.Helper()
	res, err := svc.SignUp(context.Background(), model.SignUpRequest{
		Email: email, Password: "hunter22", Name: "Jo Parent",
	})
	require.NoError(t, err)
	return res
}

func TestSignUpCreatesParentAndSession(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	ctx := context.Background()

	res := signUp(t, svc, "Jo@Example.com")
	assert.Equal(t, model.RoleParent, res.User.Role)
	assert.Equal(t, "jo@example.com", res.User.Email)
	assert.NotEmpty(t, res.Token)

	claims, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, model.RoleParent, claims.Role)

	user, err := svc.GetSession(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, "Jo Parent", user.Name)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	signUp(t, svc, "jo@example.com")

	_, err := svc.SignUp(context.Background(), model.SignUpRequest{Email: "JO@example.com", Password: "another1"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignIn(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	ctx := context.Background()
	signUp(t, svc, "jo@example.com")

	res, err := svc.SignIn(ctx, model.SignInRequest{Email: "jo@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, err = svc.SignIn(ctx, model.SignInRequest{Email: "jo@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, model.SignInRequest{Email: "nobody@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignOutRevokesOnlyThatSession(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	ctx := context.Background()
	first := signUp(t, svc, "jo@example.com")

	second, err := svc.SignIn(ctx, model.SignInRequest{Email: "jo@example.com", Password: "hunter22"})
	require.NoError(t, err)

	claims, err := svc.Authenticate(ctx, first.Token)
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(ctx, claims))

	_, err = svc.Authenticate(ctx, first.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Authenticate(ctx, second.Token)
	assert.NoError(t, err)
}

func TestAuthenticateRejectsForeignTokens(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "x", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, _, notifier := newAuthFixture()
	ctx := context.Background()
	res := signUp(t, svc, "jo@example.com")

	require.NoError(t, svc.RequestPasswordReset(ctx, "jo@example.com"))
	require.NotEmpty(t, notifier.token)
	assert.Equal(t, "jo@example.com", notifier.to)

	req := model.ResetPasswordRequest{Token: notifier.token, Password: "newpass1", ConfirmPassword: "newpass1"}
	require.NoError(t, svc.ResetPassword(ctx, req))

	// Single use.
	assert.ErrorIs(t, svc.ResetPassword(ctx, req), ErrResetTokenInvalid)

	// Every prior session is gone.
	_, err := svc.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.SignIn(ctx, model.SignInRequest{Email: "jo@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, model.SignInRequest{Email: "jo@example.com", Password: "newpass1"})
	assert.NoError(t, err)
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	svc, _, _, notifier := newAuthFixture()

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "ghost@example.com"))
	assert.Empty(t, notifier.token)
}

func TestChangePassword(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	ctx := context.Background()
	res := signUp(t, svc, "jo@example.com")

	err := svc.ChangePassword(ctx, res.User.ID, model.ChangePasswordRequest{CurrentPassword: "nope-nope", NewPassword: "brandnew"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, res.User.ID, model.ChangePasswordRequest{CurrentPassword: "hunter22", NewPassword: "brandnew"}))
	_, err = svc.SignIn(ctx, model.SignInRequest{Email: "jo@example.com", Password: "brandnew"})
	assert.NoError(t, err)
}
