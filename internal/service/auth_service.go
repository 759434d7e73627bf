package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/config"
	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/sensoryplay/portal-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID  `json:"user_id"`
	Role   model.Role `json:"role"`
}

// AuthResult is returned by sign up and sign in.
type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// PasswordResetNotifier delivers reset links.
type PasswordResetNotifier interface {
	PasswordReset(ctx context.Context, u *model.User, token string) error
}

// AuthService handles accounts, JWT issuance, and session management.
type AuthService struct {
	cfg      *config.Config
	users    UserStore
	sessions SessionStore
	notifier PasswordResetNotifier
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, users UserStore, sessions SessionStore, notifier PasswordResetNotifier, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:      cfg,
		users:    users,
		sessions: sessions,
		notifier: notifier,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// SignUp creates a parent account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, req model.SignUpRequest) (*AuthResult, error) {
	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         model.RoleParent,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", u.ID.String()).Msg("account created")
	return s.issue(ctx, u)
}

// SignIn verifies credentials and opens a new session.
func (s *AuthService) SignIn(ctx context.Context, req model.SignInRequest) (*AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.CheckPassword(u.PasswordHash, req.Password); err != nil {
		return nil, err
	}
	return s.issue(ctx, u)
}

func (s *AuthService) issue(ctx context.Context, u *model.User) (*AuthResult, error) {
	jti := uuid.New().String()
	now := time.Now()
	expires := now.Add(s.cfg.JWTExpiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UserID: u.ID,
		Role:   u.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	if err := s.sessions.Create(ctx, u.ID, jti, s.cfg.JWTExpiry); err != nil {
		return nil, err
	}

	return &AuthResult{Token: signed, ExpiresAt: expires, User: u}, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CheckSession verifies that the session behind the claims is still live.
func (s *AuthService) CheckSession(ctx context.Context, claims *Claims) error {
	owner, err := s.sessions.Lookup(ctx, claims.ID)
	if err != nil {
		return err
	}
	if owner != claims.UserID {
		return ErrSessionNotFound
	}
	return nil
}

// Authenticate validates a token and checks that its session is still live.
func (s *AuthService) Authenticate(ctx context.Context, tokenStr string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenStr)
	if err != nil {
		return nil, err
	}
	if err := s.CheckSession(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// SignOut revokes the session behind the given claims.
func (s *AuthService) SignOut(ctx context.Context, claims *Claims) error {
	return s.sessions.Revoke(ctx, claims.UserID, claims.ID)
}

// GetSession returns the profile of the signed-in user.
func (s *AuthService) GetSession(ctx context.Context, claims *Claims) (*model.User, error) {
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RequestPasswordReset emails a single-use reset link when the address is known.
// Unknown addresses succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Debug().Msg("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(buf)

	if err := s.sessions.SaveResetToken(ctx, hashResetToken(token), u.ID, s.cfg.PasswordResetTTL); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	if err := s.notifier.PasswordReset(ctx, u, token); err != nil {
		return err
	}

	s.log.Info().Str("user_id", u.ID.String()).Msg("password reset requested")
	return nil
}

// ResetPassword consumes a reset token, sets the new password, and signs the
// user out everywhere.
func (s *AuthService) ResetPassword(ctx context.Context, req model.ResetPasswordRequest) error {
	userID, err := s.sessions.ConsumeResetToken(ctx, hashResetToken(req.Token))
	if err != nil {
		return err
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}

	if err := s.sessions.RevokeAll(ctx, userID); err != nil {
		s.log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to revoke sessions after reset")
	}
	return nil
}

// ChangePassword replaces the password of a signed-in user.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req model.ChangePasswordRequest) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := s.CheckPassword(u.PasswordHash, req.CurrentPassword); err != nil {
		return err
	}

	hash, err := s.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}
