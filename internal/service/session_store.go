package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sensoryplay/portal-backend/internal/config"
)

// Session store errors.
var (
	ErrSessionNotFound   = errors.New("no active session")
	ErrResetTokenInvalid = errors.New("reset token is invalid or expired")
)

// RedisSessionStore keeps one key per issued token plus a per-user index so
// that every session of a user can be revoked at once.
type RedisSessionStore struct {
	rdb *redis.Client
}

// NewRedisSessionStore creates a new RedisSessionStore.
func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

// Create registers a session under its JTI with the token's lifetime.
func (s *RedisSessionStore) Create(ctx context.Context, userID uuid.UUID, jti string, ttl time.Duration) error {
	indexKey := config.CacheKey.UserSessionsKey(userID.String())

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, config.CacheKey.SessionKey(jti), userID.String(), ttl)
	pipe.SAdd(ctx, indexKey, jti)
	pipe.Expire(ctx, indexKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Lookup returns the owner of a live session.
func (s *RedisSessionStore) Lookup(ctx context.Context, jti string) (uuid.UUID, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.SessionKey(jti)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrSessionNotFound
		}
		return uuid.Nil, fmt.Errorf("check session: %w", err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrSessionNotFound
	}
	return id, nil
}

// Revoke removes a single session.
func (s *RedisSessionStore) Revoke(ctx context.Context, userID uuid.UUID, jti string) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, config.CacheKey.SessionKey(jti))
	pipe.SRem(ctx, config.CacheKey.UserSessionsKey(userID.String()), jti)
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAll removes every session of a user.
func (s *RedisSessionStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	indexKey := config.CacheKey.UserSessionsKey(userID.String())

	jtis, err := s.rdb.SMembers(ctx, indexKey).Result()
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	keys := make([]string, 0, len(jtis)+1)
	for _, jti := range jtis {
		keys = append(keys, config.CacheKey.SessionKey(jti))
	}
	keys = append(keys, indexKey)
	return s.rdb.Del(ctx, keys...).Err()
}

// SaveResetToken stores a hashed reset token pointing at its user.
func (s *RedisSessionStore) SaveResetToken(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	return s.rdb.Set(ctx, config.CacheKey.PasswordResetKey(tokenHash), userID.String(), ttl).Err()
}

// ConsumeResetToken atomically reads and deletes a reset token.
func (s *RedisSessionStore) ConsumeResetToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	raw, err := s.rdb.GetDel(ctx, config.CacheKey.PasswordResetKey(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrResetTokenInvalid
		}
		return uuid.Nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrResetTokenInvalid
	}
	return id, nil
}
