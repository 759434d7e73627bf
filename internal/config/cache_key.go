package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionKey returns the key holding the owner of an issued token (by JTI).
func (r *CacheKeyStruct) SessionKey(jti string) string {
	return fmt.Sprintf("session:%s", jti)
}

// UserSessionsKey returns the set of live JTIs for a user.
func (r *CacheKeyStruct) UserSessionsKey(userID string) string {
	return fmt.Sprintf("user:%s:sessions", userID)
}

// PasswordResetKey returns the key for a hashed password reset token.
func (r *CacheKeyStruct) PasswordResetKey(tokenHash string) string {
	return fmt.Sprintf("password_reset:%s", tokenHash)
}

// CatalogVersionKey is bumped on every catalog write to invalidate cached listings.
func (r *CacheKeyStruct) CatalogVersionKey() string {
	return "catalog:version"
}

// CatalogEntryKey returns the versioned key of a cached catalog listing.
func (r *CacheKeyStruct) CatalogEntryKey(version int64, name string) string {
	return fmt.Sprintf("catalog:v%d:%s", version, name)
}

// ClassAvailabilityChannel returns the Redis PubSub channel for enrollment changes of a class.
func (r *CacheKeyStruct) ClassAvailabilityChannel(classID string) string {
	return fmt.Sprintf("class:%s:availability", classID)
}

var CacheKey = NewCacheKeyStruct()
