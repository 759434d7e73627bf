package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sensoryplay/portal-backend/internal/response"
	"github.com/sensoryplay/portal-backend/internal/service"
)

// CheckActiveSession rejects tokens whose session was signed out or revoked
// by a password reset. Must run after RequireJWT.
func CheckActiveSession(auth Authenticator, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if err := auth.CheckSession(c.Request.Context(), claims); err != nil {
			if errors.Is(err, service.ErrSessionNotFound) {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
				return
			}
			log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("session lookup failed")
			response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}

		c.Next()
	}
}
