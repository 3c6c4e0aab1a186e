// ABOUTME: Non-authoritative local inspection of the stored auth token
// ABOUTME: Logs JWT expiry state at load time; never drives any decision

package session

import (
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// logTokenState logs the stored token's expiry when it happens to be a JWT.
// The token is opaque to every decision path; only the backend decides
// validity. Opaque tokens log at debug level and nothing more.
func logTokenState(logger *slog.Logger, token string) {
	if token == "" {
		return
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		logger.Debug("stored auth token is opaque (not a JWT)")
		return
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		logger.Debug("stored auth token has no expiry claim")
		return
	}

	if exp.Before(time.Now()) {
		logger.Info("stored auth token looks expired, deferring to backend validation", "expired_at", exp.Time)
	} else {
		logger.Debug("stored auth token expiry", "expires_at", exp.Time)
	}
}
