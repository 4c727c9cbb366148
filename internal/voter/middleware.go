package voter

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vialocal/contact-trust-backend/pkg/fingerprint"
)

const (
	// CookieName holds the returning visitor's stable identity.
	CookieName   = "voter-id"
	CookieMaxAge = 365 * 24 * 60 * 60

	// IdentityKey is the gin context key carrying the resolved identity.
	IdentityKey = "voterIdentity"
)

// IsValidUUID reports whether s parses as a UUID.
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// EnsureVoterCookieMiddleware makes sure the browser carries a well-formed
// voter-id cookie, issuing a fresh UUID v7 when it is missing or malformed.
func EnsureVoterCookieMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		voterID, err := c.Cookie(CookieName)

		if err != nil || !IsValidUUID(voterID) {
			if err != nil && err != http.ErrNoCookie {
				zap.S().Debugw("replacing invalid voter cookie", "error", err)
			}
			newID, err := uuid.NewV7()
			if err != nil {
				zap.S().Errorw("failed to generate voter id", "error", err)
			} else {
				c.SetCookie(CookieName, newID.String(), CookieMaxAge, "/", "", false, true)
			}
		}

		c.Next()
	}
}

// LoadVoterMiddleware resolves the caller's voter identity and stores it in
// the gin context. A valid cookie wins; otherwise the identity falls back to
// the anonymous fingerprint, which stays stable across the cooldown window.
// Either way the engine downstream treats the identity as opaque.
func LoadVoterMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		voterID, err := c.Cookie(CookieName)
		if err != nil || !IsValidUUID(voterID) {
			voterID = fingerprint.Derive(c.ClientIP(), c.Request.UserAgent())
		}
		c.Set(IdentityKey, voterID)
		c.Next()
	}
}

// IdentityFromContext returns the identity resolved by LoadVoterMiddleware,
// or "" when the middleware did not run.
func IdentityFromContext(c *gin.Context) string {
	identity, _ := c.Get(IdentityKey)
	s, _ := identity.(string)
	return s
}
