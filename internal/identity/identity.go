// Package identity resolves each incoming read/interaction event to
// either a durable user account or an anonymous fingerprint. The two
// kinds are never conflated: a logged-in session always wins, and prior
// anonymous history is not merged into the account.
package identity

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"horizon/internal/models"

	"github.com/gin-gonic/gin"
)

// UserKey is the gin context key the session middleware stores the
// loaded *models.User under.
const UserKey = "user"

// ErrMissingIdentity is returned when a request carries neither an
// authenticated session nor an anonymous token.
var ErrMissingIdentity = errors.New("missing identity: no session and no anonymous token")

// ReaderIdentity is a resolution result, not a stored entity. Exactly
// one of UserID / AnonID is set.
type ReaderIdentity struct {
	UserID uint
	AnonID string
}

func (r ReaderIdentity) LoggedIn() bool {
	return r.UserID != 0
}

// Resolve maps a request to a ReaderIdentity. An authenticated session
// takes precedence even when an anonymous token is also supplied; the
// anonymous token is accepted verbatim (it is client-generated and must
// stay stable across sessions).
func Resolve(c *gin.Context, anonID string) (ReaderIdentity, error) {
	if v, exists := c.Get(UserKey); exists {
		if user, ok := v.(*models.User); ok && user != nil {
			return ReaderIdentity{UserID: user.ID}, nil
		}
	}
	if anonID != "" {
		return ReaderIdentity{AnonID: anonID}, nil
	}
	return ReaderIdentity{}, ErrMissingIdentity
}

// CurrentUser returns the session user, if any.
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(UserKey); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// ClientIP extracts the caller address. The service sits behind a
// reverse proxy, so the first entry of X-Forwarded-For is preferred
// over the direct connection address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
