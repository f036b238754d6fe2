package middleware

import (
	"context"
	"net/http"
	"strings"

	adauth "github.com/adverto/adauth"
)

type sessionContextKey struct{}

// SessionFromContext returns the verified session placed on the request
// context by [Guard], or false when the request was anonymous.
func SessionFromContext(ctx context.Context) (*adauth.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*adauth.Session)
	return s, ok
}

// CredentialFromRequest extracts the raw session credential from a
// request: the session cookie first, then an Authorization bearer
// header for machine clients.
func CredentialFromRequest(r *http.Request, cookieName string) (string, bool) {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value, true
	}

	return bearerToken(r.Header.Get("Authorization"))
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
