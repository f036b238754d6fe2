package middleware

import (
	"context"
	"net/http"
	"strings"

	adauth "github.com/adverto/adauth"
)

// RouteTable declares which path prefixes require a session and which
// are reserved for anonymous visitors. Paths matching neither list are
// public: the guard still resolves the session when a credential is
// present but never blocks.
type RouteTable struct {
	// Protected prefixes require a verified session; anonymous requests
	// are redirected to SignInPath.
	Protected []string
	// AuthOnly prefixes are for anonymous visitors (sign-in, sign-up);
	// authenticated requests are redirected to HomePath.
	AuthOnly []string

	SignInPath string
	HomePath   string
}

func (t RouteTable) matches(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}

// Guard returns middleware enforcing the route table. A verified
// session is placed on the request context for downstream handlers;
// invalid or absent credentials on protected routes redirect to the
// sign-in page rather than erroring, matching browser expectations.
func Guard(engine *adauth.Engine, routes RouteTable) func(http.Handler) http.Handler {
	signIn := routes.SignInPath
	if signIn == "" {
		signIn = "/signin"
	}
	home := routes.HomePath
	if home == "" {
		home = "/"
	}
	cookieName := engine.Config().Cookie.Name

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var session *adauth.Session

			if raw, ok := CredentialFromRequest(r, cookieName); ok {
				// Any verification failure is treated as anonymous.
				session, _ = engine.Authenticate(raw)
			}

			path := r.URL.Path

			if session == nil && routes.matches(routes.Protected, path) {
				http.Redirect(w, r, signIn, http.StatusSeeOther)
				return
			}
			if session != nil && routes.matches(routes.AuthOnly, path) {
				http.Redirect(w, r, home, http.StatusSeeOther)
				return
			}

			if session != nil {
				ctx := context.WithValue(r.Context(), sessionContextKey{}, session)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}
