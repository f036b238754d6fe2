package middleware

import (
	"net"
	"net/http"

	adauth "github.com/adverto/adauth"
)

// ClientIP records the remote address on the request context so audit
// events emitted by the engine carry it. Place it before any proxy
// rewriting middleware has already fixed up RemoteAddr.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		ctx := adauth.WithClientIP(r.Context(), host)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
