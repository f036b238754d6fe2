package middleware

import (
	"net/http"
	"time"

	adauth "github.com/adverto/adauth"
)

// SetSessionCookie writes the session credential as an HTTP-only cookie
// according to the engine's cookie configuration. MaxAge follows the
// credential's own expiry.
func SetSessionCookie(w http.ResponseWriter, cfg adauth.CookieConfig, result adauth.SessionResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    result.Token,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		Expires:  result.ExpiresAt,
		MaxAge:   int(time.Until(result.ExpiresAt).Seconds()),
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: cfg.SameSite,
	})
}

// ClearSessionCookie expires the session cookie. Logout is purely
// client-side; the credential itself stays valid until its expiry.
func ClearSessionCookie(w http.ResponseWriter, cfg adauth.CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		MaxAge:   -1,
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: cfg.SameSite,
	})
}
