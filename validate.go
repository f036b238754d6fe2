package adauth

import (
	"net/mail"
	"strings"
)

// normalizeEmail lowercases and trims an address so equality checks and
// challenge keys are canonical. It returns [ErrInvalidEmail] when the
// address does not parse as a bare RFC 5322 addr-spec.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}

	return email, nil
}
