package adauth

import "errors"

var (
	// ErrEngineNotReady is returned when an Engine method is called before
	// the Builder finished wiring its dependencies.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrInvalidEmail rejects a syntactically malformed email address.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrPasswordTooShort rejects a password below the configured minimum.
	ErrPasswordTooShort = errors.New("password too short")
	// ErrNameRequired rejects a registration with an empty display name.
	ErrNameRequired = errors.New("display name required")
	// ErrEmailTaken rejects a registration or email change for an address
	// another account already owns.
	ErrEmailTaken = errors.New("email already registered")
	// ErrEmailNotRegistered rejects a login-code request for an unknown
	// address.
	ErrEmailNotRegistered = errors.New("email not registered")
	// ErrEmailUnchanged rejects an email change to the current address.
	ErrEmailUnchanged = errors.New("new email equals current email")
	// ErrUserNotFound is returned when a subject id resolves to no account.
	ErrUserNotFound = errors.New("user not found")
	// ErrChallengesDisabled is returned for every challenge operation when
	// the feature is switched off in [ChallengeConfig].
	ErrChallengesDisabled = errors.New("verification challenges disabled")
	// ErrChallengeNotFound means no pending challenge exists for the key.
	ErrChallengeNotFound = errors.New("no pending challenge")
	// ErrChallengeCodeMismatch means the supplied code does not match the
	// pending challenge. The challenge stays consumable with the correct
	// code.
	ErrChallengeCodeMismatch = errors.New("invalid code")
	// ErrChallengeExpired means the challenge outlived its TTL, even when
	// the supplied code matches.
	ErrChallengeExpired = errors.New("challenge expired")
	// ErrMailDispatch is the hard failure surfaced when the outbound code
	// email could not be handed to the dispatcher. No retry is performed.
	ErrMailDispatch = errors.New("verification email dispatch failed")
	// ErrUnauthenticated is the collapsed credential failure exposed at
	// the route-guard boundary.
	ErrUnauthenticated = errors.New("unauthenticated")
)
