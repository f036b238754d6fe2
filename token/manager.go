package token

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects the credential signature scheme.
type SigningMethod string

const (
	// MethodHS256 signs with a single server-held secret (default).
	MethodHS256 SigningMethod = "hs256"
	// MethodEd25519 signs with an asymmetric keypair for installations
	// that verify credentials outside this process.
	MethodEd25519 SigningMethod = "ed25519"
)

var (
	// ErrMalformedToken rejects a credential that is not a parseable JWT.
	ErrMalformedToken = errors.New("malformed token")
	// ErrBadSignature rejects a credential whose payload was tampered
	// with or signed under a different key.
	ErrBadSignature = errors.New("bad token signature")
	// ErrExpiredToken rejects a structurally valid credential past its
	// expiry instant.
	ErrExpiredToken = errors.New("expired token")
)

// Config is the Manager's key material and validity window. Instances
// are configured during initialization and then treated as immutable.
type Config struct {
	TTL           time.Duration
	SigningMethod SigningMethod
	Secret        []byte
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

// Manager issues and verifies session credentials. Safe for concurrent
// use after construction.
type Manager struct {
	config Config
}

// Claims is the credential payload: the integer subject id and an email
// claim carried for display and audit only.
type Claims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"eml,omitempty"`
	jwt.RegisteredClaims
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	switch cfg.SigningMethod {
	case MethodHS256, "":
		cfg.SigningMethod = MethodHS256
		if len(cfg.Secret) == 0 {
			return nil, errors.New("hs256 requires a secret")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) != ed25519.PrivateKeySize {
			return nil, errors.New("invalid ed25519 private key")
		}
		if len(cfg.PublicKey) != ed25519.PublicKeySize {
			return nil, errors.New("invalid ed25519 public key")
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Manager{config: cfg}, nil
}

// TTL reports the configured validity window.
func (m *Manager) TTL() time.Duration {
	return m.config.TTL
}

// Issue mints a credential for the subject with a fixed validity window
// from now. No side effects; the server keeps no record of it.
func (m *Manager) Issue(userID int64, email string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.config.TTL)

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    m.config.Issuer,
		},
	}

	tok := jwt.NewWithClaims(m.method(), claims)
	signed, err := tok.SignedString(m.signKey())
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Verify parses and validates a credential, returning its claims or one
// of [ErrMalformedToken], [ErrBadSignature], [ErrExpiredToken]. Callers
// collapse the three to unauthenticated; the distinction exists for
// diagnostics.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method().Alg()}),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.verifyKey(), nil
	})
	if err != nil {
		return nil, mapParseError(err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrMalformedToken
	}

	return claims, nil
}

func (m *Manager) method() jwt.SigningMethod {
	if m.config.SigningMethod == MethodEd25519 {
		return jwt.SigningMethodEdDSA
	}
	return jwt.SigningMethodHS256
}

func (m *Manager) signKey() interface{} {
	if m.config.SigningMethod == MethodEd25519 {
		return ed25519.PrivateKey(m.config.PrivateKey)
	}
	return m.config.Secret
}

func (m *Manager) verifyKey() interface{} {
	if m.config.SigningMethod == MethodEd25519 {
		return ed25519.PublicKey(m.config.PublicKey)
	}
	return m.config.Secret
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrBadSignature
	default:
		return ErrMalformedToken
	}
}
