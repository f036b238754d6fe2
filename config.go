package adauth

import (
	"errors"
	"net/http"
	"time"
)

// Config carries every tunable of the authentication core. Instances are
// intended to be configured before [Builder.Build] and then treated as
// immutable.
type Config struct {
	Token     TokenConfig
	Cookie    CookieConfig
	Challenge ChallengeConfig
	Cache     CacheConfig
	Password  PasswordConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls the session credential. HS256 with a single
// server-held secret is the default; "ed25519" switches to an asymmetric
// keypair for installations that verify tokens outside this process.
type TokenConfig struct {
	TTL           time.Duration
	SigningMethod string // "hs256" (default), "ed25519" optional
	Secret        []byte // hs256 signing secret
	PrivateKey    []byte // ed25519 only
	PublicKey     []byte // ed25519 only
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig controls the browser transport of the session credential.
// The cookie is always HTTP-only; machine clients may use a bearer header
// instead and ignore this section entirely.
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

/*
====================================
CHALLENGE CONFIG
====================================
*/

// ChallengeConfig controls verification challenges (registration, login,
// email change). Disabling the section rejects every code request and
// confirmation with [ErrChallengesDisabled].
type ChallengeConfig struct {
	Enabled         bool
	CodeDigits      int
	TTL             time.Duration
	KeyPrefix       string
	DispatchTimeout time.Duration
}

/*
====================================
CACHE CONFIG
====================================
*/

// CacheConfig controls the TTL store backing the challenge registry.
// OpTimeout bounds every Redis round-trip; a round-trip that fails or
// times out degrades that operation to the in-process fallback map.
type CacheConfig struct {
	KeyPrefix          string
	OpTimeout          time.Duration
	FallbackMaxEntries int
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig carries the Argon2id parameters plus the plaintext
// length policy enforced before hashing.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	MinLength   int
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters and the Authenticate
// latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:           24 * time.Hour,
			SigningMethod: "hs256",
			Leeway:        30 * time.Second,
		},
		Cookie: CookieConfig{
			Name:     "adv_session",
			Path:     "/",
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		},
		Challenge: ChallengeConfig{
			Enabled:         true,
			CodeDigits:      6,
			TTL:             10 * time.Minute,
			KeyPrefix:       "avc",
			DispatchTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			KeyPrefix:          "adauth",
			OpTimeout:          2 * time.Second,
			FallbackMaxEntries: 10_000,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			MinLength:   8,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks cross-field consistency. It is called by
// [Builder.Build]; direct use is only needed when a Config travels
// through caller-side plumbing first.
func (c *Config) Validate() error {
	if c.Token.TTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("token leeway out of range")
	}
	switch c.Token.SigningMethod {
	case "", "hs256":
		if len(c.Token.Secret) < 32 {
			return errors.New("hs256 requires a secret of at least 32 bytes")
		}
	case "ed25519":
		if len(c.Token.PrivateKey) == 0 || len(c.Token.PublicKey) == 0 {
			return errors.New("ed25519 requires a private and public key")
		}
	default:
		return errors.New("unsupported token signing method")
	}
	if c.Cookie.Name == "" {
		return errors.New("cookie name required")
	}
	if c.Challenge.Enabled {
		if c.Challenge.CodeDigits < 4 || c.Challenge.CodeDigits > 10 {
			return errors.New("challenge code digits must be between 4 and 10")
		}
		if c.Challenge.TTL <= 0 {
			return errors.New("challenge TTL must be positive")
		}
		if c.Challenge.DispatchTimeout <= 0 {
			return errors.New("challenge dispatch timeout must be positive")
		}
	}
	if c.Cache.OpTimeout <= 0 {
		return errors.New("cache op timeout must be positive")
	}
	if c.Cache.FallbackMaxEntries <= 0 {
		return errors.New("cache fallback capacity must be positive")
	}
	if c.Password.MinLength < 1 {
		return errors.New("password minimum length must be positive")
	}

	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = cloneBytes(cfg.Token.Secret)
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
