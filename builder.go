package adauth

import (
	"errors"
	"log/slog"

	internalaudit "github.com/adverto/adauth/internal/audit"
	"github.com/adverto/adauth/internal/cache"
	"github.com/adverto/adauth/internal/stores"
	"github.com/adverto/adauth/password"
	"github.com/adverto/adauth/token"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Configure it with the With* methods,
// then call [Builder.Build] exactly once.
//
// Builder instances are intended to be configured during initialization
// and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	users     UserStore
	mailer    Mailer
	auditSink AuditSink
	logger    *slog.Logger

	built bool
}

// New returns a Builder preloaded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration wholesale. Callers
// that only tweak a field or two should start from [DefaultConfig].
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// DefaultConfig returns the configuration a fresh [Builder] starts
// with, for callers that want to adjust individual fields.
func DefaultConfig() Config {
	return defaultConfig()
}

// WithRedis sets the Redis client backing the challenge cache. The
// client is required; outages at runtime degrade to the in-process
// fallback, but construction without a client is a configuration error.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithUserStore sets the durable-store collaborator.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.users = store
	return b
}

// WithMailer sets the outbound email collaborator.
func (b *Builder) WithMailer(m Mailer) *Builder {
	b.mailer = m
	return b
}

// WithAuditSink sets the audit sink and enables the audit dispatcher.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithLogger sets the structured logger used for degraded-mode and
// operational warnings. Defaults to [slog.Default].
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration, wires the internal stores, and
// returns a ready Engine. A Builder builds at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.users == nil {
		return nil, errors.New("user store required")
	}
	if cfg.Challenge.Enabled && b.mailer == nil {
		return nil, errors.New("mailer required when challenges are enabled")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	// -------- METRICS --------
	metrics := NewMetrics(cfg.Metrics)

	// -------- CHALLENGE CACHE --------
	cacheStore := cache.NewStore(b.redis, cache.Config{
		KeyPrefix:          cfg.Cache.KeyPrefix,
		OpTimeout:          cfg.Cache.OpTimeout,
		FallbackMaxEntries: cfg.Cache.FallbackMaxEntries,
		Logger:             logger,
		OnFallback: func() {
			metrics.Inc(MetricCacheFallback)
		},
	})

	challenges := stores.NewChallengeStore(
		cacheStore,
		cfg.Challenge.KeyPrefix,
		cfg.Challenge.CodeDigits,
	)

	// -------- TOKEN MANAGER --------
	tokens, err := token.NewManager(token.Config{
		TTL:           cfg.Token.TTL,
		SigningMethod: token.SigningMethod(cfg.Token.SigningMethod),
		Secret:        cfg.Token.Secret,
		PrivateKey:    cfg.Token.PrivateKey,
		PublicKey:     cfg.Token.PublicKey,
		Issuer:        cfg.Token.Issuer,
		Leeway:        cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	// -------- PASSWORD HASHER --------
	hasher, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	// -------- AUDIT DISPATCHER --------
	dispatcher := internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	engine := &Engine{
		config:     cfg,
		cache:      cacheStore,
		challenges: challenges,
		tokens:     tokens,
		passwords:  hasher,
		users:      b.users,
		mailer:     b.mailer,
		audit:      dispatcher,
		metrics:    metrics,
		logger:     logger,
	}

	b.built = true

	return engine, nil
}
