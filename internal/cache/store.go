package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrBackendUnavailable reports that the primary backend could not be
// reached; the caller should run its degraded-mode equivalent.
var ErrBackendUnavailable = errors.New("cache backend unavailable")

// Config carries store tuning. OpTimeout bounds every Redis round-trip;
// FallbackMaxEntries caps the degraded map so an extended outage cannot
// grow it without bound.
type Config struct {
	KeyPrefix          string
	OpTimeout          time.Duration
	FallbackMaxEntries int
	Logger             *slog.Logger
	OnFallback         func()
}

// Store is a TTL key-value store. Set overwrites and resets the TTL; Get
// on an expired or missing key reports absence, never an error. All
// methods are safe for concurrent use.
type Store struct {
	redis      redis.UniversalClient
	prefix     string
	opTimeout  time.Duration
	logger     *slog.Logger
	fallback   *memoryStore
	onFallback func()
}

func NewStore(client redis.UniversalClient, cfg Config) *Store {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "adauth"
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 2 * time.Second
	}
	if cfg.FallbackMaxEntries <= 0 {
		cfg.FallbackMaxEntries = 10_000
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.OnFallback == nil {
		cfg.OnFallback = func() {}
	}

	return &Store{
		redis:      client,
		prefix:     cfg.KeyPrefix,
		opTimeout:  cfg.OpTimeout,
		logger:     cfg.Logger,
		fallback:   newMemoryStore(cfg.FallbackMaxEntries),
		onFallback: cfg.OnFallback,
	}
}

func (s *Store) key(k string) string {
	return s.prefix + ":" + k
}

// Set stores value under key with the given TTL, replacing any prior
// entry. A failed Redis write degrades to the in-memory fallback and is
// logged rather than surfaced; only context cancellation is returned.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	err := s.redis.Set(opCtx, s.key(key), value, ttl).Err()
	if err == nil {
		// Drop any stale degraded-mode copy so it cannot shadow this write.
		s.fallback.delete(key)
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	s.degrade("set", key, err)
	s.fallback.set(key, value, ttl)
	return nil
}

// Get returns the value for key, or ok=false when the key is missing or
// expired. Redis failures consult the fallback instead of erroring.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	value, err := s.redis.Get(opCtx, s.key(key)).Bytes()
	switch {
	case err == nil:
		return value, true
	case errors.Is(err, redis.Nil):
		// Absent from the primary; the entry may still live in the
		// degraded map if it was written during an outage.
		return s.fallback.get(key)
	default:
		s.degrade("get", key, err)
		return s.fallback.get(key)
	}
}

// Delete removes key from the primary and the fallback. Removal from
// both keeps single-use consumption exact across a backend recovery.
func (s *Store) Delete(ctx context.Context, key string) error {
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	err := s.redis.Del(opCtx, s.key(key)).Err()
	s.fallback.delete(key)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	s.degrade("del", key, err)
	return nil
}

// RunScript executes script against the primary with key as KEYS[1],
// bounded by the per-op timeout. Error replies raised by the script
// itself pass through unchanged; a transport failure degrades (logged,
// counted) and reports [ErrBackendUnavailable].
func (s *Store) RunScript(ctx context.Context, script *redis.Script, key string, args ...interface{}) (interface{}, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	result, err := script.Run(opCtx, s.redis, []string{s.key(key)}, args...).Result()
	if err == nil {
		return result, nil
	}

	var reply redis.Error
	if errors.As(err, &reply) {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	s.degrade("eval", key, err)
	return nil, ErrBackendUnavailable
}

// MutateFallback runs fn over the degraded-map entry for key in a single
// critical section. fn receives the current value (ok=false when absent
// or expired) and reports whether the entry should be deleted. It runs
// under the store lock and must not block.
func (s *Store) MutateFallback(key string, fn func(value []byte, ok bool) (deleteEntry bool)) {
	s.fallback.mutate(key, fn)
}

func (s *Store) degrade(op, key string, err error) {
	s.onFallback()
	s.logger.Warn("cache backend unreachable, using in-process fallback",
		slog.String("op", op),
		slog.String("key", s.key(key)),
		slog.String("backend", "redis"),
		slog.String("error", err.Error()),
	)
}
