package adauth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	internalaudit "github.com/adverto/adauth/internal/audit"
	"github.com/adverto/adauth/internal/cache"
	"github.com/adverto/adauth/internal/stores"
	"github.com/adverto/adauth/password"
	"github.com/adverto/adauth/token"
)

// Engine is the authentication core. It owns credential issuance and
// verification, the verification-challenge flows, and the supporting
// audit and metrics plumbing. Construct one with [Builder.Build]; an
// Engine is safe for concurrent use and is intended to live for the
// whole process.
type Engine struct {
	config Config

	cache      *cache.Store
	challenges *stores.ChallengeStore
	tokens     *token.Manager
	passwords  *password.Argon2

	users  UserStore
	mailer Mailer

	audit   *internalaudit.Dispatcher
	metrics *Metrics
	logger  *slog.Logger
}

// ready guards against zero-value engines constructed without
// [Builder.Build].
func (e *Engine) ready() error {
	if e == nil || e.tokens == nil || e.cache == nil || e.users == nil {
		return ErrEngineNotReady
	}
	return nil
}

// Config returns a copy of the engine's effective configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// Close flushes the audit dispatcher. Call it during process shutdown;
// the engine is unusable afterwards only for auditing, all other
// operations keep working.
func (e *Engine) Close() {
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of every counter and the
// Authenticate latency histogram.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	e.metrics.Inc(id)
}

// Authenticate verifies a raw credential string and returns the session
// identity it carries. Every verification failure, whatever its cause,
// is reported as [ErrUnauthenticated]; callers never learn whether a
// credential was malformed, forged, or merely expired.
//
// This is the hot path: it touches no store and no network.
func (e *Engine) Authenticate(tokenStr string) (*Session, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	start := time.Now()

	claims, err := e.tokens.Verify(tokenStr)
	if err != nil {
		e.metricInc(MetricAuthenticateFailure)
		return nil, ErrUnauthenticated
	}

	e.metricInc(MetricAuthenticateSuccess)
	e.metrics.Observe(MetricAuthenticateLatency, time.Since(start))

	return &Session{
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}

// IssueSession mints a fresh credential for an already-verified user.
// The flows call this internally after a successful confirmation; it is
// exported for callers that complete verification through their own
// side channel.
func (e *Engine) IssueSession(ctx context.Context, user UserRecord) (SessionResult, error) {
	if err := e.ready(); err != nil {
		return SessionResult{}, err
	}

	tokenStr, expiresAt, err := e.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return SessionResult{}, err
	}

	e.metricInc(MetricTokenIssued)
	e.emitAudit(ctx, auditEventSessionIssued, true, user.ID, user.Email, nil, nil)

	return SessionResult{
		Token:     tokenStr,
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: expiresAt,
	}, nil
}

// mapChallengeErr translates store-level challenge errors to the public
// sentinels.
func mapChallengeErr(err error) error {
	switch {
	case errors.Is(err, stores.ErrChallengeNotFound):
		return ErrChallengeNotFound
	case errors.Is(err, stores.ErrChallengePurposeMismatch):
		// A code confirmed through the wrong flow destroys the
		// challenge; the caller only learns that none is pending.
		return ErrChallengeNotFound
	case errors.Is(err, stores.ErrChallengeCodeMismatch):
		return ErrChallengeCodeMismatch
	case errors.Is(err, stores.ErrChallengeExpired):
		return ErrChallengeExpired
	default:
		return err
	}
}
