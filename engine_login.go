package adauth

import (
	"context"

	"github.com/adverto/adauth/internal/stores"
)

// RequestLoginCode issues a login challenge for a registered address and
// emails the code to it. The address must already belong to an account;
// unknown addresses are rejected with [ErrEmailNotRegistered] rather
// than silently accepted, matching the product's sign-in form which
// reveals registration status anyway.
func (e *Engine) RequestLoginCode(ctx context.Context, email string) error {
	e.metricInc(MetricLoginCodeRequest)

	normalized, err := e.requestLoginCode(ctx, email)
	if err != nil {
		e.metricInc(MetricLoginFailure)
	}
	if normalized == "" {
		normalized = email
	}
	e.emitAudit(ctx, auditEventLoginCodeRequest, err == nil, 0, normalized, err, nil)

	return err
}

func (e *Engine) requestLoginCode(ctx context.Context, email string) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}
	if !e.config.Challenge.Enabled {
		return "", ErrChallengesDisabled
	}

	normalized, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}

	user, err := e.users.FindByEmail(ctx, normalized)
	if err != nil {
		return normalized, err
	}
	if user == nil {
		return normalized, ErrEmailNotRegistered
	}

	code, err := e.challenges.Issue(ctx, normalized, stores.Payload{
		Purpose: stores.PurposeLogin,
	}, e.config.Challenge.TTL)
	if err != nil {
		return normalized, err
	}

	return normalized, e.dispatchCode(ctx, normalized, code)
}

// ConfirmLogin consumes the login challenge for email and returns a
// fresh session credential for the matching account.
func (e *Engine) ConfirmLogin(ctx context.Context, email, code string) (SessionResult, error) {
	result, err := e.confirmLogin(ctx, email, code)
	if err == nil {
		e.metricInc(MetricLoginSuccess)
	} else {
		e.metricInc(MetricLoginFailure)
		e.observeChallengeFailure(err)
	}
	e.emitAudit(ctx, auditEventLoginConfirm, err == nil, result.UserID, email, err, nil)

	return result, err
}

func (e *Engine) confirmLogin(ctx context.Context, email, code string) (SessionResult, error) {
	if err := e.ready(); err != nil {
		return SessionResult{}, err
	}
	if !e.config.Challenge.Enabled {
		return SessionResult{}, ErrChallengesDisabled
	}

	normalized, err := normalizeEmail(email)
	if err != nil {
		return SessionResult{}, err
	}

	if _, err := e.challenges.Consume(ctx, normalized, code, stores.PurposeLogin); err != nil {
		return SessionResult{}, mapChallengeErr(err)
	}

	user, err := e.users.FindByEmail(ctx, normalized)
	if err != nil {
		return SessionResult{}, err
	}
	if user == nil {
		// Account removed between request and confirm.
		return SessionResult{}, ErrEmailNotRegistered
	}

	return e.IssueSession(ctx, *user)
}
