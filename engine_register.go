package adauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adverto/adauth/internal/stores"
)

// RequestRegistration validates a registration attempt, parks the
// pending account behind a verification challenge, and emails the code
// to the address being registered. No durable record is created until
// [Engine.ConfirmRegistration] succeeds.
//
// A failed email dispatch is a hard error: the challenge may already be
// stored but the caller is told the request failed, and a retry simply
// overwrites it.
func (e *Engine) RequestRegistration(ctx context.Context, email, name, pass string) error {
	e.metricInc(MetricRegistrationRequest)

	normalized, err := e.requestRegistration(ctx, email, name, pass)
	if err != nil {
		e.metricInc(MetricRegistrationFailure)
	}
	if normalized == "" {
		normalized = email
	}
	e.emitAudit(ctx, auditEventRegistrationRequest, err == nil, 0, normalized, err, nil)

	return err
}

func (e *Engine) requestRegistration(ctx context.Context, email, name, pass string) (string, error) {
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

	if strings.TrimSpace(name) == "" {
		return normalized, ErrNameRequired
	}
	if len(pass) < e.config.Password.MinLength {
		return normalized, ErrPasswordTooShort
	}

	taken, err := e.users.EmailExists(ctx, normalized)
	if err != nil {
		return normalized, err
	}
	if taken {
		return normalized, ErrEmailTaken
	}

	hash, err := e.passwords.Hash(pass)
	if err != nil {
		return normalized, err
	}

	code, err := e.challenges.Issue(ctx, normalized, stores.Payload{
		Purpose:      stores.PurposeRegistration,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
	}, e.config.Challenge.TTL)
	if err != nil {
		return normalized, err
	}

	return normalized, e.dispatchCode(ctx, normalized, code)
}

// ConfirmRegistration consumes the registration challenge for email,
// creates the durable account from the parked payload, and returns a
// freshly minted session credential. Each issued code confirms at most
// once.
func (e *Engine) ConfirmRegistration(ctx context.Context, email, code string) (SessionResult, error) {
	result, err := e.confirmRegistration(ctx, email, code)
	if err == nil {
		e.metricInc(MetricRegistrationSuccess)
	} else {
		e.metricInc(MetricRegistrationFailure)
		e.observeChallengeFailure(err)
	}
	e.emitAudit(ctx, auditEventRegistrationConfirm, err == nil, result.UserID, email, err, nil)

	return result, err
}

func (e *Engine) confirmRegistration(ctx context.Context, email, code string) (SessionResult, error) {
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

	payload, err := e.challenges.Consume(ctx, normalized, code, stores.PurposeRegistration)
	if err != nil {
		return SessionResult{}, mapChallengeErr(err)
	}

	user, err := e.users.Create(ctx, CreateUserInput{
		Email:        normalized,
		Name:         payload.Name,
		PasswordHash: payload.PasswordHash,
	})
	if err != nil {
		return SessionResult{}, err
	}

	return e.IssueSession(ctx, user)
}

// dispatchCode sends a verification code with the configured timeout.
// Dispatch failures surface as [ErrMailDispatch] with the transport
// error attached.
func (e *Engine) dispatchCode(ctx context.Context, to, code string) error {
	sendCtx, cancel := context.WithTimeout(ctx, e.config.Challenge.DispatchTimeout)
	defer cancel()

	if err := e.mailer.Send(sendCtx, to, code); err != nil {
		e.metricInc(MetricMailDispatchFailure)
		return fmt.Errorf("%w: %v", ErrMailDispatch, err)
	}

	return nil
}

func (e *Engine) observeChallengeFailure(err error) {
	switch {
	case errors.Is(err, ErrChallengeExpired):
		e.metricInc(MetricChallengeExpired)
	case errors.Is(err, ErrChallengeCodeMismatch):
		e.metricInc(MetricChallengeCodeMismatch)
	}
}
