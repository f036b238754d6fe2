package adauth

import (
	"context"

	"github.com/adverto/adauth/internal/stores"
)

// emailChangeKey namespaces email-change challenges away from the
// registration and login challenges that key on the address itself.
func emailChangeKey(currentEmail string) string {
	return "chg:" + currentEmail
}

// RequestEmailChange issues an email-change challenge for an
// authenticated user and emails the code to the NEW address, proving
// the user controls the inbox they are switching to. The change is not
// applied until [Engine.ConfirmEmailChange].
func (e *Engine) RequestEmailChange(ctx context.Context, userID int64, newEmail string) error {
	e.metricInc(MetricEmailChangeRequest)

	normalized, err := e.requestEmailChange(ctx, userID, newEmail)
	if err != nil {
		e.metricInc(MetricEmailChangeFailure)
	}
	if normalized == "" {
		normalized = newEmail
	}
	e.emitAudit(ctx, auditEventEmailChangeRequest, err == nil, userID, normalized, err, nil)

	return err
}

func (e *Engine) requestEmailChange(ctx context.Context, userID int64, newEmail string) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}
	if !e.config.Challenge.Enabled {
		return "", ErrChallengesDisabled
	}

	normalized, err := normalizeEmail(newEmail)
	if err != nil {
		return "", err
	}

	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		return normalized, err
	}
	if user == nil {
		return normalized, ErrUserNotFound
	}
	if user.Email == normalized {
		return normalized, ErrEmailUnchanged
	}

	taken, err := e.users.EmailExists(ctx, normalized)
	if err != nil {
		return normalized, err
	}
	if taken {
		return normalized, ErrEmailTaken
	}

	code, err := e.challenges.Issue(ctx, emailChangeKey(user.Email), stores.Payload{
		Purpose:  stores.PurposeEmailChange,
		NewEmail: normalized,
	}, e.config.Challenge.TTL)
	if err != nil {
		return normalized, err
	}

	return normalized, e.dispatchCode(ctx, normalized, code)
}

// ConfirmEmailChange consumes the pending email-change challenge for
// userID and rewrites the account's address to the one parked in the
// challenge. The existing session credential stays valid; identity is
// the user ID, not the email.
func (e *Engine) ConfirmEmailChange(ctx context.Context, userID int64, code string) error {
	newEmail, err := e.confirmEmailChange(ctx, userID, code)
	if err == nil {
		e.metricInc(MetricEmailChangeSuccess)
	} else {
		e.metricInc(MetricEmailChangeFailure)
		e.observeChallengeFailure(err)
	}
	e.emitAudit(ctx, auditEventEmailChangeConfirm, err == nil, userID, newEmail, err, nil)

	return err
}

func (e *Engine) confirmEmailChange(ctx context.Context, userID int64, code string) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}
	if !e.config.Challenge.Enabled {
		return "", ErrChallengesDisabled
	}

	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	payload, err := e.challenges.Consume(ctx, emailChangeKey(user.Email), code, stores.PurposeEmailChange)
	if err != nil {
		return "", mapChallengeErr(err)
	}
	if payload.NewEmail == "" {
		return "", ErrChallengeNotFound
	}

	// The target address may have been claimed since the request.
	taken, err := e.users.EmailExists(ctx, payload.NewEmail)
	if err != nil {
		return payload.NewEmail, err
	}
	if taken {
		return payload.NewEmail, ErrEmailTaken
	}

	if err := e.users.UpdateEmail(ctx, userID, payload.NewEmail); err != nil {
		return payload.NewEmail, err
	}

	return payload.NewEmail, nil
}
