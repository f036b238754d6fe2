package adauth

import (
	"context"
	"errors"
)

const (
	auditEventRegistrationRequest = "registration_request"
	auditEventRegistrationConfirm = "registration_confirm"
	auditEventLoginCodeRequest    = "login_code_request"
	auditEventLoginConfirm        = "login_confirm"
	auditEventEmailChangeRequest  = "email_change_request"
	auditEventEmailChangeConfirm  = "email_change_confirm"
	auditEventSessionIssued       = "session_issued"
)

// AuditErrorCode is the stable, non-leaking error label recorded on
// audit events in place of raw error strings.
type AuditErrorCode string

const (
	auditErrInvalidEmail      AuditErrorCode = "invalid_email"
	auditErrPasswordPolicy    AuditErrorCode = "password_policy"
	auditErrNameRequired      AuditErrorCode = "name_required"
	auditErrEmailTaken        AuditErrorCode = "email_taken"
	auditErrEmailNotFound     AuditErrorCode = "email_not_registered"
	auditErrEmailUnchanged    AuditErrorCode = "email_unchanged"
	auditErrUserNotFound      AuditErrorCode = "user_not_found"
	auditErrChallengeAbsent   AuditErrorCode = "no_pending_challenge"
	auditErrChallengeMismatch AuditErrorCode = "invalid_code"
	auditErrChallengeExpired  AuditErrorCode = "challenge_expired"
	auditErrDisabled          AuditErrorCode = "challenges_disabled"
	auditErrMailDispatch      AuditErrorCode = "mail_dispatch_failed"
	auditErrUnauthenticated   AuditErrorCode = "unauthenticated"
	auditErrInternal          AuditErrorCode = "internal_error"
)

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidEmail):
		return auditErrInvalidEmail
	case errors.Is(err, ErrPasswordTooShort):
		return auditErrPasswordPolicy
	case errors.Is(err, ErrNameRequired):
		return auditErrNameRequired
	case errors.Is(err, ErrEmailTaken):
		return auditErrEmailTaken
	case errors.Is(err, ErrEmailNotRegistered):
		return auditErrEmailNotFound
	case errors.Is(err, ErrEmailUnchanged):
		return auditErrEmailUnchanged
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrChallengeNotFound):
		return auditErrChallengeAbsent
	case errors.Is(err, ErrChallengeCodeMismatch):
		return auditErrChallengeMismatch
	case errors.Is(err, ErrChallengeExpired):
		return auditErrChallengeExpired
	case errors.Is(err, ErrChallengesDisabled):
		return auditErrDisabled
	case errors.Is(err, ErrMailDispatch):
		return auditErrMailDispatch
	case errors.Is(err, ErrUnauthenticated):
		return auditErrUnauthenticated
	default:
		return auditErrInternal
	}
}

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID int64,
	email string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}
