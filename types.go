package adauth

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/adverto/adauth/internal/audit"
)

// UserRecord is the subject record returned by [UserStore]. The email
// claim carried in credentials is taken from here at issue time and is
// display/audit data only.
type UserRecord struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
}

// CreateUserInput is the input for [UserStore.Create]. The password is
// already hashed when it reaches the durable store.
type CreateUserInput struct {
	Email        string
	Name         string
	PasswordHash string
}

// UserStore is the durable-store collaborator. adauth never opens a
// database itself; the surrounding application implements this interface
// over its relational store.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*UserRecord, error)
	FindByID(ctx context.Context, id int64) (*UserRecord, error)
	Create(ctx context.Context, input CreateUserInput) (UserRecord, error)
	UpdateEmail(ctx context.Context, id int64, email string) error
	EmailExists(ctx context.Context, email string) (bool, error)
}

// Mailer is the outbound email collaborator. Send delivers a verification
// code to an address; a non-nil error is surfaced to the requesting caller
// as a hard failure with no retry from this core.
type Mailer interface {
	Send(ctx context.Context, to, code string) error
}

// Session is the verified identity extracted from a credential. Email is
// carried for display and audit only, never for authorization decisions.
type Session struct {
	UserID int64
	Email  string
}

// SessionResult is returned when a flow completes and a credential is
// minted (registration and login confirmation).
type SessionResult struct {
	Token     string
	UserID    int64
	Email     string
	ExpiresAt time.Time
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit
// dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
