package adauth

import (
	"context"
	"errors"
	"testing"
)

func TestLoginFlowSuccess(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := newMockUserStore()
	alice := store.seed(UserRecord{Email: "alice@example.com", Name: "Alice"})
	mailer := &mockMailer{}
	engine := newTestEngine(t, rdb, store, mailer)
	defer engine.Close()

	if err := engine.RequestLoginCode(ctx, "ALICE@example.com"); err != nil {
		t.Fatalf("RequestLoginCode failed: %v", err)
	}
	if got := mailer.lastTo(t); got != "alice@example.com" {
		t.Fatalf("expected code sent to account address, got %q", got)
	}

	result, err := engine.ConfirmLogin(ctx, "alice@example.com", mailer.lastCode(t))
	if err != nil {
		t.Fatalf("ConfirmLogin failed: %v", err)
	}
	if result.UserID != alice.ID {
		t.Fatalf("expected user %d, got %d", alice.ID, result.UserID)
	}

	session, err := engine.Authenticate(result.Token)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if session.UserID != alice.ID {
		t.Fatalf("unexpected session subject %d", session.UserID)
	}
}

func TestLoginUnknownEmailRejected(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	mailer := &mockMailer{}
	engine := newTestEngine(t, rdb, newMockUserStore(), mailer)
	defer engine.Close()

	if err := engine.RequestLoginCode(ctx, "ghost@example.com"); !errors.Is(err, ErrEmailNotRegistered) {
		t.Fatalf("expected ErrEmailNotRegistered, got %v", err)
	}
	if mailer.sentCount() != 0 {
		t.Fatal("no mail should be sent for unknown addresses")
	}
}

func TestLoginWrongCodeIsRetryable(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := newMockUserStore()
	store.seed(UserRecord{Email: "alice@example.com", Name: "Alice"})
	mailer := &mockMailer{}
	engine := newTestEngine(t, rdb, store, mailer)
	defer engine.Close()

	if err := engine.RequestLoginCode(ctx, "alice@example.com"); err != nil {
		t.Fatalf("RequestLoginCode failed: %v", err)
	}
	code := mailer.lastCode(t)

	wrong := "999999"
	if wrong == code {
		wrong = "999998"
	}

	if _, err := engine.ConfirmLogin(ctx, "alice@example.com", wrong); !errors.Is(err, ErrChallengeCodeMismatch) {
		t.Fatalf("expected ErrChallengeCodeMismatch, got %v", err)
	}
	if _, err := engine.ConfirmLogin(ctx, "alice@example.com", code); err != nil {
		t.Fatalf("correct code should confirm after a wrong attempt: %v", err)
	}
}

func TestLoginReissueInvalidatesPriorCode(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := newMockUserStore()
	store.seed(UserRecord{Email: "alice@example.com", Name: "Alice"})
	mailer := &mockMailer{}
	engine := newTestEngine(t, rdb, store, mailer)
	defer engine.Close()

	if err := engine.RequestLoginCode(ctx, "alice@example.com"); err != nil {
		t.Fatalf("first RequestLoginCode failed: %v", err)
	}
	first := mailer.lastCode(t)

	if err := engine.RequestLoginCode(ctx, "alice@example.com"); err != nil {
		t.Fatalf("second RequestLoginCode failed: %v", err)
	}
	second := mailer.lastCode(t)

	if first == second {
		t.Skip("codes collided; cannot distinguish reissue")
	}

	// The stale code mismatches rather than reading as expired; only one
	// challenge record exists per address.
	if _, err := engine.ConfirmLogin(ctx, "alice@example.com", first); !errors.Is(err, ErrChallengeCodeMismatch) {
		t.Fatalf("expected ErrChallengeCodeMismatch for stale code, got %v", err)
	}
	if _, err := engine.ConfirmLogin(ctx, "alice@example.com", second); err != nil {
		t.Fatalf("fresh code should confirm: %v", err)
	}
}

func TestLoginConfirmWithoutRequest(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := newMockUserStore()
	store.seed(UserRecord{Email: "alice@example.com", Name: "Alice"})
	engine := newTestEngine(t, rdb, store, &mockMailer{})
	defer engine.Close()

	if _, err := engine.ConfirmLogin(ctx, "alice@example.com", "123456"); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound, got %v", err)
	}
}

func TestLoginChallengePurposeIsolation(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	store := newMockUserStore()
	store.seed(UserRecord{Email: "taken@example.com", Name: "Bob"})
	mailer := &mockMailer{}
	engine := newTestEngine(t, rdb, store, mailer)
	defer engine.Close()

	// A registration challenge for a fresh address must not confirm a
	// login for it.
	if err := engine.RequestRegistration(ctx, "alice@example.com", "Alice", "correct-horse"); err != nil {
		t.Fatalf("RequestRegistration failed: %v", err)
	}
	code := mailer.lastCode(t)

	if _, err := engine.ConfirmLogin(ctx, "alice@example.com", code); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("expected purpose mismatch to read as absent, got %v", err)
	}

	// The cross-flow attempt destroys the challenge outright; the parked
	// registration cannot confirm afterwards even through its own flow.
	if _, err := engine.ConfirmRegistration(ctx, "alice@example.com", code); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("expected destroyed challenge to read as absent, got %v", err)
	}
}
