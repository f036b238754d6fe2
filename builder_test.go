package adauth

import (
	"context"
	"errors"
	"testing"
)

func TestZeroValueEngineNotReady(t *testing.T) {
	var e Engine

	if _, err := e.Authenticate("token"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
	if _, err := e.IssueSession(context.Background(), UserRecord{ID: 1}); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
	if err := e.RequestLoginCode(context.Background(), "a@example.com"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
}

func TestBuildRequiresRedis(t *testing.T) {
	_, err := New().
		WithConfig(testConfig()).
		WithUserStore(newMockUserStore()).
		WithMailer(&mockMailer{}).
		Build()
	if err == nil {
		t.Fatal("expected error without redis client")
	}
}

func TestBuildRequiresUserStore(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	_, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithMailer(&mockMailer{}).
		Build()
	if err == nil {
		t.Fatal("expected error without user store")
	}
}

func TestBuildRequiresMailerWhenChallengesEnabled(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	_, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithUserStore(newMockUserStore()).
		Build()
	if err == nil {
		t.Fatal("expected error without mailer")
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := testConfig()
	cfg.Token.Secret = nil

	_, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserStore(newMockUserStore()).
		WithMailer(&mockMailer{}).
		Build()
	if err == nil {
		t.Fatal("expected config validation error")
	}
}

func TestBuilderBuildsAtMostOnce(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	b := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithUserStore(newMockUserStore()).
		WithMailer(&mockMailer{})

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestWithConfigClonesKeyMaterial(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := testConfig()
	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserStore(newMockUserStore()).
		WithMailer(&mockMailer{}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	// Mutating the caller's secret after Build must not affect issuance.
	cfg.Token.Secret[0] = 'x'

	result, err := engine.IssueSession(context.Background(), UserRecord{ID: 1, Email: "a@example.com"})
	if err != nil {
		t.Fatalf("IssueSession failed: %v", err)
	}
	if _, err := engine.Authenticate(result.Token); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
}
