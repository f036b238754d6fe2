package password

import (
	"strings"
	"testing"
)

func newTestHasher(t *testing.T) *Argon2 {
	t.Helper()

	h, err := NewArgon2(Config{
		Memory:      16 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}
	return h
}

func TestHashVerifyRoundtrip(t *testing.T) {
	h := newTestHasher(t)

	hash, err := h.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("expected PHC argon2id format, got %q", hash)
	}

	ok, err := h.Verify("correct-horse-battery", hash)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Fatal("expected password to verify")
	}

	ok, err = h.Verify("wrong-password", hash)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not verify")
	}
}

func TestHashIsSalted(t *testing.T) {
	h := newTestHasher(t)

	a, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	b, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if a == b {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestVerifyAcrossParameterChange(t *testing.T) {
	h := newTestHasher(t)

	hash, err := h.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// Verification reads the parameters from the encoded hash, so a
	// hasher with different settings still verifies old hashes.
	stronger, err := NewArgon2(Config{
		Memory:      32 * 1024,
		Time:        2,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}

	ok, err := stronger.Verify("correct-horse-battery", hash)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Fatal("expected verification across parameter change")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := newTestHasher(t)

	for _, bad := range []string{"", "not-a-hash", "$argon2id$v=19$truncated"} {
		if _, err := h.Verify("password", bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestNewArgon2RejectsWeakParameters(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"tiny memory", Config{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}},
		{"zero time", Config{Memory: 16 * 1024, Time: 0, Parallelism: 1, SaltLength: 16, KeyLength: 32}},
		{"zero parallelism", Config{Memory: 16 * 1024, Time: 1, Parallelism: 0, SaltLength: 16, KeyLength: 32}},
		{"short salt", Config{Memory: 16 * 1024, Time: 1, Parallelism: 1, SaltLength: 8, KeyLength: 32}},
		{"short key", Config{Memory: 16 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 8}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewArgon2(tc.cfg); err == nil {
				t.Fatal("expected construction error")
			}
		})
	}
}
