package internal

import "testing"

func TestNewCodeLengthAndCharset(t *testing.T) {
	for _, digits := range []int{4, 6, 10} {
		code, err := NewCode(digits)
		if err != nil {
			t.Fatalf("NewCode(%d) failed: %v", digits, err)
		}
		if len(code) != digits {
			t.Fatalf("expected %d digits, got %q", digits, code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("expected numeric code, got %q", code)
			}
		}
	}
}

func TestNewCodeRejectsOutOfRangeDigits(t *testing.T) {
	for _, digits := range []int{0, 3, 11, -1} {
		if _, err := NewCode(digits); err == nil {
			t.Fatalf("expected error for %d digits", digits)
		}
	}
}

func TestNewCodeVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		code, err := NewCode(8)
		if err != nil {
			t.Fatalf("NewCode failed: %v", err)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatal("expected varying codes")
	}
}
