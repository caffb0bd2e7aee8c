package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *Bcrypt {
	t.Helper()

	b, err := NewBcrypt(Config{Cost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("NewBcrypt failed: %v", err)
	}
	return b
}

func TestNewBcryptCostBounds(t *testing.T) {
	cases := []struct {
		name    string
		cost    int
		wantErr bool
	}{
		{"minimum", bcrypt.MinCost, false},
		{"maximum", bcrypt.MaxCost, false},
		{"below minimum", bcrypt.MinCost - 1, true},
		{"above maximum", bcrypt.MaxCost + 1, true},
		{"zero", 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBcrypt(Config{Cost: tc.cost})
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestHashAndVerify(t *testing.T) {
	b := newTestHasher(t)

	hash, err := b.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "correct-horse" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected a bcrypt hash, got %q", hash)
	}

	if !b.Verify("correct-horse", hash) {
		t.Fatal("expected the right password to verify")
	}
	if b.Verify("wrong-horse", hash) {
		t.Fatal("expected the wrong password to fail")
	}
}

func TestHashRejectsOverlongPassword(t *testing.T) {
	b := newTestHasher(t)

	if _, err := b.Hash(strings.Repeat("x", 73)); err == nil {
		t.Fatal("expected error for password over 72 bytes")
	}
	if _, err := b.Hash(strings.Repeat("x", 72)); err != nil {
		t.Fatalf("72 bytes must be accepted: %v", err)
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	b := newTestHasher(t)

	for _, bad := range []string{"", "not-a-hash", "$2a$corrupted"} {
		if b.Verify("anything", bad) {
			t.Fatalf("malformed hash %q must verify false", bad)
		}
	}
}
