package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	digest, err := h.Hash("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(digest, "$2a$") {
		t.Errorf("digest should be bcrypt, got %q", digest)
	}
	if !h.Verify("correct-horse-battery-staple", digest) {
		t.Error("Verify() should return true for correct password")
	}
	if h.Verify("wrong-password", digest) {
		t.Error("Verify() should return false for wrong password")
	}
}

func TestHasher_PasswordLength(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	limit := strings.Repeat("p", MaxPasswordBytes)
	digest, err := h.Hash(limit)
	if err != nil {
		t.Fatalf("Hash(72 bytes) error = %v", err)
	}
	if !h.Verify(limit, digest) {
		t.Error("Verify() should accept a 72-byte password")
	}

	// Multi-byte runes count by bytes, not characters.
	for _, pw := range []string{strings.Repeat("p", MaxPasswordBytes+1), strings.Repeat("é", 37)} {
		if _, err := h.Hash(pw); !errors.Is(err, ErrPasswordTooLong) {
			t.Errorf("Hash(%d bytes) error = %v, want ErrPasswordTooLong", len(pw), err)
		}
	}
}

func TestHasher_UniqueSalts(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	d1, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	d2, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if d1 == d2 {
		t.Error("two hashes of the same password should differ")
	}
}

func TestHasher_MalformedDigest(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, digest := range []string{"", "not-a-hash", "$2a$04$short"} {
		if h.Verify("anything", digest) {
			t.Errorf("Verify() with digest %q should be false", digest)
		}
	}
}

func TestNewHasher_CostBounds(t *testing.T) {
	tests := []struct {
		cost int
		want int
	}{
		{cost: 0, want: bcrypt.DefaultCost},
		{cost: 3, want: bcrypt.DefaultCost},
		{cost: 4, want: 4},
		{cost: 12, want: 12},
		{cost: 32, want: bcrypt.DefaultCost},
	}
	for _, tt := range tests {
		if got := NewHasher(tt.cost).Cost(); got != tt.want {
			t.Errorf("NewHasher(%d).Cost() = %d, want %d", tt.cost, got, tt.want)
		}
	}
}
