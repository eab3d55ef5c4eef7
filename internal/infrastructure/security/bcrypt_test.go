package security

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcryptHasher: %v", err)
	}

	for _, pwd := range []string{"secret1", "p@ss word", "ünïcødé-123"} {
		digest, err := h.Hash(pwd)
		if err != nil {
			t.Fatalf("Hash(%q): %v", pwd, err)
		}
		if digest == pwd {
			t.Fatalf("digest equals plaintext")
		}
		ok, err := h.Verify(pwd, digest)
		if err != nil || !ok {
			t.Fatalf("Verify(%q) = %v, %v", pwd, ok, err)
		}
		ok, err = h.Verify(pwd+"x", digest)
		if err != nil || ok {
			t.Fatalf("Verify(wrong) = %v, %v", ok, err)
		}
	}
}

func TestBcryptHasher_Salted(t *testing.T) {
	h, _ := NewBcryptHasher(bcrypt.MinCost)
	a, _ := h.Hash("secret1")
	b, _ := h.Hash("secret1")
	if a == b {
		t.Fatalf("expected different digests for the same password")
	}
}

func TestBcryptHasher_Cost(t *testing.T) {
	h, err := NewBcryptHasher(0)
	if err != nil {
		t.Fatalf("NewBcryptHasher(0): %v", err)
	}
	if h.cost != DefaultBcryptCost {
		t.Fatalf("expected default cost %d, got %d", DefaultBcryptCost, h.cost)
	}
	if _, err := NewBcryptHasher(bcrypt.MaxCost + 1); err == nil {
		t.Fatalf("expected error for cost above max")
	}
}

func TestBcryptHasher_CorruptDigest(t *testing.T) {
	h, _ := NewBcryptHasher(bcrypt.MinCost)
	ok, err := h.Verify("secret1", "not-a-bcrypt-digest")
	if ok || err == nil {
		t.Fatalf("expected error for corrupt digest, got %v, %v", ok, err)
	}
}
