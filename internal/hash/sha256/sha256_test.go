// Package sha256 includes tests for the SHA-256 hasher adapter.
package sha256

import (
	stdsha256 "crypto/sha256"
	"encoding/hex"
	"testing"
)

// TestHashFieldsKnownDigest pins the framing: one field is its 8-byte length then its bytes.
func TestHashFieldsKnownDigest(t *testing.T) {
	t.Parallel()

	h := New()
	got, err := h.HashFields([]byte("hello world"))
	if err != nil {
		t.Fatalf("HashFields() error = %v", err)
	}
	framed := append(Uint64(11), []byte("hello world")...)
	sum := stdsha256.Sum256(framed)
	if want := hex.EncodeToString(sum[:]); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	empty, err := h.HashFields()
	if err != nil {
		t.Fatalf("HashFields() empty error = %v", err)
	}
	// SHA-256 of no input.
	if empty != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Fatalf("unexpected empty digest %s", empty)
	}
}

// TestHashFieldsOrderAndBoundaries checks that field order and field boundaries both matter.
func TestHashFieldsOrderAndBoundaries(t *testing.T) {
	t.Parallel()

	h := New()
	base, _ := h.HashFields([]byte("ab"), []byte("c"))
	again, _ := h.HashFields([]byte("ab"), []byte("c"))
	shifted, _ := h.HashFields([]byte("a"), []byte("bc"))
	swapped, _ := h.HashFields([]byte("c"), []byte("ab"))

	if base != again {
		t.Fatalf("expected deterministic digest, got %s vs %s", base, again)
	}
	if base == shifted {
		t.Fatal("expected moving a boundary to change the digest")
	}
	if base == swapped {
		t.Fatal("expected swapping fields to change the digest")
	}
}

// TestUint64Encoding ensures integers are encoded big-endian in eight bytes.
func TestUint64Encoding(t *testing.T) {
	t.Parallel()

	got := Uint64(258)
	if len(got) != 8 || got[6] != 1 || got[7] != 2 {
		t.Fatalf("unexpected encoding %v", got)
	}
}
