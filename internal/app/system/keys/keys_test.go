package keys

import (
	"bytes"
	"testing"
)

func TestDerive_DeterministicAndSeparated(t *testing.T) {
	a1, err := Derive("secret", "a", 32)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	a2, _ := Derive("secret", "a", 32)
	b, _ := Derive("secret", "b", 32)

	if !bytes.Equal(a1, a2) {
		t.Error("same secret and purpose should derive the same key")
	}
	if bytes.Equal(a1, b) {
		t.Error("different purposes should derive different keys")
	}
}

func TestSessionKeys(t *testing.T) {
	h, b, err := SessionKeys("test-session-key-must-be-32-chars-long")
	if err != nil {
		t.Fatalf("SessionKeys: %v", err)
	}
	if len(h) != 64 || len(b) != 32 {
		t.Errorf("lengths = %d/%d, want 64/32", len(h), len(b))
	}
	if _, _, err := SessionKeys(""); err == nil {
		t.Error("empty secret should fail")
	}
}
