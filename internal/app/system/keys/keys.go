// internal/app/system/keys/keys.go
package keys

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Purposes for derived keys. Changing one invalidates everything signed
// with the old key.
const (
	PurposeSessionHash  = "journalhub session hash v1"
	PurposeSessionBlock = "journalhub session block v1"
)

// Derive expands secret into n bytes bound to purpose.
func Derive(secret, purpose string, n int) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("keys: empty secret")
	}
	out := make([]byte, n)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SessionKeys returns the cookie hash key (64 bytes) and encryption key
// (32 bytes, AES-256) derived from the configured session secret.
func SessionKeys(secret string) (hashKey, blockKey []byte, err error) {
	if hashKey, err = Derive(secret, PurposeSessionHash, 64); err != nil {
		return nil, nil, err
	}
	if blockKey, err = Derive(secret, PurposeSessionBlock, 32); err != nil {
		return nil, nil, err
	}
	return hashKey, blockKey, nil
}
