package cli

import (
	"crypto/sha1" //nolint:gosec // matches shasum's default used by the scripts
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
)

// ParseHashAlgorithm converts a flag value to a HashAlgorithm.
func ParseHashAlgorithm(s string) (HashAlgorithm, error) {
	switch HashAlgorithm(strings.ToLower(s)) {
	case "", HashSHA1:
		return HashSHA1, nil
	case HashSHA256:
		return HashSHA256, nil
	default:
		return "", fmt.Errorf("unknown hash algorithm %q (expected sha1 or sha256)", s)
	}
}

// Sum returns the lowercase hex digest of key exactly as the generated
// scripts compute it: the raw bytes with no trailing newline.
func (h HashAlgorithm) Sum(key string) (string, error) {
	var d hash.Hash
	switch h {
	case "", HashSHA1:
		d = sha1.New() //nolint:gosec
	case HashSHA256:
		d = sha256.New()
	default:
		return "", fmt.Errorf("unknown hash algorithm %q", h)
	}
	d.Write([]byte(key))
	return hex.EncodeToString(d.Sum(nil)), nil
}

// Verify reports whether key matches the method's hash.
func (a *AuthMethod) Verify(key string) bool {
	sum, err := a.Digest().Sum(key)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(sum), []byte(strings.ToLower(a.Hash))) == 1
}
