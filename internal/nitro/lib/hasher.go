// Package lib contains the core, reusable services for the nitro application.
package lib

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// GetHash calculates the SHA-256 hash of an in-memory byte slice and returns
// it as a lowercase hex-encoded string.
func GetHash(content []byte) string {
	hashBytes := sha256.Sum256(content)
	return hex.EncodeToString(hashBytes[:])
}

// GetReaderHash calculates the SHA-256 hash of everything read from r, for
// example the contents of a file returned by Filesystem.Open. It returns the
// lowercase hex-encoded hash and the number of bytes hashed.
func GetReaderHash(r io.Reader) (string, int64, error) {
	hasher := sha256.New()

	n, err := io.Copy(hasher, r)
	if err != nil {
		return "", 0, err
	}

	hashBytes := hasher.Sum(nil)
	return hex.EncodeToString(hashBytes), n, nil
}
