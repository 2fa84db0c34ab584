// Package cache keeps parse results keyed by input text, catalog snapshot
// and engine options, in memory and on disk.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const keyPrefix = "orderparse:v1:"

// Cache defines the byte-level layer interface
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives the cache key for one parse. A changed catalog or changed
// engine options yield a different key, so stale prices are never served.
func Key(text, catalogFingerprint, engineSignature string) string {
	h := sha256.New()
	for _, part := range []string{text, catalogFingerprint, engineSignature} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}
