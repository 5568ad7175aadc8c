package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores fetched page content between verification passes so the
// revision loop does not re-download the same sources every iteration.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from a source URL.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "ghostwriter:content:v1:" + hex.EncodeToString(sum[:])
}
