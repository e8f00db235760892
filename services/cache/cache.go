package cache

import (
	"time"
)

// CacheService represents a generic cache service. The scraper uses it as an
// origin block guard: once the transport burns its retry budget on rate-limit
// responses, a block key is set and fetches short-circuit until it expires.
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
