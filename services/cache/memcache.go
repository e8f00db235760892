package cache

import (
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcacheService implements CacheService on memcache. Block keys written by
// the transport survive process restarts, so a freshly started run still
// honors a standing rate-limit block on the origin.
type MemcacheService struct {
	client *memcache.Client
}

// NewMemcacheService connects to the memcache daemon at serverAddr
func NewMemcacheService(serverAddr string) *MemcacheService {
	return &MemcacheService{
		client: memcache.New(serverAddr),
	}
}

// Get retrieves a block entry; a cache miss reports as an error
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(key)
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

// Set stores a block entry that memcache expires on its own after the
// block time elapses
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	return m.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(expiration.Seconds()),
	})
}

// Delete lifts a block early
func (m *MemcacheService) Delete(key string) error {
	return m.client.Delete(key)
}
