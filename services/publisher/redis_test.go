package publisher

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// This test requires a running Redis instance
// If Redis is not available, the test will be skipped
func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	defer client.Close()

	if _, err := client.Ping(ctx).Result(); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	pub := NewRedisPublisher(ctx, "localhost:6379", 0, "svecards_test")
	defer pub.Close()
	defer client.Del(ctx, "svecards_test")

	err := pub.Publish("BP01-001", []byte(`{"cardno":"BP01-001","name":"テスト"}`))
	require.NoError(t, err)

	entries, err := client.XRange(ctx, "svecards_test", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "BP01-001", entries[0].Values["cardno"])
	assert.Contains(t, entries[0].Values["record"], "テスト")
}
