package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestNewRedisStoreRequiresAddress(t *testing.T) {
	_, err := NewRedisStore(context.Background(), RedisConfig{Address: "  "})
	require.Error(t, err)
}

func TestNewRedisStoreFailsWhenUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisStore(ctx, RedisConfig{Address: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	require.Error(t, err)
	require.Contains(t, err.Error(), "redis: ping")
}

func TestRedisStorePrefixesKeys(t *testing.T) {
	store := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))
	t.Cleanup(func() { _ = store.Close() })

	require.Equal(t, "teamcal:calendar:1", store.prefixed("calendar:1"))
	require.Equal(t, "teamcal:calendar:1", store.prefixed("teamcal:calendar:1"))
}
