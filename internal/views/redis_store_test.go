package views_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/views"
)

func TestRedisStore_Key(t *testing.T) {
	t.Parallel()

	s := views.NewRedisStore(nil, "newsdesk")
	assert.Equal(t, "newsdesk:views:r1:abc", s.Key("r1", "abc"))
}

// Requires a running Redis; set NEWSDESK_TEST_REDIS=host:port.
func TestRedisStore_Claim(t *testing.T) {
	addr := os.Getenv("NEWSDESK_TEST_REDIS")
	if addr == "" {
		t.Skip("NEWSDESK_TEST_REDIS not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	store := views.NewRedisStore(client, "newsdesk-test")
	reportID := uuid.NewString()

	ok, err := store.Claim(ctx, reportID, "fp", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Claim(ctx, reportID, "fp", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := client.PTTL(ctx, store.Key(reportID, "fp")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	require.NoError(t, store.Release(ctx, reportID, "fp"))
	ok, err = store.Claim(ctx, reportID, "fp", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, store.Release(ctx, reportID, "fp"))
}
