package views

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ClaimWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := s.Claim(ctx, "r1", "fp", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = s.Claim(ctx, "r1", "fp", time.Hour)
	assert.False(t, ok)

	ok, _ = s.Claim(ctx, "r2", "fp", time.Hour)
	assert.True(t, ok, "claims are per report")

	now = now.Add(time.Hour)
	ok, _ = s.Claim(ctx, "r1", "fp", time.Hour)
	assert.True(t, ok, "expired claim is taken over")
}

func TestMemoryStore_ReleaseAndPurge(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = s.Claim(ctx, "r1", "a", time.Minute)
	_, _ = s.Claim(ctx, "r1", "b", time.Hour)

	require.NoError(t, s.Release(ctx, "r1", "b"))
	ok, _ := s.Claim(ctx, "r1", "b", time.Hour)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	n, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryStore_ConcurrentClaimsAdmitOne(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	var wins atomic.Int32
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := s.Claim(context.Background(), "r1", "fp", time.Hour); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}
