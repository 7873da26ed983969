package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{name: "burst allows initial requests", rps: 1, burst: 3, calls: 3, wantPass: 3},
		{name: "exceeding burst blocks", rps: 1, burst: 2, calls: 5, wantPass: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)
			defer rl.Stop()

			passed := 0
			for range tt.calls {
				if rl.Allow("usr-limits") {
					passed++
				}
			}
			assert.Equal(t, tt.wantPass, passed)
		})
	}
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()

	// Exhaust one user's bucket.
	assert.True(t, rl.Allow("usr-a"))
	assert.False(t, rl.Allow("usr-a"))

	// Another user is unaffected.
	assert.True(t, rl.Allow("usr-b"))
}

func TestKeyedRateLimiter_Wait(t *testing.T) {
	rl := New(10, 1)
	defer rl.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	require.NoError(t, rl.Wait(ctx, "usr-wait"))
	assert.Less(t, time.Since(start), 50*time.Millisecond, "first request is served from the burst")

	// The second request queues behind the refill rate, ~100ms at 10 rps.
	start = time.Now()
	require.NoError(t, rl.Wait(ctx, "usr-wait"))
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
	assert.LessOrEqual(t, elapsed, 200*time.Millisecond)
}

func TestKeyedRateLimiter_WaitContextCancelled(t *testing.T) {
	rl := New(0.1, 1)
	defer rl.Stop()

	rl.Allow("usr-slow")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.Error(t, rl.Wait(ctx, "usr-slow"))
}
