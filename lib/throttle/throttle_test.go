package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNilAndZeroNeverWait(t *testing.T) {
	ctx := context.Background()

	var nilLimiter *Limiter
	require.NoError(t, nilLimiter.Wait(ctx))

	limiter := New(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, limiter.Wait(ctx))
	}
	require.Less(t, time.Since(start), time.Second)
}

func TestSpacing(t *testing.T) {
	ctx := context.Background()
	limiter := New(time.Millisecond * 50)

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx))
	require.NoError(t, limiter.Wait(ctx))
	require.NoError(t, limiter.Wait(ctx))
	require.GreaterOrEqual(t, time.Since(start), time.Millisecond*100)
}

func TestCancelledContext(t *testing.T) {
	limiter := New(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, limiter.Wait(ctx))

	cancel()
	require.ErrorIs(t, limiter.Wait(ctx), context.Canceled)
}
