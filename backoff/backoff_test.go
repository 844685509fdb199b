package backoff

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponential(t *testing.T) {
	base := 100 * time.Millisecond

	assert.Equal(t, 100*time.Millisecond, Exponential(base, 0))
	assert.Equal(t, 200*time.Millisecond, Exponential(base, 1))
	assert.Equal(t, 400*time.Millisecond, Exponential(base, 2))
	assert.Equal(t, 800*time.Millisecond, Exponential(base, 3))
}

func TestExponential_NegativeAttemptTreatedAsZero(t *testing.T) {
	assert.Equal(t, time.Second, Exponential(time.Second, -5))
}

func TestExponential_NonPositiveBase(t *testing.T) {
	assert.Equal(t, time.Duration(0), Exponential(0, 3))
	assert.Equal(t, time.Duration(0), Exponential(-time.Second, 3))
}

func TestExponential_OverflowProtection(t *testing.T) {
	result := Exponential(time.Hour, 100)
	assert.Equal(t, time.Duration(math.MaxInt64), result)
}

func TestCap(t *testing.T) {
	assert.Equal(t, time.Second, Cap(5*time.Second, time.Second))
	assert.Equal(t, 500*time.Millisecond, Cap(500*time.Millisecond, time.Second))
	// Non-positive max leaves the delay unchanged.
	assert.Equal(t, 5*time.Second, Cap(5*time.Second, 0))
}

func TestFullJitter(t *testing.T) {
	delay := 100 * time.Millisecond

	for i := 0; i < 100; i++ {
		jittered := FullJitter(delay)
		assert.GreaterOrEqual(t, jittered, time.Duration(0))
		assert.Less(t, jittered, delay)
	}
}

func TestFullJitter_NonPositive(t *testing.T) {
	assert.Equal(t, time.Duration(0), FullJitter(0))
	assert.Equal(t, time.Duration(0), FullJitter(-time.Second))
}

func TestSleepWithContext_Completes(t *testing.T) {
	start := time.Now()

	err := SleepWithContext(context.Background(), 20*time.Millisecond)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSleepWithContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := SleepWithContext(ctx, 5*time.Second)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSleepWithContext_NonPositiveDuration(t *testing.T) {
	require.NoError(t, SleepWithContext(context.Background(), 0))
	require.NoError(t, SleepWithContext(context.Background(), -time.Second))
}
