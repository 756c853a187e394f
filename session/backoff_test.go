package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_ZeroValueDisablesDelays(t *testing.T) {
	var b Backoff
	for attempt := 1; attempt <= 5; attempt++ {
		assert.Equal(t, time.Duration(0), b.DelayForAttempt(attempt))
	}
}

func TestBackoff_ExponentialGrowth(t *testing.T) {
	b := Backoff{
		InitialDelay: 10 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     time.Second,
		Jitter:       false,
	}

	assert.Equal(t, 10*time.Millisecond, b.DelayForAttempt(1))
	assert.Equal(t, 20*time.Millisecond, b.DelayForAttempt(2))
	assert.Equal(t, 40*time.Millisecond, b.DelayForAttempt(3))
}

func TestBackoff_CappedAtMaxDelay(t *testing.T) {
	b := Backoff{
		InitialDelay: 10 * time.Millisecond,
		Multiplier:   10.0,
		MaxDelay:     25 * time.Millisecond,
		Jitter:       false,
	}

	assert.Equal(t, 10*time.Millisecond, b.DelayForAttempt(1))
	assert.Equal(t, 25*time.Millisecond, b.DelayForAttempt(2))
	assert.Equal(t, 25*time.Millisecond, b.DelayForAttempt(10))
}

func TestBackoff_AttemptBelowOneNormalized(t *testing.T) {
	b := Backoff{InitialDelay: 10 * time.Millisecond, Multiplier: 2.0, MaxDelay: time.Second}
	assert.Equal(t, b.DelayForAttempt(1), b.DelayForAttempt(0))
	assert.Equal(t, b.DelayForAttempt(1), b.DelayForAttempt(-3))
}

func TestBackoff_JitterBounded(t *testing.T) {
	b := Backoff{
		InitialDelay: 100 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     time.Second,
		Jitter:       true,
	}

	// Jitter adds at most 25% on top of the base delay
	for i := 0; i < 50; i++ {
		d := b.DelayForAttempt(1)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 125*time.Millisecond)
	}
}

func TestBackoff_WaitRespectsContext(t *testing.T) {
	b := Backoff{InitialDelay: time.Second, Multiplier: 2.0, MaxDelay: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := b.Wait(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestBackoff_WaitZeroDelayChecksContext(t *testing.T) {
	var b Backoff

	assert.NoError(t, b.Wait(context.Background(), 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.Wait(ctx, 1), context.Canceled)
}
