package session

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

var (
	// Thread-safe random source for jitter
	randMu     sync.Mutex
	randSource = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Backoff configures the delay applied between failed attempts within a
// session. The zero value disables delays entirely, which matches the default
// Manager behavior: retry immediately.
type Backoff struct {
	InitialDelay time.Duration // Delay after the first failed attempt
	Multiplier   float64       // Growth factor per subsequent attempt (typically 2.0)
	MaxDelay     time.Duration // Cap on the computed delay
	Jitter       bool          // Add up to 25% randomness to prevent thundering herd
}

// DefaultBackoff returns sensible defaults for generation retries
func DefaultBackoff() Backoff {
	return Backoff{
		InitialDelay: 100 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     5 * time.Second,
		Jitter:       true,
	}
}

// DelayForAttempt returns the delay to apply after failed attempt number
// attempt (1-based). Attempt 1 gets InitialDelay, each subsequent attempt
// grows by Multiplier, capped at MaxDelay.
func (b Backoff) DelayForAttempt(attempt int) time.Duration {
	if b.InitialDelay <= 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}

	multiplier := b.Multiplier
	if multiplier <= 0 {
		multiplier = 1.0
	}

	delay := float64(b.InitialDelay)
	for i := 1; i < attempt; i++ {
		delay *= multiplier
		if b.MaxDelay > 0 && delay >= float64(b.MaxDelay) {
			delay = float64(b.MaxDelay)
			break
		}
	}
	if b.MaxDelay > 0 && delay > float64(b.MaxDelay) {
		delay = float64(b.MaxDelay)
	}

	d := time.Duration(delay)
	if b.Jitter && d > 0 {
		randMu.Lock()
		jitter := time.Duration(randSource.Int63n(int64(d/4) + 1))
		randMu.Unlock()
		d += jitter
	}
	return d
}

// Wait sleeps for the attempt's delay, returning early with the context
// error if the context is cancelled first.
func (b Backoff) Wait(ctx context.Context, attempt int) error {
	delay := b.DelayForAttempt(attempt)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
