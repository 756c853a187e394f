package adaptive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/governor/errors"
)

func TestNewSamplerValidation(t *testing.T) {
	ctrl, err := New(100, 30)
	require.NoError(t, err)

	_, err = NewSampler(nil, time.Second)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	_, err = NewSampler(ctrl, 0)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	s, err := NewSampler(ctrl, time.Second)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestSamplerDeliversRate(t *testing.T) {
	samples := make(chan float64, 10)

	ctrl, err := New(100, 1000,
		WithWarn(func(fps float64, _ int) { samples <- fps }),
	)
	require.NoError(t, err)

	sampler, err := NewSampler(ctrl, 50*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, sampler.Start(context.Background()))
	defer sampler.Stop(time.Second)

	sampler.MarkN(10)

	select {
	case fps := <-samples:
		// 10 units over a 50ms window is 200/s; allow slack for marks
		// landing after the first tick.
		assert.Greater(t, fps, 0.0)
		assert.LessOrEqual(t, fps, 200.0)
	case <-time.After(time.Second):
		t.Fatal("no sample delivered")
	}
}

func TestSamplerCountsResetEachInterval(t *testing.T) {
	ctrl, err := New(100, 0.001) // threshold near zero: idle intervals stay healthy
	require.NoError(t, err)

	sampler, err := NewSampler(ctrl, 30*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, sampler.Start(context.Background()))
	defer sampler.Stop(time.Second)

	sampler.MarkN(6)
	time.Sleep(100 * time.Millisecond)

	// All marks were consumed by earlier windows, so the latest rate is zero.
	assert.Zero(t, sampler.Rate())
	assert.Equal(t, 100, ctrl.Budget())
}

func TestSamplerLifecycle(t *testing.T) {
	ctrl, err := New(100, 30)
	require.NoError(t, err)

	sampler, err := NewSampler(ctrl, 10*time.Millisecond)
	require.NoError(t, err)

	assert.ErrorIs(t, sampler.Stop(time.Second), errors.ErrNotStarted)

	require.NoError(t, sampler.Start(context.Background()))
	assert.ErrorIs(t, sampler.Start(context.Background()), errors.ErrAlreadyStarted)

	require.NoError(t, sampler.Stop(time.Second))
	require.NoError(t, sampler.Stop(time.Second)) // idempotent
}

func TestSamplerStopsOnContextCancel(t *testing.T) {
	ctrl, err := New(100, 30)
	require.NoError(t, err)

	sampler, err := NewSampler(ctrl, 10*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, sampler.Start(ctx))
	cancel()

	// The loop exits on its own; Stop still returns cleanly afterwards.
	assert.Eventually(t, func() bool {
		select {
		case <-sampler.loopExited:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, sampler.Stop(time.Second))
}
