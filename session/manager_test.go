package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_StartSession(t *testing.T) {
	mgr := NewManager()

	require.NoError(t, mgr.StartSession())
	assert.True(t, mgr.Active())
	assert.Equal(t, 0, mgr.AttemptCount())

	// Overlapping session is a misuse error
	err := mgr.StartSession()
	assert.ErrorIs(t, err, ErrSessionActive)
}

func TestManager_IncrementAttempt(t *testing.T) {
	mgr := NewManager()

	// No session yet
	assert.ErrorIs(t, mgr.IncrementAttempt(), ErrNoActiveSession)

	require.NoError(t, mgr.StartSession())
	for i := 1; i <= MaxAttempts; i++ {
		require.NoError(t, mgr.IncrementAttempt())
		assert.Equal(t, i, mgr.AttemptCount())
	}

	// Fourth increment hits the ceiling and leaves the counter unchanged
	assert.ErrorIs(t, mgr.IncrementAttempt(), ErrMaxAttemptsExceeded)
	assert.Equal(t, MaxAttempts, mgr.AttemptCount())
}

func TestManager_CanRetry(t *testing.T) {
	mgr := NewManager()

	assert.False(t, mgr.CanRetry(), "inactive manager cannot retry")

	require.NoError(t, mgr.StartSession())
	assert.True(t, mgr.CanRetry())

	require.NoError(t, mgr.IncrementAttempt())
	require.NoError(t, mgr.IncrementAttempt())
	assert.True(t, mgr.CanRetry(), "two attempts consumed, one remaining")

	require.NoError(t, mgr.IncrementAttempt())
	assert.False(t, mgr.CanRetry(), "ceiling reached")

	mgr.EndSession()
	require.NoError(t, mgr.StartSession())
	mgr.Cancel()
	assert.False(t, mgr.CanRetry(), "cancelled session cannot retry")
}

func TestManager_CancelIsIdempotentAndScoped(t *testing.T) {
	mgr := NewManager()

	// Cancel with no active session is a documented no-op
	mgr.Cancel()
	require.NoError(t, mgr.StartSession())
	assert.True(t, mgr.CanRetry(), "pre-session cancel must not leak into the new session")

	mgr.Cancel()
	mgr.Cancel()
	assert.False(t, mgr.CanRetry())
}

func TestManager_EndSessionIdempotent(t *testing.T) {
	mgr := NewManager()

	mgr.EndSession()
	mgr.EndSession()
	assert.False(t, mgr.Active())

	require.NoError(t, mgr.StartSession())
	require.NoError(t, mgr.IncrementAttempt())
	mgr.EndSession()

	assert.False(t, mgr.Active())
	assert.Equal(t, 0, mgr.AttemptCount())

	// Reusable after cleanup
	require.NoError(t, mgr.StartSession())
	assert.Equal(t, 0, mgr.AttemptCount())
}

func TestManager_SequentialSessionsIndependent(t *testing.T) {
	mgr := NewManager()

	for session := 0; session < 3; session++ {
		require.NoError(t, mgr.StartSession())
		assert.Equal(t, 0, mgr.AttemptCount(), "each session starts at zero attempts")
		require.NoError(t, mgr.IncrementAttempt())
		mgr.EndSession()
	}
}
