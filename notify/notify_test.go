package notify

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/governor/session"
)

// recorder captures delivered events for assertions
type recorder struct {
	warnings []QualityWarning
	events   []SessionEvent
	fail     error
}

func (r *recorder) NotifyQuality(_ context.Context, w QualityWarning) error {
	if r.fail != nil {
		return r.fail
	}
	r.warnings = append(r.warnings, w)
	return nil
}

func (r *recorder) NotifySession(_ context.Context, e SessionEvent) error {
	if r.fail != nil {
		return r.fail
	}
	r.events = append(r.events, e)
	return nil
}

func TestNewSessionEvent(t *testing.T) {
	tests := []struct {
		name    string
		outcome session.Outcome
		want    string
		wantErr bool
	}{
		{
			name:    "success",
			outcome: session.Outcome{Success: true, Attempts: 2},
			want:    OutcomeSuccess,
		},
		{
			name: "cancelled",
			outcome: session.Outcome{
				Attempts: 2,
				Err:      fmt.Errorf("%w after 2 attempts", session.ErrCancelled),
			},
			want:    OutcomeCancelled,
			wantErr: true,
		},
		{
			name: "exhausted",
			outcome: session.Outcome{
				Attempts: 3,
				Err:      fmt.Errorf("%w: no attempt succeeded after 3 attempts", session.ErrExhausted),
			},
			want:    OutcomeExhausted,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewSessionEvent("worker", tt.outcome)
			assert.Equal(t, "worker", e.Component)
			assert.Equal(t, tt.want, e.Outcome)
			assert.Equal(t, tt.outcome.Attempts, e.Attempts)
			assert.False(t, e.Timestamp.IsZero())
			if tt.wantErr {
				assert.NotEmpty(t, e.Error)
			} else {
				assert.Empty(t, e.Error)
			}
		})
	}
}

func TestLogNotifierNeverFails(t *testing.T) {
	n := NewLogNotifier(slog.Default())
	ctx := context.Background()

	require.NoError(t, n.NotifyQuality(ctx, QualityWarning{Component: "pipeline", FPS: 12, Budget: 75}))
	require.NoError(t, n.NotifySession(ctx, SessionEvent{Component: "pipeline", Outcome: OutcomeSuccess, Attempts: 1}))
	require.NoError(t, n.NotifySession(ctx, SessionEvent{Component: "pipeline", Outcome: OutcomeExhausted, Attempts: 3, Error: "boom"}))
}

func TestFanoutDeliversToAllSinks(t *testing.T) {
	a := &recorder{}
	b := &recorder{}
	f := NewFanout(a, b)

	warning := QualityWarning{Component: "pipeline", FPS: 20, Budget: 56, Timestamp: time.Now()}
	require.NoError(t, f.NotifyQuality(context.Background(), warning))

	assert.Equal(t, []QualityWarning{warning}, a.warnings)
	assert.Equal(t, []QualityWarning{warning}, b.warnings)
}

func TestFanoutContinuesPastFailingSink(t *testing.T) {
	boom := stderrors.New("sink down")
	failing := &recorder{fail: boom}
	healthy := &recorder{}
	f := NewFanout(failing, healthy)

	event := SessionEvent{Component: "pipeline", Outcome: OutcomeSuccess, Attempts: 1}
	err := f.NotifySession(context.Background(), event)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []SessionEvent{event}, healthy.events, "healthy sink must still receive the event")
}

func TestFanoutSkipsNilSinks(t *testing.T) {
	a := &recorder{}
	f := NewFanout(nil, a, nil)

	require.NoError(t, f.NotifyQuality(context.Background(), QualityWarning{Component: "x"}))
	assert.Len(t, a.warnings, 1)
}

func TestNewNATSNotifierRequiresClient(t *testing.T) {
	_, err := NewNATSNotifier(nil)
	require.Error(t, err)
}
