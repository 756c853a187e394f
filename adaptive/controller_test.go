package adaptive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/governor/errors"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		budget  int
		thresh  float64
		opts    []Option
		wantErr bool
	}{
		{name: "valid defaults", budget: 100, thresh: 30, wantErr: false},
		{name: "budget equals floor", budget: 20, thresh: 30, wantErr: false},
		{name: "zero threshold", budget: 100, thresh: 0, wantErr: true},
		{name: "negative threshold", budget: 100, thresh: -5, wantErr: true},
		{name: "budget below floor", budget: 10, thresh: 30, wantErr: true},
		{name: "negative floor", budget: 100, thresh: 30,
			opts: []Option{WithFloor(-1)}, wantErr: true},
		{name: "factor zero", budget: 100, thresh: 30,
			opts: []Option{WithDegradeFactor(0)}, wantErr: true},
		{name: "factor one", budget: 100, thresh: 30,
			opts: []Option{WithDegradeFactor(1)}, wantErr: true},
		{name: "factor above one", budget: 100, thresh: 30,
			opts: []Option{WithDegradeFactor(1.5)}, wantErr: true},
		{name: "custom floor above budget", budget: 100, thresh: 30,
			opts: []Option{WithFloor(200)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl, err := New(tt.budget, tt.thresh, tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalid(err), "expected invalid-class error, got %v", err)
				assert.Nil(t, ctrl)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.budget, ctrl.Budget())
			}
		})
	}
}

func TestOnSampleDegradationSequence(t *testing.T) {
	var applied []int
	var warned int

	ctrl, err := New(100, 30,
		WithApply(func(budget int) { applied = append(applied, budget) }),
		WithWarn(func(fps float64, budget int) { warned++ }),
	)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		ctrl.OnSample(20)
	}

	assert.Equal(t, []int{75, 56, 42, 31, 23}, applied)
	assert.Equal(t, 5, warned)
	assert.Equal(t, 23, ctrl.Budget())
	assert.False(t, ctrl.AtFloor())

	// Two more low samples pin the budget at the floor; only the first of
	// them changes anything, but both warn.
	ctrl.OnSample(20)
	ctrl.OnSample(20)

	assert.Equal(t, []int{75, 56, 42, 31, 23, 20}, applied)
	assert.Equal(t, 7, warned)
	assert.Equal(t, 20, ctrl.Budget())
	assert.True(t, ctrl.AtFloor())
}

func TestOnSampleAboveThresholdIgnored(t *testing.T) {
	var applied, warned int

	ctrl, err := New(100, 30,
		WithApply(func(int) { applied++ }),
		WithWarn(func(float64, int) { warned++ }),
	)
	require.NoError(t, err)

	ctrl.OnSample(30)  // exactly at threshold counts as healthy
	ctrl.OnSample(60)
	ctrl.OnSample(1000)

	assert.Zero(t, applied)
	assert.Zero(t, warned)
	assert.Equal(t, 100, ctrl.Budget())
}

func TestOnSampleWarnsAtFloor(t *testing.T) {
	var warned int

	ctrl, err := New(20, 30,
		WithWarn(func(fps float64, budget int) {
			warned++
			assert.Equal(t, 20, budget)
		}),
		WithApply(func(int) {
			t.Error("apply must not fire when the budget cannot move")
		}),
	)
	require.NoError(t, err)
	require.True(t, ctrl.AtFloor())

	ctrl.OnSample(10)
	ctrl.OnSample(10)
	ctrl.OnSample(10)

	assert.Equal(t, 3, warned)
	assert.Equal(t, 20, ctrl.Budget())
}

func TestDisabledControllerIgnoresSamples(t *testing.T) {
	var applied, warned int

	ctrl, err := New(100, 30,
		WithApply(func(int) { applied++ }),
		WithWarn(func(float64, int) { warned++ }),
	)
	require.NoError(t, err)

	ctrl.Disable()
	assert.False(t, ctrl.Enabled())

	ctrl.OnSample(5)
	ctrl.OnSample(5)

	assert.Zero(t, applied)
	assert.Zero(t, warned)
	assert.Equal(t, 100, ctrl.Budget())

	// Re-enabling resumes processing from the unchanged budget.
	ctrl.Enable()
	ctrl.OnSample(5)

	assert.Equal(t, 1, applied)
	assert.Equal(t, 1, warned)
	assert.Equal(t, 75, ctrl.Budget())
}

func TestControllerTruncation(t *testing.T) {
	// 31 * 0.75 = 23.25; the budget must truncate, never round.
	ctrl, err := New(31, 30, WithFloor(0))
	require.NoError(t, err)

	ctrl.OnSample(10)
	assert.Equal(t, 23, ctrl.Budget())
}

func TestControllerAccessors(t *testing.T) {
	ctrl, err := New(100, 30, WithFloor(25), WithDegradeFactor(0.5))
	require.NoError(t, err)

	assert.Equal(t, 25, ctrl.Floor())
	assert.Equal(t, 30.0, ctrl.Threshold())
	assert.True(t, ctrl.Enabled())
}

func TestControllerApplyMayReadBudget(t *testing.T) {
	// Callbacks run outside the lock, so reading the budget back from inside
	// apply must not deadlock.
	ctrl, err := New(100, 30)
	require.NoError(t, err)

	done := make(chan struct{})
	ctrl.apply = func(budget int) {
		assert.Equal(t, budget, ctrl.Budget())
		close(done)
	}

	ctrl.OnSample(10)
	<-done
}
