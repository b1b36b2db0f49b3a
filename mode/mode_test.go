package mode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestControllerSequence(t *testing.T) {
	c, err := New(Thresholds{Entry: 750, Exit: 400})
	require.NoError(t, err)

	values := []float64{300, 500, 800, 600, 350}
	want := []State{Normal, Normal, Empowered, Empowered, Normal}
	for i, v := range values {
		got, _ := c.Step(v, Override{})
		assert.Equal(t, want[i], got, "step %d value %v", i, v)
	}
}

func TestNewRejectsMissingGap(t *testing.T) {
	for _, th := range []Thresholds{{Entry: 400, Exit: 400}, {Entry: 300, Exit: 400}} {
		_, err := New(th)
		assert.ErrorIs(t, err, ErrNoHysteresis)
	}
}

func TestOverrides(t *testing.T) {
	c, _ := New(Thresholds{Entry: 850, Exit: 750})

	assert.Equal(t, Normal, c.WantsTransition(500, Override{}))
	assert.Equal(t, Empowered, c.WantsTransition(500, Override{Enter: true}))
	assert.Equal(t, Normal, c.State(), "WantsTransition is pure")

	c.Set(Empowered)
	assert.Equal(t, Empowered, c.WantsTransition(100, Override{Hold: true}))
	assert.Equal(t, Normal, c.WantsTransition(100, Override{}))
	assert.Equal(t, Empowered, c.WantsTransition(750, Override{}), "exit is strict")
}

func TestStepReportsChange(t *testing.T) {
	c, _ := New(Thresholds{Entry: 2, Exit: 1})
	_, changed := c.Step(2, Override{})
	assert.True(t, changed)
	_, changed = c.Step(1, Override{})
	assert.False(t, changed)
	s, changed := c.Step(0, Override{})
	assert.True(t, changed)
	assert.Equal(t, Normal, s)
}

// Inside the gap the controller keeps whatever state it is in, so a value
// oscillating around either threshold cannot flip it back in the same step.
func TestNoFlapInsideGap(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		exit := rapid.Float64Range(0, 1000).Draw(t, "exit")
		gap := rapid.Float64Range(1, 500).Draw(t, "gap")
		c, err := New(Thresholds{Entry: exit + gap, Exit: exit})
		if err != nil {
			t.Fatal(err)
		}
		values := rapid.SliceOf(rapid.Float64Range(exit, exit+gap-0.001)).Draw(t, "values")
		start := rapid.SampledFrom([]State{Normal, Empowered}).Draw(t, "start")
		c.Set(start)
		for _, v := range values {
			if s, changed := c.Step(v, Override{}); changed {
				t.Fatalf("value %v inside gap moved %v to %v", v, start, s)
			}
		}
	})
}
