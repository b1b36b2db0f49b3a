package gate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/nstehr/grimoire/clock"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func always(ok bool) func() (bool, error) {
	return func() (bool, error) { return ok, nil }
}

func counting(n *int, ok bool) func() (bool, error) {
	return func() (bool, error) {
		*n++
		return ok, nil
	}
}

func TestAttemptPredicateFalse(t *testing.T) {
	g := New(clock.NewManual(epoch))
	calls := 0
	fired, err := g.Attempt("x", always(false), 0, counting(&calls, true))
	assert.NoError(t, err)
	assert.False(t, fired)
	assert.Zero(t, calls)
}

func TestAttemptNoDebounce(t *testing.T) {
	g := New(clock.NewManual(epoch))
	calls := 0
	for range 3 {
		fired, err := g.Attempt("x", always(true), 0, counting(&calls, true))
		assert.NoError(t, err)
		assert.True(t, fired)
	}
	assert.Equal(t, 3, calls)
}

func TestAttemptDebounceWindow(t *testing.T) {
	c := clock.NewManual(epoch)
	g := New(c)
	calls := 0

	fired, _ := g.Attempt("life-tap", always(true), 2*time.Second, counting(&calls, true))
	assert.True(t, fired)

	c.Advance(2*time.Second - time.Millisecond)
	fired, _ = g.Attempt("life-tap", always(true), 2*time.Second, counting(&calls, true))
	assert.False(t, fired, "inside the window")

	c.Advance(time.Millisecond)
	fired, _ = g.Attempt("life-tap", always(true), 2*time.Second, counting(&calls, true))
	assert.True(t, fired, "window elapsed")
	assert.Equal(t, 2, calls)
}

func TestAttemptFailedSideEffectKeepsLockOpen(t *testing.T) {
	c := clock.NewManual(epoch)
	g := New(c)
	calls := 0

	fired, _ := g.Attempt("fear", always(true), time.Second, counting(&calls, false))
	assert.False(t, fired)
	fired, _ = g.Attempt("fear", always(true), time.Second, counting(&calls, true))
	assert.True(t, fired, "an unsuccessful side effect must not lock the action")
	assert.Equal(t, 2, calls)
}

func TestAttemptPropagatesErrors(t *testing.T) {
	g := New(clock.NewManual(epoch))
	boom := errors.New("boom")

	_, err := g.Attempt("x", func() (bool, error) { return false, boom }, 0, always(true))
	assert.ErrorIs(t, err, boom)

	fired, err := g.Attempt("x", always(true), time.Second, func() (bool, error) { return true, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, fired)
	assert.False(t, g.Locked("x", time.Second))
}

func TestLocksAreIndependent(t *testing.T) {
	g := New(clock.NewManual(epoch))
	_, _ = g.Attempt("a", always(true), time.Minute, always(true))
	assert.True(t, g.Locked("a", time.Minute))
	assert.False(t, g.Locked("b", time.Minute))

	g.Reset()
	assert.False(t, g.Locked("a", time.Minute))
}

// Two qualifying attempts closer than D give at most one side effect;
// at least D apart both fire.
func TestDebounceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := time.Duration(rapid.Int64Range(1, int64(time.Minute)).Draw(t, "debounce"))
		gap := time.Duration(rapid.Int64Range(0, int64(2*time.Minute)).Draw(t, "gap"))

		c := clock.NewManual(epoch)
		g := New(c)
		calls := 0
		_, _ = g.Attempt("a", always(true), d, counting(&calls, true))
		c.Advance(gap)
		_, _ = g.Attempt("a", always(true), d, counting(&calls, true))

		want := 1
		if gap >= d {
			want = 2
		}
		if calls != want {
			t.Fatalf("d=%v gap=%v: %d side effects, want %d", d, gap, calls, want)
		}
	})
}
