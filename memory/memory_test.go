package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/nstehr/grimoire/clock"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestExpiringBoundary(t *testing.T) {
	c := clock.NewManual(epoch)
	m := New[string](c)

	m.Record("p1", 10*time.Second)
	assert.True(t, m.IsActive("p1"))

	c.Advance(10*time.Second - time.Nanosecond)
	assert.True(t, m.IsActive("p1"), "active strictly before created+ttl")

	c.Advance(time.Nanosecond)
	assert.False(t, m.IsActive("p1"), "expired at exactly created+ttl")
	assert.Equal(t, 0, m.Len(), "lookup purges the expired fact")
}

// Crossing a second boundary must not confuse expiry.
func TestExpiringAcrossSecondBoundary(t *testing.T) {
	c := clock.NewManual(epoch.Add(900 * time.Millisecond))
	m := New[string](c)
	m.Record("p1", 500*time.Millisecond)

	c.Advance(200 * time.Millisecond)
	assert.True(t, m.IsActive("p1"))
	c.Advance(300 * time.Millisecond)
	assert.False(t, m.IsActive("p1"))
}

func TestExpiringRefreshReplacesCreation(t *testing.T) {
	c := clock.NewManual(epoch)
	m := New[string](c)

	m.Record("p1", time.Second)
	c.Advance(800 * time.Millisecond)
	m.Record("p1", time.Second)
	c.Advance(800 * time.Millisecond)

	assert.True(t, m.IsActive("p1"))
	assert.Equal(t, 200*time.Millisecond, m.Remaining("p1"))
}

func TestPurgeExpiredIdempotent(t *testing.T) {
	c := clock.NewManual(epoch)
	m := New[int](c)
	m.Record(1, time.Second)
	m.Record(2, 3*time.Second)
	m.Record(3, 0)

	c.Advance(2 * time.Second)
	require.Equal(t, 1, m.PurgeExpired())
	require.Equal(t, 0, m.PurgeExpired())
	assert.Equal(t, 1, m.Len())
	assert.True(t, m.IsActive(2))

	m.Reset()
	assert.False(t, m.IsActive(2))
}

func TestExpiringProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ttl := time.Duration(rapid.Int64Range(1, int64(time.Hour)).Draw(t, "ttl"))
		elapsed := time.Duration(rapid.Int64Range(0, int64(2*time.Hour)).Draw(t, "elapsed"))

		c := clock.NewManual(epoch)
		m := New[string](c)
		m.Record("subject", ttl)
		c.Advance(elapsed)

		if got, want := m.IsActive("subject"), elapsed < ttl; got != want {
			t.Fatalf("ttl=%v elapsed=%v: IsActive=%v, want %v", ttl, elapsed, got, want)
		}
	})
}
