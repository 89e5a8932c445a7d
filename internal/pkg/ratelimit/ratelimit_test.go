//go:build unit

package ratelimit_test

import (
	"testing"
	"time"

	"keypool/internal/pkg/clock"
	"keypool/internal/pkg/ratelimit"

	"github.com/stretchr/testify/assert"
)

func TestCheck_WindowSequence(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	l := ratelimit.New(clk)

	got := make([]bool, 0, 4)
	for i := 0; i < 4; i++ {
		got = append(got, l.Check("u1", "x", 3, time.Minute))
	}
	assert.Equal(t, []bool{true, true, true, false}, got)

	// After the window elapses the counter resets.
	clk.Add(time.Minute)
	assert.True(t, l.Check("u1", "x", 3, time.Minute))
}

func TestCheck_KeysAreIndependent(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	l := ratelimit.New(clk)

	assert.True(t, l.Check("u1", "x", 1, time.Minute))
	assert.False(t, l.Check("u1", "x", 1, time.Minute))
	assert.True(t, l.Check("u2", "x", 1, time.Minute))
	assert.True(t, l.Check("u1", "y", 1, time.Minute))
}

func TestRemainingCooldown(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	l := ratelimit.New(clk)

	assert.Equal(t, 0, l.RemainingCooldown("u1", "x"))

	l.Check("u1", "x", 3, time.Minute)
	assert.Equal(t, 60, l.RemainingCooldown("u1", "x"))

	clk.Add(45 * time.Second)
	assert.Equal(t, 15, l.RemainingCooldown("u1", "x"))

	clk.Add(15 * time.Second)
	assert.Equal(t, 0, l.RemainingCooldown("u1", "x"))
}

func TestSweep(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	l := ratelimit.New(clk)

	l.Check("u1", "x", 3, time.Minute)
	l.Check("u2", "x", 3, 2*time.Minute)
	assert.Equal(t, 2, l.Len())

	clk.Add(time.Minute)
	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Len())

	clk.Add(time.Minute)
	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 0, l.Len())
}
