package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_Phases(t *testing.T) {
	clock := NewFakeClock(time.Unix(1000, 0))
	timer := NewTimer(clock)

	timer.StartPhase("decompose")
	clock.Advance(250 * time.Millisecond)
	d := timer.StopPhase("decompose")
	assert.Equal(t, 250*time.Millisecond, d)

	phases := timer.Phases()
	require.Len(t, phases, 1)
	assert.Equal(t, "decompose", phases[0].Name)
	assert.Equal(t, 250*time.Millisecond, phases[0].Duration)
}

func TestTimer_StopUnknownPhase(t *testing.T) {
	timer := NewTimer(nil)
	assert.Equal(t, time.Duration(0), timer.StopPhase("never-started"))
}

func TestTimer_Time(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	timer := NewTimer(clock)
	ran := false
	timer.Time("work", func() {
		ran = true
		clock.Advance(time.Second)
	})
	assert.True(t, ran)
	assert.Equal(t, time.Second, timer.Phases()[0].Duration)
}

func TestFakeClock(t *testing.T) {
	c := NewFakeClock(time.Unix(0, 0))
	start := c.Now()
	c.Advance(3 * time.Second)
	assert.Equal(t, 3*time.Second, c.Since(start))
}
