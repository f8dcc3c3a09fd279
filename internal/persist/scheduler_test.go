package persist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleFiresAfterDelay(t *testing.T) {
	clock := NewManualClock()
	s := NewScheduler(clock)

	fired := 0
	s.Schedule("windows", time.Second, func() { fired++ })

	clock.Advance(999 * time.Millisecond)
	assert.Equal(t, 0, fired)

	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)
}

func TestRescheduleCoalescesBurst(t *testing.T) {
	clock := NewManualClock()
	s := NewScheduler(clock)

	fired := 0
	for i := 0; i < 10; i++ {
		s.Schedule("windows", time.Second, func() { fired++ })
		clock.Advance(100 * time.Millisecond)
	}
	assert.Equal(t, 0, fired, "burst must not fire mid-stream")

	clock.Advance(time.Second)
	assert.Equal(t, 1, fired, "burst coalesces into a single flush")
}

func TestIndependentKeys(t *testing.T) {
	clock := NewManualClock()
	s := NewScheduler(clock)

	var got []string
	s.Schedule("windows", time.Second, func() { got = append(got, "windows") })
	s.Schedule("desktop", 2*time.Second, func() { got = append(got, "desktop") })

	clock.Advance(time.Second)
	assert.Equal(t, []string{"windows"}, got)

	clock.Advance(time.Second)
	assert.Equal(t, []string{"windows", "desktop"}, got)
}

func TestCancel(t *testing.T) {
	clock := NewManualClock()
	s := NewScheduler(clock)

	fired := false
	s.Schedule("windows", time.Second, func() { fired = true })
	s.Cancel("windows")

	clock.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestStopCancelsEverything(t *testing.T) {
	clock := NewManualClock()
	s := NewScheduler(clock)

	fired := 0
	s.Schedule("a", time.Second, func() { fired++ })
	s.Schedule("b", time.Second, func() { fired++ })
	s.Stop()

	clock.Advance(2 * time.Second)
	assert.Equal(t, 0, fired)
}

func TestLaterScheduleSupersedesEarlier(t *testing.T) {
	clock := NewManualClock()
	s := NewScheduler(clock)

	var got string
	s.Schedule("windows", time.Second, func() { got = "first" })
	s.Schedule("windows", 3*time.Second, func() { got = "second" })

	clock.Advance(2 * time.Second)
	assert.Equal(t, "", got, "superseded task must not fire")

	clock.Advance(time.Second)
	assert.Equal(t, "second", got)
}
