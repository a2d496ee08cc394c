package dispatch_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/clock"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/dispatch"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestThrottle_TrailingOnly(t *testing.T) {
	c := clock.NewManual(epoch)
	calls := 0
	th := dispatch.NewThrottle(c, 2*time.Second, func() { calls++ })

	assert.True(t, th.Trigger())
	assert.Equal(t, 0, calls, "never runs at call time")

	c.Advance(1999 * time.Millisecond)
	assert.Equal(t, 0, calls)

	c.Advance(time.Millisecond)
	assert.Equal(t, 1, calls)
	assert.False(t, th.Pending())
}

func TestThrottle_CoalescesTriggers(t *testing.T) {
	c := clock.NewManual(epoch)
	calls := 0
	th := dispatch.NewThrottle(c, 2*time.Second, func() { calls++ })

	assert.True(t, th.Trigger())
	for i := 0; i < 10; i++ {
		c.Advance(100 * time.Millisecond)
		assert.False(t, th.Trigger(), "absorbed while pending")
	}

	c.Advance(time.Second)
	assert.Equal(t, 1, calls)

	// A new window starts after the run.
	assert.True(t, th.Trigger())
	c.Advance(2 * time.Second)
	assert.Equal(t, 2, calls)
}

func TestThrottle_CallbackMayRetrigger(t *testing.T) {
	c := clock.NewManual(epoch)
	var th *dispatch.Throttle
	calls := 0
	th = dispatch.NewThrottle(c, time.Second, func() {
		calls++
		if calls == 1 {
			th.Trigger()
		}
	})

	th.Trigger()
	c.Advance(time.Second)
	assert.Equal(t, 1, calls)
	assert.True(t, th.Pending())

	c.Advance(time.Second)
	assert.Equal(t, 2, calls)
}

func TestThrottle_Cancel(t *testing.T) {
	c := clock.NewManual(epoch)
	calls := 0
	th := dispatch.NewThrottle(c, time.Second, func() { calls++ })

	th.Trigger()
	th.Cancel()
	c.Advance(5 * time.Second)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, c.Pending())

	assert.True(t, th.Trigger(), "cancel does not disable")
	c.Advance(time.Second)
	assert.Equal(t, 1, calls)
}

func TestThrottle_Stop(t *testing.T) {
	c := clock.NewManual(epoch)
	calls := 0
	th := dispatch.NewThrottle(c, time.Second, func() { calls++ })

	th.Trigger()
	th.Stop()
	assert.False(t, th.Trigger())
	c.Advance(5 * time.Second)
	assert.Equal(t, 0, calls)
}

func TestThrottle_DefaultWindow(t *testing.T) {
	th := dispatch.NewThrottle(clock.NewManual(epoch), 0, func() {})
	assert.Equal(t, dispatch.DefaultDispatchInterval, th.Window())
}
