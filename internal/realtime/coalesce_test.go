package realtime

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCoalescerCollapsesBurst(t *testing.T) {
	var calls atomic.Int32
	c := NewCoalescer(30*time.Millisecond, func() { calls.Add(1) })
	defer c.Stop()

	for i := 0; i < 10; i++ {
		c.Trigger()
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "burst must collapse to one callback")
}

func TestCoalescerFiresAgainAfterWindow(t *testing.T) {
	var calls atomic.Int32
	c := NewCoalescer(10*time.Millisecond, func() { calls.Add(1) })
	defer c.Stop()

	c.Trigger()
	time.Sleep(50 * time.Millisecond)
	c.Trigger()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int32(2), calls.Load())
}

func TestCoalescerStopCancelsPending(t *testing.T) {
	var calls atomic.Int32
	c := NewCoalescer(20*time.Millisecond, func() { calls.Add(1) })

	c.Trigger()
	c.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestCoalescerZeroWindowPassesThrough(t *testing.T) {
	var calls atomic.Int32
	c := NewCoalescer(0, func() { calls.Add(1) })

	c.Trigger()
	c.Trigger()
	assert.Equal(t, int32(2), calls.Load())
}
