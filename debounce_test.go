package audioengine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)
	var fired atomic.Int32

	for i := 0; i < 3; i++ {
		d.Trigger(func() { fired.Add(1) })
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load(), "only the last trigger in the burst should fire")
}

func TestDebouncer_StopPreventsFiring(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	var fired atomic.Bool

	d.Trigger(func() { fired.Store(true) })
	d.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, fired.Load())
}
