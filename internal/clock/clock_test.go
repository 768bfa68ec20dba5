package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStampElapsedSinceStart(t *testing.T) {
	start := time.Now()
	c := NewAt(start, false)

	assert.Equal(t, 1.5, c.Stamp(start.Add(1500*time.Millisecond)))
	assert.Equal(t, 2.0, c.Stamp(start.Add(2*time.Second)))
	assert.False(t, c.Quantized())
}

func TestStampQuantizedRebasesToFirstMessage(t *testing.T) {
	start := time.Now()
	c := NewAt(start, true)

	// first message arrives well after session start, yet stamps as 0
	first := start.Add(3 * time.Second)
	assert.Equal(t, 0.0, c.Stamp(first))
	assert.Equal(t, 0.25, c.Stamp(first.Add(250*time.Millisecond)))
	assert.Equal(t, 1.0, c.Stamp(first.Add(time.Second)))
}

func TestStampMonotonicForMonotonicInput(t *testing.T) {
	start := time.Now()
	for _, quantize := range []bool{false, true} {
		c := NewAt(start, quantize)
		var prev float64
		for i := 0; i < 100; i++ {
			now := start.Add(time.Duration(i*7) * time.Millisecond)
			ts := c.Stamp(now)
			assert.GreaterOrEqual(t, ts, prev)
			prev = ts
		}
	}
}
