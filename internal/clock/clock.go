// Package clock computes recording-relative timestamps for incoming
// messages, optionally re-basing the origin to the first received message.
package clock

import "time"

// Clock holds the only cross-message mutable state in the pipeline besides
// the recording log itself. Stamp is called from the single capture
// goroutine only; if the session ever grows multiple receive sources, the
// origin assignment must become a compare-and-set.
type Clock struct {
	start     time.Time
	quantize  bool
	origin    time.Time
	originSet bool
}

// New starts a session clock at the current instant.
func New(quantize bool) *Clock {
	return NewAt(time.Now(), quantize)
}

// NewAt starts a session clock at an explicit instant.
func NewAt(start time.Time, quantize bool) *Clock {
	return &Clock{start: start, quantize: quantize}
}

// Stamp converts an arrival instant into a recording timestamp in seconds.
// Without quantization it is elapsed time since the session started. With
// quantization the first call pins the origin and returns exactly 0; later
// calls return the offset from that origin. Timestamps are monotonic
// non-decreasing as long as the instants are.
func (c *Clock) Stamp(now time.Time) float64 {
	if !c.quantize {
		return now.Sub(c.start).Seconds()
	}
	if !c.originSet {
		c.origin = now
		c.originSet = true
		return 0
	}
	return now.Sub(c.origin).Seconds()
}

func (c *Clock) Quantized() bool {
	return c.quantize
}
