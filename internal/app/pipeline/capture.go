// Package pipeline contains the two session loops: the single-consumer
// capture loop, and the journal writer that drains the entry queue.
package pipeline

import (
	"time"

	"github.com/tonefall/oscrec/internal/adapters/observability"
	"github.com/tonefall/oscrec/internal/clock"
	"github.com/tonefall/oscrec/internal/domain"
	"github.com/tonefall/oscrec/internal/ports"
	"github.com/tonefall/oscrec/internal/scheme"
)

// Capture bundles the collaborators of the per-packet loop.
type Capture struct {
	Kind     scheme.Kind
	Clock    *clock.Clock
	Recorder ports.Recorder
	Repeater ports.Repeater
	Queue    ports.EntryQueue
	Policy   ports.Policy
	Obs      ports.Observability
	Display  chan<- ports.DisplayEvent
}

// Run consumes packets until in is closed and returns once every received
// packet has been processed. It is the only goroutine that touches the
// clock and the recorder, which is what guarantees that log order equals
// arrival order. The caller closes in only after the listener has stopped.
func (c *Capture) Run(in <-chan *domain.Packet) error {
	obs := c.Obs
	if obs == nil {
		obs = observability.Nop{}
	}

	var (
		seq        uint64
		sinceFlush int
		lastFlush  = time.Now()
	)

	for pkt := range in {
		// forwarding is handed off here; delivery may complete after the
		// append below and that is fine, the two outputs are independent
		if c.Repeater != nil {
			c.Repeater.Forward(pkt.Raw)
		}

		for i := range pkt.Messages {
			m := &pkt.Messages[i]
			record := c.Kind.Extract(m.Address, m.Args)
			entry := &domain.Entry{Time: c.Clock.Stamp(pkt.Received), Record: record}

			if err := c.Recorder.Append(entry); err != nil {
				obs.LogError("record_append_failed", err,
					ports.Field{Key: "address", Value: m.Address})
			} else {
				obs.IncCounter(observability.MetricMessagesRecorded, 1)
				obs.SetGauge(observability.MetricRecordingEntries, float64(c.Recorder.Len()))
				sinceFlush++
			}

			if c.Queue != nil {
				seq++
				if !enqueueWithPolicy(c.Queue, seq, entry, c.Policy) {
					obs.IncCounter(observability.MetricQueueDropped, 1)
				}
				obs.SetGauge(observability.MetricQueueLength, float64(c.Queue.Len()))
			}

			if c.Display != nil {
				select {
				case c.Display <- ports.DisplayEvent{Time: entry.Time, Address: m.Address, Record: record}:
				default:
					// a slow console never stalls recording
				}
			}
		}

		if c.shouldFlush(sinceFlush, lastFlush) {
			start := time.Now()
			if err := c.Recorder.Flush(); err != nil {
				obs.LogError("recorder_flush_failed", err)
			} else {
				obs.ObserveLatency(observability.MetricFlushDuration, time.Since(start).Seconds())
			}
			sinceFlush = 0
			lastFlush = time.Now()
		}
	}
	return nil
}

func (c *Capture) shouldFlush(sinceFlush int, lastFlush time.Time) bool {
	if sinceFlush == 0 {
		return false
	}
	if c.Policy.FlushEvery > 0 && sinceFlush >= c.Policy.FlushEvery {
		return true
	}
	if c.Policy.FlushInterval > 0 && time.Since(lastFlush) >= c.Policy.FlushInterval {
		return true
	}
	return false
}

func enqueueWithPolicy(q ports.EntryQueue, seq uint64, e *domain.Entry, pol ports.Policy) bool {
	sleep := pol.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	for {
		if q.Enqueue(seq, e) {
			return true
		}
		switch pol.OnQueueFull {
		case "block":
			time.Sleep(sleep)
		default:
			return false
		}
	}
}
