package pipeline

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonefall/oscrec/internal/adapters/queue"
	"github.com/tonefall/oscrec/internal/clock"
	"github.com/tonefall/oscrec/internal/domain"
	"github.com/tonefall/oscrec/internal/ports"
	"github.com/tonefall/oscrec/internal/scheme"
)

type memRecorder struct {
	mu      sync.Mutex
	entries []*domain.Entry
	flushes int
}

func (r *memRecorder) Append(e *domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *memRecorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes++
	return nil
}

func (r *memRecorder) Close() error { return nil }

func (r *memRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *memRecorder) Name() string { return "mem" }

type memRepeater struct {
	mu   sync.Mutex
	raws [][]byte
}

func (r *memRepeater) Forward(raw []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raws = append(r.raws, raw)
}

func (r *memRepeater) Close() error { return nil }

func runCapture(t *testing.T, c *Capture, pkts ...*domain.Packet) {
	t.Helper()
	in := make(chan *domain.Packet, len(pkts))
	for _, p := range pkts {
		in <- p
	}
	close(in)
	require.NoError(t, c.Run(in))
}

func TestCaptureRecordsInArrivalOrder(t *testing.T) {
	rec := &memRecorder{}
	base := time.Now()
	c := &Capture{
		Kind:     scheme.Basic,
		Clock:    clock.NewAt(base, false),
		Recorder: rec,
	}

	runCapture(t, c,
		&domain.Packet{
			Messages: []domain.Message{{Address: "/a", Args: []any{int32(1)}}},
			Received: base.Add(100 * time.Millisecond),
		},
		&domain.Packet{
			Messages: []domain.Message{{Address: "/b", Args: []any{int32(2)}}},
			Received: base.Add(200 * time.Millisecond),
		},
	)

	require.Len(t, rec.entries, 2)
	assert.Equal(t, domain.Record{"address": "/a", "args": []any{int32(1)}}, rec.entries[0].Record)
	assert.Equal(t, domain.Record{"address": "/b", "args": []any{int32(2)}}, rec.entries[1].Record)
	assert.Less(t, rec.entries[0].Time, rec.entries[1].Time)
}

func TestCaptureQuantizedSession(t *testing.T) {
	rec := &memRecorder{}
	base := time.Now()
	c := &Capture{
		Kind:     scheme.OnlyNumbers,
		Clock:    clock.NewAt(base, true),
		Recorder: rec,
	}

	// first packet lands three seconds into the session; quantization pins
	// the origin there so the first entry is stamped 0.0
	pkts := []*domain.Packet{
		{
			Messages: []domain.Message{{Address: "/x", Args: []any{int32(1), "a", int32(2)}}},
			Received: base.Add(3 * time.Second),
		},
		{
			Messages: []domain.Message{{Address: "/x", Args: []any{int32(3), "b", int32(4)}}},
			Received: base.Add(4 * time.Second),
		},
		{
			Messages: []domain.Message{{Address: "/x", Args: []any{int32(5), "c", int32(6)}}},
			Received: base.Add(5 * time.Second),
		},
	}
	runCapture(t, c, pkts...)

	require.Len(t, rec.entries, 3)
	assert.Equal(t, 0.0, rec.entries[0].Time)
	assert.InDelta(t, 1.0, rec.entries[1].Time, 1e-9)
	assert.InDelta(t, 2.0, rec.entries[2].Time, 1e-9)

	assert.Equal(t, domain.Record{"address": "/x", "args": []any{int32(1), int32(2)}}, rec.entries[0].Record)
	assert.Equal(t, domain.Record{"address": "/x", "args": []any{int32(3), int32(4)}}, rec.entries[1].Record)
	assert.Equal(t, domain.Record{"address": "/x", "args": []any{int32(5), int32(6)}}, rec.entries[2].Record)
}

func TestCaptureForwardsRawOncePerPacket(t *testing.T) {
	rec := &memRecorder{}
	rep := &memRepeater{}
	c := &Capture{
		Kind:     scheme.Basic,
		Clock:    clock.New(false),
		Recorder: rec,
		Repeater: rep,
	}

	raw := []byte{0x2f, 0x61, 0, 0}
	runCapture(t, c, &domain.Packet{
		Raw: raw,
		Messages: []domain.Message{
			{Address: "/a", Args: nil},
			{Address: "/b", Args: nil},
		},
		Received: time.Now(),
	})

	// two messages from one datagram still mean one forward
	require.Len(t, rep.raws, 1)
	assert.Equal(t, raw, rep.raws[0])
	assert.Len(t, rec.entries, 2)
}

func TestCaptureFlushEvery(t *testing.T) {
	rec := &memRecorder{}
	c := &Capture{
		Kind:     scheme.Basic,
		Clock:    clock.New(false),
		Recorder: rec,
		Policy:   ports.Policy{FlushEvery: 2},
	}

	var pkts []*domain.Packet
	for i := 0; i < 5; i++ {
		pkts = append(pkts, &domain.Packet{
			Messages: []domain.Message{{Address: "/n", Args: []any{int32(i)}}},
			Received: time.Now(),
		})
	}
	runCapture(t, c, pkts...)

	assert.Len(t, rec.entries, 5)
	assert.Equal(t, 2, rec.flushes)
}

func TestCaptureEnqueuesForJournal(t *testing.T) {
	rec := &memRecorder{}
	q := queue.NewMemQueue(8)
	c := &Capture{
		Kind:     scheme.Basic,
		Clock:    clock.New(false),
		Recorder: rec,
		Queue:    q,
		Policy:   ports.Policy{OnQueueFull: "drop"},
	}

	runCapture(t, c, &domain.Packet{
		Messages: []domain.Message{
			{Address: "/a", Args: []any{int32(1)}},
			{Address: "/b", Args: []any{int32(2)}},
		},
		Received: time.Now(),
	})

	got := q.DequeueBatch(8)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].Seq)
	assert.Equal(t, uint64(2), got[1].Seq)
	assert.Equal(t, rec.entries[0], got[0].Entry)
}

func TestCaptureDropPolicyOnFullQueue(t *testing.T) {
	rec := &memRecorder{}
	q := queue.NewMemQueue(1)
	c := &Capture{
		Kind:     scheme.Basic,
		Clock:    clock.New(false),
		Recorder: rec,
		Queue:    q,
		Policy:   ports.Policy{OnQueueFull: "drop"},
	}

	runCapture(t, c, &domain.Packet{
		Messages: []domain.Message{
			{Address: "/a", Args: nil},
			{Address: "/b", Args: nil},
		},
		Received: time.Now(),
	})

	// recording is unaffected by the dropped journal enqueue
	assert.Len(t, rec.entries, 2)
	assert.Equal(t, 1, q.Len())
}

func TestCaptureDisplayNeverBlocks(t *testing.T) {
	rec := &memRecorder{}
	display := make(chan ports.DisplayEvent, 1)
	c := &Capture{
		Kind:     scheme.Basic,
		Clock:    clock.New(false),
		Recorder: rec,
		Display:  display,
	}

	var pkts []*domain.Packet
	for i := 0; i < 4; i++ {
		pkts = append(pkts, &domain.Packet{
			Messages: []domain.Message{{Address: "/d", Args: []any{int32(i)}}},
			Received: time.Now(),
		})
	}
	runCapture(t, c, pkts...)

	assert.Len(t, rec.entries, 4)
	ev := <-display
	assert.Equal(t, "/d", ev.Address)
}
