package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonefall/oscrec/internal/adapters/journal"
	"github.com/tonefall/oscrec/internal/adapters/queue"
	"github.com/tonefall/oscrec/internal/domain"
	"github.com/tonefall/oscrec/internal/ports"
)

func TestJournalWriterDrainsQueueAndCommits(t *testing.T) {
	jr, err := journal.Open(t.TempDir())
	require.NoError(t, err)
	defer jr.Close()

	q := queue.NewMemQueue(16)
	for i := 1; i <= 5; i++ {
		ok := q.Enqueue(uint64(i), &domain.Entry{
			Time:   float64(i),
			Record: domain.Record{"address": "/j", "args": []any{int32(i)}},
		})
		require.True(t, ok)
	}

	w := &JournalWriter{
		Queue:   q,
		Journal: jr,
		Policy:  ports.Policy{MaxBatchSize: 2, IdleSleep: time.Millisecond},
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		w.Run(stop)
		close(done)
	}()
	close(stop)
	<-done

	assert.Equal(t, 0, q.Len())

	stats := jr.Stats()
	assert.Equal(t, ports.JournalEntryID(5), stats.LatestAppended)
	assert.Equal(t, ports.JournalEntryID(6), stats.OldestUncommitted)

	var times []float64
	require.NoError(t, jr.Iterate(0, func(id ports.JournalEntryID, e *domain.Entry) error {
		times = append(times, e.Time)
		return nil
	}))
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, times)
}

func TestJournalWriterFinalDrainOnStop(t *testing.T) {
	jr, err := journal.Open(t.TempDir())
	require.NoError(t, err)
	defer jr.Close()

	q := queue.NewMemQueue(64)
	w := &JournalWriter{
		Queue:   q,
		Journal: jr,
		Policy:  ports.Policy{MaxBatchSize: 8, IdleSleep: time.Millisecond},
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		w.Run(stop)
		close(done)
	}()

	// enqueue while the writer is already running, then stop immediately;
	// the final drain must still pick up every entry
	for i := 1; i <= 20; i++ {
		require.True(t, q.Enqueue(uint64(i), &domain.Entry{
			Time:   float64(i),
			Record: domain.Record{"address": "/d"},
		}))
	}
	close(stop)
	<-done

	assert.Equal(t, 0, q.Len())
	assert.Equal(t, ports.JournalEntryID(20), jr.Stats().LatestAppended)
}
