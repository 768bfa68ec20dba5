package pipeline

import (
	"time"

	"github.com/tonefall/oscrec/internal/adapters/observability"
	"github.com/tonefall/oscrec/internal/ports"
)

// JournalWriter drains the entry queue into the durable journal in batches
// and advances the committed watermark after each batch.
type JournalWriter struct {
	Queue   ports.EntryQueue
	Journal ports.Journal
	Policy  ports.Policy
	Obs     ports.Observability
}

// Run loops until stop is closed, then performs a final drain so that every
// entry the capture loop enqueued reaches the journal before shutdown.
func (w *JournalWriter) Run(stop <-chan struct{}) {
	obs := w.Obs
	if obs == nil {
		obs = observability.Nop{}
	}

	batch := w.Policy.MaxBatchSize
	if batch <= 0 {
		batch = 256
	}
	sleep := w.Policy.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	for {
		n := w.writeBatch(batch, obs)
		if n == 0 {
			select {
			case <-stop:
				for w.writeBatch(batch, obs) > 0 {
				}
				return
			case <-time.After(sleep):
			}
		}
	}
}

func (w *JournalWriter) writeBatch(max int, obs ports.Observability) int {
	entries := w.Queue.DequeueBatch(max)
	if len(entries) == 0 {
		return 0
	}

	var lastID ports.JournalEntryID
	for _, qe := range entries {
		id, err := w.Journal.Append(qe.Entry)
		if err != nil {
			obs.LogError("journal_append_failed", err,
				ports.Field{Key: "seq", Value: qe.Seq})
			continue
		}
		lastID = id
	}
	if lastID > 0 {
		if err := w.Journal.Commit(lastID); err != nil {
			obs.LogError("journal_commit_failed", err)
		}
	}

	obs.SetGauge(observability.MetricJournalSizeBytes, float64(w.Journal.Stats().SizeBytes))
	obs.SetGauge(observability.MetricQueueLength, float64(w.Queue.Len()))
	return len(entries)
}
