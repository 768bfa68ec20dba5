package ports

import "github.com/tonefall/oscrec/internal/domain"

// QueuedEntry is one item buffered between the capture loop and the journal
// writer. Seq is the capture loop's per-session sequence number.
type QueuedEntry struct {
	Seq   uint64
	Entry *domain.Entry
}

// EntryQueue is a bounded FIFO. Enqueue reports false when the queue is at
// capacity; the caller applies the configured backpressure policy.
type EntryQueue interface {
	Enqueue(seq uint64, e *domain.Entry) bool
	DequeueBatch(max int) []QueuedEntry
	Len() int
}
