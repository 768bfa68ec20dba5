package ports

import "github.com/tonefall/oscrec/internal/domain"

type JournalEntryID uint64

// Journal is the optional on-disk append log used as an incremental
// durability valve and for crash recovery. IDs are strictly increasing;
// Commit advances a watermark that survives restarts.
type Journal interface {
	Append(e *domain.Entry) (JournalEntryID, error)
	Iterate(from JournalEntryID, fn func(id JournalEntryID, e *domain.Entry) error) error
	Commit(upto JournalEntryID) error
	Stats() JournalStats
	Close() error
}

type JournalStats struct {
	OldestUncommitted JournalEntryID
	LatestAppended    JournalEntryID
	SizeBytes         int64
}
