package ports

import "github.com/tonefall/oscrec/internal/domain"

// Recorder owns the recording log. Append preserves insertion order, Flush
// persists the log to the configured destination, Close performs the final
// flush and releases resources. The in-memory log is the source of truth
// until Close; mid-session flushes are a durability valve, not a
// correctness requirement.
type Recorder interface {
	Append(e *domain.Entry) error
	Flush() error
	Close() error
	Len() int
	Name() string
}
