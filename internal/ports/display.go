package ports

import "github.com/tonefall/oscrec/internal/domain"

// DisplayEvent is emitted once per processed message for an external console
// renderer. Delivery is best-effort: events are dropped, never blocking,
// when the consumer lags.
type DisplayEvent struct {
	Time    float64
	Address string
	Record  domain.Record
}
