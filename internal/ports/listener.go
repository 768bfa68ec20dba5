package ports

import "github.com/tonefall/oscrec/internal/domain"

// Listener is the inbound side of the session: it reads datagrams from the
// wire, decodes them, and delivers packets to out. The session owns out and
// closes it only after Stop has returned.
type Listener interface {
	Start(out chan<- *domain.Packet) error
	Stop() error
}
