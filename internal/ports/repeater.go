package ports

import (
	"net"
	"strconv"
)

// RepeaterTarget is one downstream destination for raw packet fan-out. The
// target set is fixed for the session once configured.
type RepeaterTarget struct {
	Host string
	Port int
}

func (t RepeaterTarget) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// Repeater forwards the identical raw datagram to every configured target.
// Forward hands the sends off and returns immediately; sends may outlive the
// append of the message that triggered them. A failed target never affects
// the others or the recording path.
type Repeater interface {
	Forward(raw []byte)
	Close() error
}
