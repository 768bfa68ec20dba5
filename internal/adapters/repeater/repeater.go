// Package repeater forwards received datagrams, byte for byte, to a fixed
// set of downstream targets.
package repeater

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/tonefall/oscrec/internal/adapters/observability"
	"github.com/tonefall/oscrec/internal/ports"
)

// Fanout holds one connected UDP socket per target. Targets never mutate
// after Dial; retransmission is bit-identical to the received packet.
type Fanout struct {
	targets []ports.RepeaterTarget
	conns   []*net.UDPConn
	timeout time.Duration
	obs     ports.Observability
	wg      sync.WaitGroup
}

// Dial resolves and connects every target. A target that cannot be resolved
// is a startup error: the session refuses to start rather than silently
// forward to fewer destinations than configured.
func Dial(targets []ports.RepeaterTarget, timeout time.Duration, obs ports.Observability) (*Fanout, error) {
	if obs == nil {
		obs = observability.Nop{}
	}
	f := &Fanout{timeout: timeout, obs: obs}
	for _, t := range targets {
		addr, err := net.ResolveUDPAddr("udp", t.Addr())
		if err != nil {
			f.closeConns()
			return nil, fmt.Errorf("resolve repeater %s: %w", t.Addr(), err)
		}
		conn, err := net.DialUDP("udp", nil, addr)
		if err != nil {
			f.closeConns()
			return nil, fmt.Errorf("dial repeater %s: %w", t.Addr(), err)
		}
		f.targets = append(f.targets, t)
		f.conns = append(f.conns, conn)
	}
	return f, nil
}

// Forward hands the datagram to every target and returns without waiting.
// Sends are independent: one unreachable target never delays or suppresses
// the others, and never reaches back into the recording path.
func (f *Fanout) Forward(raw []byte) {
	if len(f.conns) == 0 || len(raw) == 0 {
		return
	}
	for i := range f.conns {
		f.wg.Add(1)
		go f.send(f.conns[i], f.targets[i], raw)
	}
}

func (f *Fanout) send(conn *net.UDPConn, target ports.RepeaterTarget, raw []byte) {
	defer f.wg.Done()
	if f.timeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(f.timeout))
	}
	if _, err := conn.Write(raw); err != nil {
		f.obs.IncCounter(observability.MetricRepeatFailures, 1)
		f.obs.LogError("repeat_send_failed", err,
			ports.Field{Key: "target", Value: target.Addr()})
		return
	}
	f.obs.IncCounter(observability.MetricRepeatsSent, 1)
}

// Close waits for in-flight sends and releases the sockets.
func (f *Fanout) Close() error {
	f.wg.Wait()
	return f.closeConns()
}

func (f *Fanout) closeConns() error {
	var errs []error
	for _, conn := range f.conns {
		if err := conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	f.conns = nil
	return errors.Join(errs...)
}

var _ ports.Repeater = (*Fanout)(nil)
