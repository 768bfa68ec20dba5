// Package listener reads OSC datagrams from a UDP socket and hands decoded
// packets to the capture loop.
package listener

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/tonefall/oscrec/internal/adapters/observability"
	"github.com/tonefall/oscrec/internal/domain"
	"github.com/tonefall/oscrec/internal/ports"
)

// maxDatagram is the largest payload a UDP datagram can carry.
const maxDatagram = 65507

type Config struct {
	Address string
	Port    int

	// OnFull is the packet-channel backpressure policy: "block" or "drop".
	OnFull string
}

// UDPListener is the default Listener. One goroutine reads the socket,
// decodes, and produces to the out channel; packet order on the channel is
// arrival order.
type UDPListener struct {
	cfg  Config
	obs  ports.Observability
	conn net.PacketConn

	mu      sync.Mutex
	started bool
	wg      sync.WaitGroup
}

func New(cfg Config, obs ports.Observability) *UDPListener {
	if obs == nil {
		obs = observability.Nop{}
	}
	return &UDPListener{cfg: cfg, obs: obs}
}

// Addr reports the bound address; valid after Start. Tests use it to learn
// an ephemeral port.
func (l *UDPListener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return nil
	}
	return l.conn.LocalAddr()
}

func (l *UDPListener) Start(out chan<- *domain.Packet) error {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return fmt.Errorf("listener already started")
	}

	bind := net.JoinHostPort(l.cfg.Address, strconv.Itoa(l.cfg.Port))
	conn, err := net.ListenPacket("udp", bind)
	if err != nil {
		l.mu.Unlock()
		return fmt.Errorf("bind %s: %w", bind, err)
	}
	l.conn = conn
	l.started = true
	l.mu.Unlock()

	l.wg.Add(1)
	go l.read(conn, out)
	return nil
}

// Stop closes the socket and waits for the read goroutine to finish. After
// Stop returns no more packets will be produced, so the session may close
// the out channel.
func (l *UDPListener) Stop() error {
	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return nil
	}
	conn := l.conn
	l.started = false
	l.mu.Unlock()

	err := conn.Close()
	l.wg.Wait()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

func (l *UDPListener) read(conn net.PacketConn, out chan<- *domain.Packet) {
	defer l.wg.Done()

	buf := make([]byte, maxDatagram)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			l.obs.LogError("socket_read_failed", err)
			return
		}
		received := time.Now()

		raw := make([]byte, n)
		copy(raw, buf[:n])

		msgs, err := decodePacket(raw)
		if err != nil {
			// recoverable: the datagram is dropped, the session continues
			l.obs.IncCounter(observability.MetricDecodeFailures, 1)
			l.obs.LogError("osc_decode_failed", err)
			continue
		}
		l.obs.IncCounter(observability.MetricPacketsReceived, 1)

		pkt := &domain.Packet{Raw: raw, Messages: msgs, Received: received}
		if l.cfg.OnFull == "drop" {
			select {
			case out <- pkt:
			default:
				l.obs.IncCounter(observability.MetricQueueDropped, 1)
				l.obs.LogError("packet_dropped", fmt.Errorf("packet channel full"))
			}
		} else {
			out <- pkt
		}
	}
}

var _ ports.Listener = (*UDPListener)(nil)
