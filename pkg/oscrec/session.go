package oscrec

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tonefall/oscrec/internal/adapters/journal"
	"github.com/tonefall/oscrec/internal/adapters/listener"
	"github.com/tonefall/oscrec/internal/adapters/observability"
	"github.com/tonefall/oscrec/internal/adapters/queue"
	"github.com/tonefall/oscrec/internal/adapters/recorder"
	"github.com/tonefall/oscrec/internal/adapters/repeater"
	"github.com/tonefall/oscrec/internal/app/pipeline"
	"github.com/tonefall/oscrec/internal/clock"
	"github.com/tonefall/oscrec/internal/domain"
	"github.com/tonefall/oscrec/internal/ports"
	"github.com/tonefall/oscrec/internal/scheme"
)

// SessionOption customizes the dependencies used by Session.
type SessionOption func(*sessionOverrides)

type sessionOverrides struct {
	listener      Listener
	recorder      Recorder
	repeater      Repeater
	journal       Journal
	queue         EntryQueue
	observability Observability
	display       chan<- ports.DisplayEvent
}

// WithListener injects a custom packet source (TCP, pcap replay, simulators).
func WithListener(l Listener) SessionOption {
	return func(o *sessionOverrides) {
		o.listener = l
	}
}

// WithRecorder injects a custom recorder so entries can land anywhere.
func WithRecorder(r Recorder) SessionOption {
	return func(o *sessionOverrides) {
		o.recorder = r
	}
}

// WithRepeater overrides the default UDP fan-out.
func WithRepeater(r Repeater) SessionOption {
	return func(o *sessionOverrides) {
		o.repeater = r
	}
}

// WithJournal lets callers bring their own journal implementation.
func WithJournal(j Journal) SessionOption {
	return func(o *sessionOverrides) {
		o.journal = j
	}
}

// WithQueue injects a custom entry queue implementation.
func WithQueue(q EntryQueue) SessionOption {
	return func(o *sessionOverrides) {
		o.queue = q
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) SessionOption {
	return func(o *sessionOverrides) {
		o.observability = obs
	}
}

// WithDisplay attaches a live display channel. Delivery is best-effort; the
// session never blocks on it and never closes it.
func WithDisplay(ch chan<- DisplayEvent) SessionOption {
	return func(o *sessionOverrides) {
		o.display = ch
	}
}

// Session wires up the listener → capture → recorder/repeater/journal
// pipeline and exposes simple lifecycle hooks for embedding the recorder
// inside any Go service.
type Session struct {
	cfg        *Config
	kind       scheme.Kind
	clk        *clock.Clock
	obs        ports.Observability
	listener   ports.Listener
	recorder   ports.Recorder
	repeater   ports.Repeater
	journal    ports.Journal
	queue      ports.EntryQueue
	display    chan<- ports.DisplayEvent
	db         *sql.DB
	metricsSrv *http.Server

	in            chan *domain.Packet
	captureDoneCh chan struct{}
	journalStopCh chan struct{}
	journalDoneCh chan struct{}
}

// NewSession bootstraps the default adapters (UDP listener, file recorder,
// UDP repeater fan-out, file journal, in-memory queue, Prometheus
// observability). The scheme name is resolved before anything touches the
// network, so a misconfigured scheme fails fast with no socket bound.
func NewSession(cfg *Config, opts ...SessionOption) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var overrides sessionOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	kind, err := scheme.NewRegistry().Resolve(cfg.Scheme)
	if err != nil {
		return nil, err
	}

	obs := overrides.observability
	if obs == nil {
		obs = observability.NewPromObs(nil)
	}

	s := &Session{
		cfg:     cfg,
		kind:    kind,
		clk:     clock.New(cfg.Quantize),
		obs:     obs,
		display: overrides.display,
	}

	s.recorder = overrides.recorder
	if s.recorder == nil {
		switch cfg.Output.Backend {
		case "postgres":
			db, err := sql.Open("postgres", cfg.Output.Postgres.ConnString)
			if err != nil {
				return nil, err
			}
			if err := db.Ping(); err != nil {
				db.Close()
				return nil, fmt.Errorf("postgres backend: %w", err)
			}
			s.db = db
			s.recorder = recorder.NewPostgresRecorder(db, cfg.Output.Postgres.Table)
		default:
			rec, err := recorder.NewFileRecorder(cfg.Output.Path, cfg.Output.Format)
			if err != nil {
				return nil, err
			}
			s.recorder = rec
		}
	}

	s.repeater = overrides.repeater
	if s.repeater == nil && len(cfg.Repeaters) > 0 {
		targets, err := cfg.RepeaterTargets()
		if err != nil {
			s.closePartial()
			return nil, err
		}
		rep, err := repeater.Dial(targets, cfg.Policy.RepeatTimeout, obs)
		if err != nil {
			s.closePartial()
			return nil, err
		}
		s.repeater = rep
	}

	s.journal = overrides.journal
	if s.journal == nil && cfg.Journal.Dir != "" {
		jr, err := journal.Open(cfg.Journal.Dir)
		if err != nil {
			s.closePartial()
			return nil, err
		}
		s.journal = jr
	}

	if s.journal != nil {
		s.queue = overrides.queue
		if s.queue == nil {
			s.queue = queue.NewMemQueue(cfg.Policy.MaxQueueLen)
		}
	}

	s.listener = overrides.listener
	if s.listener == nil {
		s.listener = listener.New(listener.Config{
			Address: cfg.Listen.Address,
			Port:    cfg.Listen.Port,
			OnFull:  cfg.Policy.OnQueueFull,
		}, obs)
	}

	return s, nil
}

// Recorder exposes the active recorder, mainly so callers can inspect Len.
func (s *Session) Recorder() Recorder { return s.recorder }

// Start binds the listener and launches the capture and journal loops. It
// returns immediately; call Run to block on a context instead.
func (s *Session) Start() error {
	if s == nil {
		return fmt.Errorf("session is nil")
	}

	s.in = make(chan *domain.Packet, s.cfg.Policy.MaxQueueLen)
	if err := s.listener.Start(s.in); err != nil {
		return err
	}

	loop := &pipeline.Capture{
		Kind:     s.kind,
		Clock:    s.clk,
		Recorder: s.recorder,
		Repeater: s.repeater,
		Queue:    s.queue,
		Policy:   s.cfg.Policy,
		Obs:      s.obs,
		Display:  s.display,
	}
	s.captureDoneCh = make(chan struct{})
	in := s.in
	go func() {
		if err := loop.Run(in); err != nil {
			s.obs.LogError("capture_loop_failed", err)
		}
		close(s.captureDoneCh)
	}()

	if s.journal != nil {
		w := &pipeline.JournalWriter{
			Queue:   s.queue,
			Journal: s.journal,
			Policy:  s.cfg.Policy,
			Obs:     s.obs,
		}
		s.journalStopCh = make(chan struct{})
		s.journalDoneCh = make(chan struct{})
		go func() {
			w.Run(s.journalStopCh)
			close(s.journalDoneCh)
		}()
	}

	s.startMetrics()

	s.obs.LogInfo("session_started",
		ports.Field{Key: "scheme", Value: s.kind.String()},
		ports.Field{Key: "recorder", Value: s.recorder.Name()},
		ports.Field{Key: "quantize", Value: s.clk.Quantized()})
	return nil
}

// Run starts the session and blocks until the provided context is cancelled,
// then performs a graceful shutdown: stop the socket, drain every packet
// already received, flush the recorder, close everything.
func (s *Session) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops intake first so no packet received before the signal is
// dropped: the listener is stopped, the channel closed, and the capture loop
// drains what remains before the recorder's final flush.
func (s *Session) Shutdown(ctx context.Context) error {
	var errs []error

	if s.listener != nil {
		if err := s.listener.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.in != nil {
		close(s.in)
		s.in = nil
	}
	if s.captureDoneCh != nil {
		<-s.captureDoneCh
	}

	if s.journalStopCh != nil {
		close(s.journalStopCh)
		<-s.journalDoneCh
	}
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if s.recorder != nil {
		if err := s.recorder.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if s.repeater != nil {
		if err := s.repeater.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if s.metricsSrv != nil {
		if err := s.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s *Session) startMetrics() {
	if s.cfg.Metrics.Addr == "" {
		return
	}

	mux := http.NewServeMux()
	if prom, ok := s.obs.(*observability.PromObs); ok {
		mux.Handle("/metrics", promhttp.HandlerFor(prom.Registry(), promhttp.HandlerOpts{}))
	} else {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.metricsSrv = &http.Server{
		Addr:    s.cfg.Metrics.Addr,
		Handler: mux,
	}

	go func() {
		if err := s.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.obs.LogError("metrics_server_exited", err,
				ports.Field{Key: "addr", Value: s.cfg.Metrics.Addr})
		}
	}()
}

// closePartial releases what a failed NewSession already acquired: repeater
// sockets and the database handle. The recorder is deliberately left alone;
// its Close flushes, and flushing an empty log would clobber a previous
// recording at the same path.
func (s *Session) closePartial() {
	if s.repeater != nil {
		s.repeater.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}
