package oscrec

import (
	"context"
	"fmt"
)

// Deck is a convenience builder that lets callers say Conf → Source → Record
// without touching the underlying wiring.
type Deck struct {
	cfg  *Config
	opts []SessionOption
}

// DeckOption mutates the Deck after configuration is loaded.
type DeckOption func(*Deck)

// SourceOption configures the listener/queue side of the session.
type SourceOption func(*Deck)

// RecordOption configures the recorder/repeater/display side of the session.
type RecordOption func(*Deck)

// Conf loads YAML from disk, applies DeckOption values, and returns a Deck
// builder.
func Conf(path string, opts ...DeckOption) (*Deck, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return ConfFromConfig(cfg, opts...)
}

// ConfFromConfig bootstraps a Deck from an in-memory Config.
func ConfFromConfig(cfg *Config, opts ...DeckOption) (*Deck, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	d := &Deck{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// Config returns the underlying configuration so callers can tweak it before
// building a session.
func (d *Deck) Config() *Config {
	if d == nil {
		return nil
	}
	return d.cfg
}

// Options appends raw SessionOption values to the builder for advanced
// scenarios.
func (d *Deck) Options(opts ...SessionOption) *Deck {
	if d == nil {
		return nil
	}
	d.appendOptions(opts...)
	return d
}

// Source records listener-side overrides (listener, queue, observability).
func (d *Deck) Source(opts ...SourceOption) *Deck {
	if d == nil {
		return nil
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Record records output-side overrides and builds a Session ready to run.
func (d *Deck) Record(opts ...RecordOption) (*Session, error) {
	if d == nil {
		return nil, fmt.Errorf("deck is nil")
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return NewSession(d.cfg, d.opts...)
}

// Run is a shortcut for Record + session.Run.
func (d *Deck) Run(ctx context.Context, opts ...RecordOption) error {
	s, err := d.Record(opts...)
	if err != nil {
		return err
	}
	return s.Run(ctx)
}

// WithDeckOptions appends SessionOption values during Conf.
func WithDeckOptions(opts ...SessionOption) DeckOption {
	return func(d *Deck) {
		if d != nil {
			d.appendOptions(opts...)
		}
	}
}

// SourceListener injects a custom packet source (TCP, pcap replay, simulators).
func SourceListener(l Listener) SourceOption {
	return func(d *Deck) {
		if d != nil && l != nil {
			d.appendOptions(WithListener(l))
		}
	}
}

// SourceQueue swaps the in-memory entry queue for a caller-provided one.
func SourceQueue(q EntryQueue) SourceOption {
	return func(d *Deck) {
		if d != nil && q != nil {
			d.appendOptions(WithQueue(q))
		}
	}
}

// SourceJournal lets callers bring their own journal implementation.
func SourceJournal(j Journal) SourceOption {
	return func(d *Deck) {
		if d != nil && j != nil {
			d.appendOptions(WithJournal(j))
		}
	}
}

// SourceObservability overrides the default Prometheus-based stack.
func SourceObservability(obs Observability) SourceOption {
	return func(d *Deck) {
		if d != nil && obs != nil {
			d.appendOptions(WithObservability(obs))
		}
	}
}

// RecordTo injects a custom recorder implementation.
func RecordTo(r Recorder) RecordOption {
	return func(d *Deck) {
		if d != nil && r != nil {
			d.appendOptions(WithRecorder(r))
		}
	}
}

// RecordRepeater overrides the default UDP fan-out.
func RecordRepeater(r Repeater) RecordOption {
	return func(d *Deck) {
		if d != nil && r != nil {
			d.appendOptions(WithRepeater(r))
		}
	}
}

// RecordDisplay attaches a live display channel to the session.
func RecordDisplay(ch chan<- DisplayEvent) RecordOption {
	return func(d *Deck) {
		if d != nil && ch != nil {
			d.appendOptions(WithDisplay(ch))
		}
	}
}

// RecordObservability replaces the default observability backend.
func RecordObservability(obs Observability) RecordOption {
	return func(d *Deck) {
		if d != nil && obs != nil {
			d.appendOptions(WithObservability(obs))
		}
	}
}

func (d *Deck) appendOptions(opts ...SessionOption) {
	for _, opt := range opts {
		if opt != nil {
			d.opts = append(d.opts, opt)
		}
	}
}
