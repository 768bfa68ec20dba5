package oscrec

import (
	base "github.com/tonefall/oscrec/pkg/oscrec"
)

// Re-exported errors for convenience.
var (
	ErrUnknownScheme = base.ErrUnknownScheme
)

// Type aliases so consumers can import github.com/tonefall/oscrec directly.
type (
	Config         = base.Config
	ListenConfig   = base.ListenConfig
	OutputConfig   = base.OutputConfig
	PostgresConfig = base.PostgresConfig
	JournalConfig  = base.JournalConfig
	MetricsConfig  = base.MetricsConfig
	DisplayConfig  = base.DisplayConfig
	Policy         = base.Policy
	Deck           = base.Deck
	DeckOption     = base.DeckOption
	SourceOption   = base.SourceOption
	RecordOption   = base.RecordOption
	Session        = base.Session
	SessionOption  = base.SessionOption
	Message        = base.Message
	Packet         = base.Packet
	Record         = base.Record
	Entry          = base.Entry
	DisplayEvent   = base.DisplayEvent
	Listener       = base.Listener
	Recorder       = base.Recorder
	Repeater       = base.Repeater
	RepeaterTarget = base.RepeaterTarget
	Journal        = base.Journal
	JournalEntryID = base.JournalEntryID
	JournalStats   = base.JournalStats
	EntryQueue     = base.EntryQueue
	QueuedEntry    = base.QueuedEntry
	Observability  = base.Observability
	Field          = base.Field
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func DefaultConfig() *Config {
	return base.DefaultConfig()
}

func Schemes() []string {
	return base.Schemes()
}

// Deck builder helpers.
func Conf(path string, opts ...DeckOption) (*Deck, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...DeckOption) (*Deck, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithDeckOptions(opts ...SessionOption) DeckOption {
	return base.WithDeckOptions(opts...)
}

func SourceListener(l Listener) SourceOption {
	return base.SourceListener(l)
}

func SourceQueue(q EntryQueue) SourceOption {
	return base.SourceQueue(q)
}

func SourceJournal(j Journal) SourceOption {
	return base.SourceJournal(j)
}

func SourceObservability(obs Observability) SourceOption {
	return base.SourceObservability(obs)
}

func RecordTo(r Recorder) RecordOption {
	return base.RecordTo(r)
}

func RecordRepeater(r Repeater) RecordOption {
	return base.RecordRepeater(r)
}

func RecordDisplay(ch chan<- DisplayEvent) RecordOption {
	return base.RecordDisplay(ch)
}

func RecordObservability(obs Observability) RecordOption {
	return base.RecordObservability(obs)
}

// Session and options.
func NewSession(cfg *Config, opts ...SessionOption) (*Session, error) {
	return base.NewSession(cfg, opts...)
}

func WithListener(l Listener) SessionOption {
	return base.WithListener(l)
}

func WithRecorder(r Recorder) SessionOption {
	return base.WithRecorder(r)
}

func WithRepeater(r Repeater) SessionOption {
	return base.WithRepeater(r)
}

func WithJournal(j Journal) SessionOption {
	return base.WithJournal(j)
}

func WithQueue(q EntryQueue) SessionOption {
	return base.WithQueue(q)
}

func WithObservability(obs Observability) SessionOption {
	return base.WithObservability(obs)
}

func WithDisplay(ch chan<- DisplayEvent) SessionOption {
	return base.WithDisplay(ch)
}

// Display adapters.
func NewDisplayChannel(buffer int) (chan<- DisplayEvent, <-chan DisplayEvent, func()) {
	return base.NewDisplayChannel(buffer)
}

func NewDisplayFunc(buffer int, fn func(DisplayEvent)) (chan<- DisplayEvent, func()) {
	return base.NewDisplayFunc(buffer, fn)
}
