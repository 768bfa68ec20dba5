// Package oscrec is the embeddable recording engine: it wires the UDP
// listener, scheme extraction, session clock, recorder, repeater fan-out,
// and journal into one lifecycle-managed Session.
package oscrec

import (
	"github.com/tonefall/oscrec/internal/app/config"
	"github.com/tonefall/oscrec/internal/domain"
	"github.com/tonefall/oscrec/internal/ports"
	"github.com/tonefall/oscrec/internal/scheme"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// ListenConfig holds the UDP bind address and port.
	ListenConfig = config.ListenConfig
	// OutputConfig selects the recording destination and format.
	OutputConfig = config.OutputConfig
	// PostgresConfig configures the database recorder backend.
	PostgresConfig = config.PostgresConfig
	// JournalConfig configures on-disk durability.
	JournalConfig = config.JournalConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// DisplayConfig sizes the live display channel.
	DisplayConfig = config.DisplayConfig
	// Policy controls queue/flush thresholds.
	Policy = ports.Policy
)

// Message is one decoded OSC message: an address pattern plus its arguments.
type Message = domain.Message

// Packet is one received datagram after decoding, raw bytes included.
type Packet = domain.Packet

// Record is the scheme-extracted payload of one message.
type Record = domain.Record

// Entry is one timestamped record in the recording log.
type Entry = domain.Entry

// DisplayEvent is the best-effort live feed emitted once per recorded message.
type DisplayEvent = ports.DisplayEvent

// Listener reads datagrams from the wire and delivers decoded packets.
type Listener = ports.Listener

// Recorder owns the in-memory recording log and its persistence.
type Recorder = ports.Recorder

// Repeater fans the raw datagram out to downstream targets.
type Repeater = ports.Repeater

// RepeaterTarget is one fan-out destination.
type RepeaterTarget = ports.RepeaterTarget

// Journal is the append-only durability log behind the entry queue.
type Journal = ports.Journal

// JournalEntryID identifies one journal entry.
type JournalEntryID = ports.JournalEntryID

// JournalStats exposes journal metadata for observability.
type JournalStats = ports.JournalStats

// EntryQueue buffers entries between the capture loop and the journal writer.
type EntryQueue = ports.EntryQueue

// QueuedEntry is one buffered queue item.
type QueuedEntry = ports.QueuedEntry

// Observability emits metrics and structured logs for the session.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// ErrUnknownScheme is returned when a configured scheme name does not exist.
var ErrUnknownScheme = scheme.ErrUnknown

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	return config.Default()
}

// Schemes lists the available extraction scheme names, sorted.
func Schemes() []string {
	return scheme.NewRegistry().Names()
}
