package observability

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tonefall/oscrec/internal/ports"
)

// Metric names shared between the pipeline and the stats CLI.
const (
	MetricPacketsReceived  = "oscrec_packets_received_total"
	MetricDecodeFailures   = "oscrec_decode_failures_total"
	MetricMessagesRecorded = "oscrec_messages_recorded_total"
	MetricRepeatsSent      = "oscrec_repeats_sent_total"
	MetricRepeatFailures   = "oscrec_repeat_failures_total"
	MetricQueueDropped     = "oscrec_queue_dropped_total"
	MetricQueueLength      = "oscrec_queue_length"
	MetricJournalSizeBytes = "oscrec_journal_size_bytes"
	MetricRecordingEntries = "oscrec_recording_entries"
	MetricFlushDuration    = "oscrec_flush_duration_seconds"
)

// PromObs backs the Observability port with a dedicated Prometheus registry
// and structured logging via slog.
type PromObs struct {
	logger   *slog.Logger
	registry *prometheus.Registry
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

func NewPromObs(logger *slog.Logger) *PromObs {
	if logger == nil {
		logger = slog.Default()
	}

	packets := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricPacketsReceived,
		Help: "Total OSC datagrams received on the listen socket.",
	})
	decodeFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricDecodeFailures,
		Help: "Datagrams dropped because they could not be decoded as OSC.",
	})
	recorded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricMessagesRecorded,
		Help: "Messages appended to the recording log.",
	})
	repeats := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricRepeatsSent,
		Help: "Raw packets forwarded to repeater targets.",
	})
	repeatFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricRepeatFailures,
		Help: "Repeater sends that failed or timed out.",
	})
	queueDrops := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricQueueDropped,
		Help: "Entries lost to queue backpressure policy.",
	})
	queueLen := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricQueueLength,
		Help: "Current number of entries buffered for the journal writer.",
	})
	journalSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricJournalSizeBytes,
		Help: "Size of the on-disk journal.",
	})
	recording := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricRecordingEntries,
		Help: "Current length of the in-memory recording log.",
	})
	flushDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    MetricFlushDuration,
		Help:    "Duration of recorder flushes.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(packets, decodeFailures, recorded, repeats,
		repeatFailures, queueDrops, queueLen, journalSize, recording, flushDuration)

	return &PromObs{
		logger:   logger,
		registry: registry,
		counters: map[string]prometheus.Counter{
			MetricPacketsReceived:  packets,
			MetricDecodeFailures:   decodeFailures,
			MetricMessagesRecorded: recorded,
			MetricRepeatsSent:      repeats,
			MetricRepeatFailures:   repeatFailures,
			MetricQueueDropped:     queueDrops,
		},
		gauges: map[string]prometheus.Gauge{
			MetricQueueLength:      queueLen,
			MetricJournalSizeBytes: journalSize,
			MetricRecordingEntries: recording,
		},
		histos: map[string]prometheus.Observer{
			MetricFlushDuration: flushDuration,
		},
	}
}

// Registry exposes the backing registry for the metrics HTTP endpoint.
func (p *PromObs) Registry() *prometheus.Registry { return p.registry }

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.logger.Info(msg, attrs(fields)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	p.logger.Error(msg, append([]any{slog.Any("error", err)}, attrs(fields)...)...)
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	p.logger.Error(msg, append([]any{slog.Any("error", err), slog.Bool("critical", true)}, attrs(fields)...)...)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func attrs(fields []ports.Field) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, slog.Any(f.Key, f.Value))
	}
	return out
}

var _ ports.Observability = (*PromObs)(nil)

// Nop discards everything; tests and embedders that bring their own
// telemetry use it.
type Nop struct{}

func (Nop) LogInfo(string, ...ports.Field)            {}
func (Nop) LogError(string, error, ...ports.Field)    {}
func (Nop) LogCritical(string, error, ...ports.Field) {}
func (Nop) IncCounter(string, float64)                {}
func (Nop) ObserveLatency(string, float64)            {}
func (Nop) SetGauge(string, float64)                  {}

var _ ports.Observability = Nop{}
