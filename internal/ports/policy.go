package ports

import "time"

// Policy bundles the session's backpressure and flush knobs.
type Policy struct {
	MaxQueueLen  int           `yaml:"max_queue_len"`
	MaxBatchSize int           `yaml:"max_batch_size"`
	IdleSleep    time.Duration `yaml:"idle_sleep"`

	// OnQueueFull is "block" or "drop"; applies to both the packet channel
	// and the journal queue.
	OnQueueFull string `yaml:"on_queue_full"`

	// FlushEvery / FlushInterval drive mid-session recorder flushes.
	// Zero disables; the on-shutdown flush always happens.
	FlushEvery    int           `yaml:"flush_every"`
	FlushInterval time.Duration `yaml:"flush_interval"`

	// RepeatTimeout bounds each repeater send so an unreachable target
	// cannot hold a socket write.
	RepeatTimeout time.Duration `yaml:"repeat_timeout"`
}
