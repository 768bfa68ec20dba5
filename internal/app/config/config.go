// Package config loads and validates the session configuration.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tonefall/oscrec/internal/ports"
)

type Config struct {
	Listen    ListenConfig  `yaml:"listen"`
	Scheme    string        `yaml:"scheme"`
	Output    OutputConfig  `yaml:"output"`
	Repeaters []string      `yaml:"repeaters"`
	Quantize  bool          `yaml:"quantize"`
	Policy    ports.Policy  `yaml:"policy"`
	Journal   JournalConfig `yaml:"journal"`
	Metrics   MetricsConfig `yaml:"metrics"`
	Display   DisplayConfig `yaml:"display"`
}

type ListenConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

type OutputConfig struct {
	Path     string         `yaml:"path"`
	Format   string         `yaml:"format"`  // json | jsonl
	Backend  string         `yaml:"backend"` // file | postgres
	Postgres PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

type JournalConfig struct {
	Dir string `yaml:"dir"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type DisplayConfig struct {
	Buffer int `yaml:"buffer"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a configuration carrying only defaults; the CLI layers
// flag overrides on top and validates afterwards.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

func (c *Config) ApplyDefaults() {
	if c.Listen.Address == "" {
		c.Listen.Address = "127.0.0.1"
	}
	if c.Scheme == "" {
		c.Scheme = "basic"
	}
	if c.Output.Backend == "" {
		c.Output.Backend = "file"
	}
	if c.Output.Format == "" {
		c.Output.Format = "json"
	}
	if c.Output.Postgres.Table == "" {
		c.Output.Postgres.Table = "recordings"
	}
	if c.Policy.MaxQueueLen == 0 {
		c.Policy.MaxQueueLen = 1024
	}
	if c.Policy.MaxBatchSize == 0 {
		c.Policy.MaxBatchSize = 256
	}
	if c.Policy.IdleSleep == 0 {
		c.Policy.IdleSleep = 5 * time.Millisecond
	}
	if c.Policy.OnQueueFull == "" {
		c.Policy.OnQueueFull = "block"
	}
	if c.Policy.RepeatTimeout == 0 {
		c.Policy.RepeatTimeout = 250 * time.Millisecond
	}
	if c.Display.Buffer == 0 {
		c.Display.Buffer = 32
	}
}

func (c *Config) Validate() error {
	if c.Listen.Port <= 0 || c.Listen.Port > 65535 {
		return fmt.Errorf("listen.port must be in 1..65535, got %d", c.Listen.Port)
	}
	if c.Scheme == "" {
		return fmt.Errorf("scheme is required")
	}
	switch c.Output.Backend {
	case "file":
		if c.Output.Path == "" {
			return fmt.Errorf("output.path is required for the file backend")
		}
	case "postgres":
		if c.Output.Postgres.ConnString == "" {
			return fmt.Errorf("output.postgres.conn_string is required for the postgres backend")
		}
	default:
		return fmt.Errorf("output.backend must be file or postgres, got %q", c.Output.Backend)
	}
	switch c.Output.Format {
	case "json", "jsonl":
	default:
		return fmt.Errorf("output.format must be json or jsonl, got %q", c.Output.Format)
	}
	switch c.Policy.OnQueueFull {
	case "block", "drop":
	default:
		return fmt.Errorf("policy.on_queue_full must be block or drop, got %q", c.Policy.OnQueueFull)
	}
	if _, err := c.RepeaterTargets(); err != nil {
		return err
	}
	return nil
}

// RepeaterTargets parses the configured repeater list. Entries are either
// "host:port" or a bare port; a bare port inherits the listen address.
func (c *Config) RepeaterTargets() ([]ports.RepeaterTarget, error) {
	targets := make([]ports.RepeaterTarget, 0, len(c.Repeaters))
	for _, entry := range c.Repeaters {
		if entry == "" {
			continue
		}
		if port, err := strconv.Atoi(entry); err == nil {
			if port <= 0 || port > 65535 {
				return nil, fmt.Errorf("repeater port %d out of range", port)
			}
			targets = append(targets, ports.RepeaterTarget{Host: c.Listen.Address, Port: port})
			continue
		}
		host, portStr, err := net.SplitHostPort(entry)
		if err != nil {
			return nil, fmt.Errorf("repeater %q: %w", entry, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("repeater %q: bad port", entry)
		}
		targets = append(targets, ports.RepeaterTarget{Host: host, Port: port})
	}
	return targets, nil
}
