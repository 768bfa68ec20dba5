package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
listen:
  port: 9000
output:
  path: ./take.json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Listen.Address != "127.0.0.1" {
		t.Fatalf("expected default listen address 127.0.0.1, got %s", cfg.Listen.Address)
	}
	if cfg.Scheme != "basic" {
		t.Fatalf("expected default scheme basic, got %s", cfg.Scheme)
	}
	if cfg.Output.Backend != "file" || cfg.Output.Format != "json" {
		t.Fatalf("expected file/json output defaults, got %s/%s", cfg.Output.Backend, cfg.Output.Format)
	}
	if cfg.Policy.IdleSleep != 5*time.Millisecond {
		t.Fatalf("expected IdleSleep default 5ms, got %s", cfg.Policy.IdleSleep)
	}
	if cfg.Policy.MaxQueueLen != 1024 {
		t.Fatalf("expected MaxQueueLen default 1024, got %d", cfg.Policy.MaxQueueLen)
	}
	if cfg.Policy.OnQueueFull != "block" {
		t.Fatalf("expected OnQueueFull default block, got %s", cfg.Policy.OnQueueFull)
	}
	if cfg.Quantize {
		t.Fatalf("quantize must default to off")
	}
}

func TestLoadRejectsMissingPort(t *testing.T) {
	path := writeConfig(t, `
output:
  path: ./take.json
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for missing listen.port")
	}
}

func TestLoadRejectsPostgresWithoutConnString(t *testing.T) {
	path := writeConfig(t, `
listen:
  port: 9000
output:
  backend: postgres
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for missing conn_string")
	}
}

func TestRepeaterTargetsParsing(t *testing.T) {
	cfg := Default()
	cfg.Listen.Address = "10.0.0.5"
	cfg.Repeaters = []string{"9001", "192.168.1.20:7000"}

	targets, err := cfg.RepeaterTargets()
	if err != nil {
		t.Fatalf("parse repeaters: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
	if targets[0].Host != "10.0.0.5" || targets[0].Port != 9001 {
		t.Fatalf("bare port must inherit the listen address, got %+v", targets[0])
	}
	if targets[1].Host != "192.168.1.20" || targets[1].Port != 7000 {
		t.Fatalf("unexpected target: %+v", targets[1])
	}
}

func TestRepeaterTargetsRejectsGarbage(t *testing.T) {
	cfg := Default()
	for _, bad := range []string{"not-a-port", "host:99999", "70000"} {
		cfg.Repeaters = []string{bad}
		if _, err := cfg.RepeaterTargets(); err == nil {
			t.Fatalf("expected error for repeater entry %q", bad)
		}
	}
}
