package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tonefall/oscrec"
	"github.com/tonefall/oscrec/internal/adapters/journal"
	"github.com/tonefall/oscrec/internal/adapters/recorder"
	"github.com/tonefall/oscrec/internal/ports"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "schemes":
		err = schemesCommand(os.Args[2:])
	case "recover":
		err = recoverCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("oscrec %s: %v", cmd, err)
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to configuration file (optional)")
	address := fs.String("address", "", "UDP address to listen on")
	port := fs.Int("port", 0, "UDP port to listen on")
	file := fs.String("file", "", "Recording destination path")
	format := fs.String("format", "", "Recording format: json or jsonl")
	schemeName := fs.String("scheme", "", "Extraction scheme name")
	repeaters := fs.String("repeaters", "", "Comma-separated repeat targets (port or host:port)")
	quantized := fs.Bool("quantized", false, "Rebase timestamps so the first message lands at 0.0")
	quiet := fs.Bool("quiet", false, "Do not print received messages")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		cfg *oscrec.Config
		err error
	)
	if *cfgPath != "" {
		cfg, err = oscrec.LoadConfig(*cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = oscrec.DefaultConfig()
	}

	// flags override the file
	if *address != "" {
		cfg.Listen.Address = *address
	}
	if *port != 0 {
		cfg.Listen.Port = *port
	}
	if *file != "" {
		cfg.Output.Path = *file
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if *schemeName != "" {
		cfg.Scheme = *schemeName
	}
	if *repeaters != "" {
		cfg.Repeaters = strings.Split(*repeaters, ",")
	}
	if *quantized {
		cfg.Quantize = true
	}

	deck, err := oscrec.ConfFromConfig(cfg)
	if err != nil {
		return err
	}

	var opts []oscrec.RecordOption
	var stopDisplay func()
	if !*quiet {
		ch, stop := oscrec.NewDisplayFunc(cfg.Display.Buffer, func(ev oscrec.DisplayEvent) {
			fmt.Printf("%9.3f  %s  %v\n", ev.Time, ev.Address, displayPayload(ev.Record))
		})
		stopDisplay = stop
		opts = append(opts, oscrec.RecordDisplay(ch))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = deck.Run(ctx, opts...)
	if stopDisplay != nil {
		stopDisplay()
	}
	return err
}

// displayPayload picks the scheme-specific field of a record: list schemes
// carry "args", dirt_basic carries "value".
func displayPayload(rec oscrec.Record) any {
	if args, ok := rec["args"]; ok {
		return args
	}
	if v, ok := rec["value"]; ok {
		return v
	}
	return rec
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "./config.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := oscrec.LoadConfig(*cfgPath); err != nil {
		return err
	}
	fmt.Printf("config %s looks good\n", *cfgPath)
	return nil
}

func schemesCommand(args []string) error {
	fs := flag.NewFlagSet("schemes", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	for _, name := range oscrec.Schemes() {
		fmt.Println(name)
	}
	return nil
}

// recoverCommand rebuilds a recording file from an on-disk journal left
// behind by a session that never reached its final flush.
func recoverCommand(args []string) error {
	fs := flag.NewFlagSet("recover", flag.ExitOnError)
	dir := fs.String("journal", "", "Journal directory to recover from")
	file := fs.String("file", "recovered.json", "Recording destination path")
	format := fs.String("format", "json", "Recording format: json or jsonl")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" {
		return fmt.Errorf("-journal is required")
	}

	jr, err := journal.Open(*dir)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jr.Close()

	rec, err := recorder.NewFileRecorder(*file, *format)
	if err != nil {
		return err
	}

	var count int
	err = jr.Iterate(0, func(id ports.JournalEntryID, e *oscrec.Entry) error {
		count++
		return rec.Append(e)
	})
	if err != nil {
		return err
	}
	if err := rec.Close(); err != nil {
		return err
	}

	fmt.Printf("recovered %d entries into %s\n", count, *file)
	return nil
}

func statsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	url := fs.String("url", "http://localhost:9100/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(*url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

func printMetricsSnapshot(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	targets := map[string]float64{
		"oscrec_packets_received_total":  0,
		"oscrec_messages_recorded_total": 0,
		"oscrec_repeats_sent_total":      0,
		"oscrec_recording_entries":       0,
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for key := range targets {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %f", &value); err == nil {
					targets[key] = value
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("[%s] packets=%.0f recorded=%.0f repeated=%.0f entries=%.0f\n",
		time.Now().Format(time.RFC3339),
		targets["oscrec_packets_received_total"],
		targets["oscrec_messages_recorded_total"],
		targets["oscrec_repeats_sent_total"],
		targets["oscrec_recording_entries"],
	)
	return nil
}

func printUsage() {
	fmt.Printf(`oscrec

Usage:
  oscrec <command> [flags]

Commands:
  run        Record OSC traffic using a config file and/or flags
  validate   Load and validate a config file without starting a session
  schemes    List the available extraction schemes
  recover    Rebuild a recording file from an on-disk journal
  stats      Poll the Prometheus metrics endpoint and print live counters

Examples:
  oscrec run -port 9000 -file out.json -scheme only_numbers -quantized
  oscrec run -config ./config.yaml -repeaters 9001,10.0.0.5:9002
  oscrec validate -config ./config.yaml
  oscrec recover -journal ./journal -file recovered.json
  oscrec stats -url http://localhost:9100/metrics -interval 1s
`)
}
