package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/tonefall/oscrec"
)

func main() {
	cfg := oscrec.DefaultConfig()
	cfg.Listen.Port = 9000
	cfg.Output.Path = "recording.json"
	cfg.Scheme = "only_numbers"
	cfg.Quantize = true

	deck, err := oscrec.ConfFromConfig(cfg)
	if err != nil {
		log.Fatalf("configure: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := deck.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("session exited: %v", err)
	}
}
