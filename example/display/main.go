package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/tonefall/oscrec"
)

func main() {
	cfg := oscrec.DefaultConfig()
	cfg.Listen.Port = 9000
	cfg.Output.Path = "recording.jsonl"
	cfg.Output.Format = "jsonl"

	deck, err := oscrec.ConfFromConfig(cfg)
	if err != nil {
		log.Fatalf("configure: %v", err)
	}

	write, events, drain := oscrec.NewDisplayChannel(cfg.Display.Buffer)
	defer drain()

	go func() {
		for ev := range events {
			fmt.Printf("%9.3f  %s  %v\n", ev.Time, ev.Address, ev.Record["args"])
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := deck.Run(ctx, oscrec.RecordDisplay(write)); err != nil && err != context.Canceled {
		log.Fatalf("session exited: %v", err)
	}
}
