// A small traffic generator for trying out the recorder: sends a burst of
// OSC messages to a running session.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/chabad360/go-osc/osc"
)

func main() {
	host := flag.String("host", "127.0.0.1", "Recorder host")
	port := flag.Int("port", 9000, "Recorder port")
	count := flag.Int("count", 10, "Messages to send")
	flag.Parse()

	client := osc.NewClient(*host, *port)

	for i := 0; i < *count; i++ {
		msg := osc.NewMessage("/demo", int32(i), "tick", float32(i)/2)
		if err := client.Send(msg); err != nil {
			log.Fatalf("send: %v", err)
		}
		time.Sleep(100 * time.Millisecond)
	}
}
