package domain

import (
	"encoding/json"
	"time"
)

// Message is one decoded OSC message: an address pattern plus its ordered
// argument list. Argument values carry the codec's Go types (int32, int64,
// float32, float64, string, []byte, bool, nil). A Message is never mutated
// after decoding.
type Message struct {
	Address string
	Args    []any
}

// Packet is one received datagram. Raw holds the verbatim bytes for repeater
// fan-out; Messages holds the decoded content (bundles flattened in order);
// Received is the arrival instant captured at socket read, which carries the
// monotonic reading used for timestamping.
type Packet struct {
	Raw      []byte
	Messages []Message
	Received time.Time
}

// Record is the output of an extraction scheme. Every record carries an
// "address" field; the rest of the shape is scheme-specific.
type Record map[string]any

// Entry is one timestamped record in the recording log.
type Entry struct {
	Time   float64
	Record Record
}

// MarshalJSON flattens the entry into a single object: the record's fields
// plus a "time" key, the layout the recording file format uses.
func (e *Entry) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(e.Record)+1)
	for k, v := range e.Record {
		flat[k] = v
	}
	flat["time"] = e.Time
	return json.Marshal(flat)
}

// UnmarshalJSON is the inverse of MarshalJSON; the journal and the recover
// path rely on it.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	if t, ok := flat["time"].(float64); ok {
		e.Time = t
	}
	delete(flat, "time")
	e.Record = flat
	return nil
}
