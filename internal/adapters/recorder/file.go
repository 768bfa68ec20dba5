// Package recorder provides the recording-log backends: a JSON file writer
// and a Postgres table writer. Both keep the full session log in memory and
// treat persistence as a flush of that log.
package recorder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tonefall/oscrec/internal/domain"
	"github.com/tonefall/oscrec/internal/ports"
)

const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// FileRecorder appends entries to an in-memory ordered log and serializes it
// to path on Flush. Writes go to a temp file in the target directory
// followed by a rename, so a crash mid-flush never corrupts a previously
// written recording.
type FileRecorder struct {
	mu      sync.Mutex
	path    string
	format  string
	entries []*domain.Entry
}

// NewFileRecorder validates the destination up front: an unwritable path is
// a startup error, not something to discover at shutdown.
func NewFileRecorder(path, format string) (*FileRecorder, error) {
	if path == "" {
		return nil, fmt.Errorf("output path is required")
	}
	switch format {
	case FormatJSON, FormatJSONL:
	case "":
		format = FormatJSON
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("output path %s: %w", path, err)
	}
	probe, err := os.CreateTemp(dir, ".oscrec-probe-*")
	if err != nil {
		return nil, fmt.Errorf("output path %s not writable: %w", path, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	return &FileRecorder{path: path, format: format}, nil
}

func (r *FileRecorder) Name() string { return "file" }

func (r *FileRecorder) Append(e *domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *FileRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *FileRecorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := r.encodeLocked()
	if err != nil {
		return fmt.Errorf("encode recording: %w", err)
	}
	return atomicWrite(r.path, data)
}

// Close performs the final flush. A failed flush is retried once; if the
// retry also fails the serialized log is dumped to stderr so the session's
// content is never silently lost.
func (r *FileRecorder) Close() error {
	if err := r.Flush(); err != nil {
		if retryErr := r.Flush(); retryErr != nil {
			r.dumpToStderr()
			return fmt.Errorf("flush recording to %s: %w", r.path, retryErr)
		}
	}
	return nil
}

func (r *FileRecorder) encodeLocked() ([]byte, error) {
	switch r.format {
	case FormatJSONL:
		var buf bytes.Buffer
		for _, e := range r.entries {
			line, err := json.Marshal(e)
			if err != nil {
				return nil, err
			}
			buf.Write(line)
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil
	default:
		if len(r.entries) == 0 {
			return []byte("[]"), nil
		}
		return json.MarshalIndent(r.entries, "", "    ")
	}
}

func (r *FileRecorder) dumpToStderr() {
	r.mu.Lock()
	data, err := r.encodeLocked()
	r.mu.Unlock()
	if err != nil {
		fmt.Fprintf(os.Stderr, "oscrec: recording lost, cannot encode log: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "oscrec: could not write recording to %s, dumping log:\n%s\n", r.path, data)
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

var _ ports.Recorder = (*FileRecorder)(nil)
