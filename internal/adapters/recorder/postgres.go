package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/tonefall/oscrec/internal/domain"
	"github.com/tonefall/oscrec/internal/ports"
)

// PostgresRecorder mirrors the in-memory log into a Postgres table. Flush
// inserts only the entries appended since the last successful flush, so the
// mid-session valve stays cheap.
type PostgresRecorder struct {
	mu      sync.Mutex
	db      *sql.DB
	table   string
	entries []*domain.Entry
	flushed int
}

func NewPostgresRecorder(db *sql.DB, table string) *PostgresRecorder {
	return &PostgresRecorder{db: db, table: table}
}

func (p *PostgresRecorder) Name() string { return "postgres" }

func (p *PostgresRecorder) Append(e *domain.Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, e)
	return nil
}

func (p *PostgresRecorder) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func (p *PostgresRecorder) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pending := p.entries[p.flushed:]
	if len(pending) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(p.table)
	b.WriteString(" (rec_time, address, payload) VALUES ")

	args := make([]any, 0, len(pending)*3)
	for i, e := range pending {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(fmt.Sprintf("($%d,$%d,$%d)",
			len(args)+1, len(args)+2, len(args)+3))

		payload, err := json.Marshal(e.Record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		addr, _ := e.Record["address"].(string)
		args = append(args, e.Time, addr, payload)
	}

	if _, err := p.db.Exec(b.String(), args...); err != nil {
		return err
	}
	p.flushed = len(p.entries)
	return nil
}

func (p *PostgresRecorder) Close() error {
	if err := p.Flush(); err != nil {
		if retryErr := p.Flush(); retryErr != nil {
			p.dumpToStderr()
			return fmt.Errorf("flush recording to table %s: %w", p.table, retryErr)
		}
	}
	return nil
}

func (p *PostgresRecorder) dumpToStderr() {
	p.mu.Lock()
	pending := p.entries[p.flushed:]
	data, err := json.MarshalIndent(pending, "", "    ")
	p.mu.Unlock()
	if err != nil {
		fmt.Fprintf(os.Stderr, "oscrec: recording lost, cannot encode log: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "oscrec: could not write recording to table %s, dumping unflushed entries:\n%s\n", p.table, data)
}

var _ ports.Recorder = (*PostgresRecorder)(nil)
