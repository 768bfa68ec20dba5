package recorder

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/tonefall/oscrec/internal/domain"
)

func TestPostgresRecorderFlush(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rec := NewPostgresRecorder(db, "recordings")

	if err := rec.Append(&domain.Entry{
		Time:   0.25,
		Record: domain.Record{"address": "/x", "args": []any{1.0, 2.0}},
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	expectedQuery := regexp.QuoteMeta("INSERT INTO recordings (rec_time, address, payload) VALUES ($1,$2,$3)")
	mock.ExpectExec(expectedQuery).
		WithArgs(0.25, "/x", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := rec.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	// a second flush with nothing new must not touch the database
	if err := rec.Flush(); err != nil {
		t.Fatalf("idempotent flush: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRecorderFlushBatchesMultipleEntries(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rec := NewPostgresRecorder(db, "recordings")
	_ = rec.Append(&domain.Entry{Time: 0, Record: domain.Record{"address": "/a"}})
	_ = rec.Append(&domain.Entry{Time: 0.5, Record: domain.Record{"address": "/b"}})

	expectedQuery := regexp.QuoteMeta("INSERT INTO recordings (rec_time, address, payload) VALUES ($1,$2,$3),($4,$5,$6)")
	mock.ExpectExec(expectedQuery).
		WithArgs(0.0, "/a", sqlmock.AnyArg(), 0.5, "/b", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 2))

	if err := rec.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRecorderFlushNoEntries(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rec := NewPostgresRecorder(db, "recordings")
	if err := rec.Flush(); err != nil {
		t.Fatalf("expected nil error for empty log, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRecorderName(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	rec := NewPostgresRecorder(db, "recordings")
	if rec.Name() != "postgres" {
		t.Fatalf("expected recorder name postgres, got %s", rec.Name())
	}
}
