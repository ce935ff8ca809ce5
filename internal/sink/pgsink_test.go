package sink

import (
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/shortontech/gosift/internal/detect"
)

func TestPGSinkInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	s := &PGSink{db: db}

	rec := New(TagBotAnalysis, "203.0.113.7")
	rec.Verdict = detect.VerdictBot

	mock.ExpectExec("INSERT INTO detection_records").
		WithArgs(rec.RecordID, rec.Tag, rec.Timestamp, rec.IP, rec.Verdict, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Enqueue(rec); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGSinkInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	s := &PGSink{db: db}

	mock.ExpectExec("INSERT INTO detection_records").
		WillReturnError(errClosed{})

	if err := s.Enqueue(New(TagVisit, "10.0.0.1")); err == nil {
		t.Error("enqueue succeeded despite insert failure")
	}
}

func TestPGSinkNotStarted(t *testing.T) {
	s := NewPGSink("postgres://example")
	if err := s.Enqueue(New(TagVisit, "10.0.0.1")); err == nil {
		t.Error("enqueue on an unstarted sink should fail")
	}
	if err := s.Close(); err != nil {
		t.Errorf("close on an unstarted sink: %v", err)
	}
}

type errClosed struct{}

func (errClosed) Error() string { return "connection closed" }
