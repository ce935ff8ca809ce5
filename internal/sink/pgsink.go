package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

const pgInsertRecord = `INSERT INTO detection_records (record_id, tag, ts, ip, verdict, payload)
VALUES ($1, $2, $3, $4, $5, $6)`

// PGSink appends detection records to Postgres. This is an export stream,
// not session state: the server never reads these rows back.
type PGSink struct {
	dsn string
	db  *sql.DB
}

func NewPGSink(dsn string) *PGSink { return &PGSink{dsn: dsn} }

func (s *PGSink) Start(ctx context.Context) error {
	db, err := sql.Open("postgres", s.dsn)
	if err != nil {
		return fmt.Errorf("pg sink: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("pg sink: ping: %w", err)
	}
	s.db = db
	return nil
}

func (s *PGSink) Enqueue(rec Record) error {
	if s.db == nil {
		return errors.New("pg sink not started")
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("pg sink: serialize record: %w", err)
	}
	if _, err := s.db.Exec(pgInsertRecord,
		rec.RecordID, rec.Tag, rec.Timestamp, rec.IP, rec.Verdict, payload); err != nil {
		return fmt.Errorf("pg sink: insert: %w", err)
	}
	return nil
}

func (s *PGSink) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PGSink) Name() string { return "postgres" }
