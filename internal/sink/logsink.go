package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// LogSink writes one record per line to stdout: a bracketed tag followed by
// the JSON object. This is the primary output contract, not debug logging.
type LogSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewLogSink() *LogSink { return &LogSink{w: os.Stdout} }

// NewLogSinkTo writes to an arbitrary writer; used by tests.
func NewLogSinkTo(w io.Writer) *LogSink { return &LogSink{w: w} }

func (s *LogSink) Start(ctx context.Context) error { return nil }

func (s *LogSink) Enqueue(rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = fmt.Fprintf(s.w, "[%s] %s\n", rec.Tag, b)
	return err
}

func (s *LogSink) Close() error { return nil }

func (s *LogSink) Name() string { return "log" }
