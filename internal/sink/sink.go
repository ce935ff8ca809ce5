package sink

import "context"

// Sink receives detection records. Implementations must be safe for
// concurrent Enqueue; delivery failures are the caller's to count and
// swallow (the detection pipeline never blocks on a sink).
type Sink interface {
	Start(ctx context.Context) error
	Enqueue(rec Record) error
	Close() error
	Name() string // sink name for metrics and logging
}
