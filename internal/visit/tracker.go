// Package visit ties a document fetch, its challenge exchange and its
// analysis submission into one per-IP session with a liveness deadline.
// A session that fetches the page and then goes silent is itself the
// verdict: no JS ever ran.
package visit

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/shortontech/gosift/internal/detect"
)

const (
	// DefaultDeadline is how long a document fetch may go unanalysed
	// before the session is ruled a bot.
	DefaultDeadline = 5 * time.Second
	sessionTTL      = 60 * time.Second
)

type session struct {
	startedAt         time.Time
	completed         bool
	analysisRequested bool
	timer             *time.Timer
	finalVerdict      *detect.Verdict
}

// Status is the visit-status view of a session.
type Status struct {
	Verdict string          `json:"verdict"`
	Code    int             `json:"code,omitempty"`
	Reason  string          `json:"reason,omitempty"`
	Result  *detect.Verdict `json:"result,omitempty"`
}

// Tracker is the per-IP session state machine. All session mutation happens
// under one coarse mutex, including the deadline callbacks.
type Tracker struct {
	mu        sync.Mutex
	sessions  map[string]*session
	deadline  time.Duration
	onTimeout func(ip string, v detect.Verdict)
	now       func() time.Time
}

// NewTracker builds a tracker. onTimeout is invoked (outside the lock) each
// time a deadline converts a session into a bot verdict; it may be nil.
func NewTracker(deadline time.Duration, onTimeout func(ip string, v detect.Verdict)) *Tracker {
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	return &Tracker{
		sessions:  make(map[string]*session),
		deadline:  deadline,
		onTimeout: onTimeout,
		now:       time.Now,
	}
}

// Open starts the session for ip on a document request, replacing any prior
// one, and arms the deadline. Stale sessions are evicted on the way.
func (t *Tracker) Open(ip string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.sessions[ip]; ok && prev.timer != nil {
		prev.timer.Stop()
	}
	t.evictStale()

	s := &session{startedAt: t.now()}
	s.timer = time.AfterFunc(t.deadline, func() { t.deadlineFired(ip, s) })
	t.sessions[ip] = s
}

// deadlineFired freezes the timeout verdict. The identity re-check matters:
// a replacement session may own this IP by the time the callback runs, and
// Stop on an already-fired timer cannot take the verdict back.
func (t *Tracker) deadlineFired(ip string, armed *session) {
	t.mu.Lock()
	cur, ok := t.sessions[ip]
	if !ok || cur != armed || cur.completed || cur.analysisRequested {
		t.mu.Unlock()
		return
	}
	v := detect.TimeoutVerdict()
	cur.completed = true
	cur.finalVerdict = &v
	t.mu.Unlock()

	if t.onTimeout != nil {
		t.onTimeout(ip, v)
	}
}

// MarkAnalysisRequested records that the analysis endpoint was invoked and
// disarms the deadline. An analysis call with no open session still gets a
// session so its verdict has somewhere to live.
func (t *Tracker) MarkAnalysisRequested(ip string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[ip]
	if !ok {
		s = &session{startedAt: t.now()}
		t.sessions[ip] = s
	}
	s.analysisRequested = true
	if s.timer != nil {
		s.timer.Stop()
	}
}

// Complete freezes the analysis verdict. A verdict already frozen by the
// deadline wins the race and is never overwritten.
func (t *Tracker) Complete(ip string, v detect.Verdict) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[ip]
	if !ok {
		return
	}
	s.completed = true
	if s.finalVerdict == nil {
		s.finalVerdict = &v
	}
}

// Status reports where the session for ip stands.
func (t *Tracker) Status(ip string) Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[ip]
	if !ok {
		return Status{Verdict: "unknown", Reason: "No visit recorded for this IP"}
	}
	if s.finalVerdict != nil {
		v := s.finalVerdict
		reason := v.Reason
		if v.Code == detect.CodeNoJSExecution {
			reason = "Never called /api/bot - no JS execution"
		}
		return Status{Verdict: v.Verdict, Code: v.Code, Reason: reason, Result: v}
	}
	if s.completed && s.analysisRequested {
		return Status{Verdict: "pending-analysis"}
	}
	elapsed := t.now().Sub(s.startedAt)
	if !s.analysisRequested && elapsed > t.deadline {
		return Status{
			Verdict: detect.VerdictBot,
			Code:    detect.CodeNoJSExecution,
			Reason:  "Never called /api/bot - no JS execution",
		}
	}
	remaining := t.deadline - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Verdict: "pending",
		Reason:  fmt.Sprintf("Waiting for analysis call - %ds remaining", int(math.Ceil(remaining.Seconds()))),
	}
}

// Active reports the live session count, for the metrics gauge.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

func (t *Tracker) evictStale() {
	now := t.now()
	for ip, s := range t.sessions {
		if now.Sub(s.startedAt) > sessionTTL {
			if s.timer != nil {
				s.timer.Stop()
			}
			delete(t.sessions, ip)
		}
	}
}
