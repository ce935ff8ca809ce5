package visit

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shortontech/gosift/internal/detect"
)

func TestDeadlineFiresOnce(t *testing.T) {
	var fired atomic.Int32
	tr := NewTracker(20*time.Millisecond, func(ip string, v detect.Verdict) {
		fired.Add(1)
		if v.Code != detect.CodeNoJSExecution {
			t.Errorf("timeout verdict code = %d, want %d", v.Code, detect.CodeNoJSExecution)
		}
	})

	tr.Open("10.0.0.1")
	time.Sleep(100 * time.Millisecond)

	if got := fired.Load(); got != 1 {
		t.Errorf("timeout fired %d times, want exactly 1", got)
	}

	status := tr.Status("10.0.0.1")
	if status.Verdict != detect.VerdictBot || status.Code != detect.CodeNoJSExecution {
		t.Errorf("status = %+v, want bot/1006", status)
	}
	if status.Reason != "Never called /api/bot - no JS execution" {
		t.Errorf("status reason = %q", status.Reason)
	}
	if status.Result == nil || !strings.Contains(status.Result.Reason, "within 5 seconds") {
		t.Errorf("frozen verdict should keep the long-form reason, got %+v", status.Result)
	}
}

func TestAnalysisDisarmsDeadline(t *testing.T) {
	var fired atomic.Int32
	tr := NewTracker(30*time.Millisecond, func(string, detect.Verdict) { fired.Add(1) })

	tr.Open("10.0.0.1")
	tr.MarkAnalysisRequested("10.0.0.1")
	time.Sleep(100 * time.Millisecond)

	if got := fired.Load(); got != 0 {
		t.Errorf("timeout fired %d times after analysis was requested, want 0", got)
	}
}

func TestCompleteFreezesVerdict(t *testing.T) {
	tr := NewTracker(time.Minute, nil)
	tr.Open("10.0.0.1")
	tr.MarkAnalysisRequested("10.0.0.1")

	v := detect.Verdict{Verdict: detect.VerdictHuman, Score: 0, MaxScore: 100, Confidence: "low"}
	tr.Complete("10.0.0.1", v)

	status := tr.Status("10.0.0.1")
	if status.Verdict != detect.VerdictHuman {
		t.Errorf("status verdict = %q, want human", status.Verdict)
	}
	if status.Result == nil || status.Result.Verdict != detect.VerdictHuman {
		t.Errorf("status result = %+v", status.Result)
	}
}

func TestFrozenVerdictNotOverwritten(t *testing.T) {
	var fired atomic.Int32
	tr := NewTracker(15*time.Millisecond, func(string, detect.Verdict) { fired.Add(1) })

	tr.Open("10.0.0.1")
	time.Sleep(80 * time.Millisecond) // deadline wins

	// A late analysis completion must not replace the timeout verdict.
	tr.Complete("10.0.0.1", detect.Verdict{Verdict: detect.VerdictHuman})

	status := tr.Status("10.0.0.1")
	if status.Verdict != detect.VerdictBot || status.Code != detect.CodeNoJSExecution {
		t.Errorf("status = %+v, want the frozen timeout verdict", status)
	}
	if fired.Load() != 1 {
		t.Errorf("timeout fired %d times, want 1", fired.Load())
	}
}

func TestReplacementSessionResetsDeadline(t *testing.T) {
	var fired atomic.Int32
	tr := NewTracker(100*time.Millisecond, func(string, detect.Verdict) { fired.Add(1) })

	tr.Open("10.0.0.1")
	time.Sleep(50 * time.Millisecond)
	tr.Open("10.0.0.1") // replaces the session, re-arms the deadline
	time.Sleep(70 * time.Millisecond)

	// First deadline would have fired by now; the replacement pushed it out.
	if got := fired.Load(); got != 0 {
		t.Errorf("timeout fired %d times before the replacement deadline, want 0", got)
	}

	time.Sleep(150 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("timeout fired %d times after the replacement deadline, want 1", got)
	}
}

func TestStatusTransitions(t *testing.T) {
	t.Run("unknown ip", func(t *testing.T) {
		tr := NewTracker(time.Minute, nil)
		status := tr.Status("203.0.113.9")
		if status.Verdict != "unknown" {
			t.Errorf("verdict = %q, want unknown", status.Verdict)
		}
	})

	t.Run("pending inside deadline", func(t *testing.T) {
		tr := NewTracker(5*time.Second, nil)
		tr.Open("10.0.0.1")
		status := tr.Status("10.0.0.1")
		if status.Verdict != "pending" {
			t.Errorf("verdict = %q, want pending", status.Verdict)
		}
		if !strings.Contains(status.Reason, "remaining") {
			t.Errorf("reason = %q, want a countdown", status.Reason)
		}
	})

	t.Run("deadline elapsed without timer observation", func(t *testing.T) {
		// Status must rule bot even if it races ahead of the timer callback.
		tr := NewTracker(5*time.Second, nil)
		base := time.Now()
		tr.now = func() time.Time { return base }
		tr.Open("10.0.0.1")

		tr.now = func() time.Time { return base.Add(6 * time.Second) }
		status := tr.Status("10.0.0.1")
		if status.Verdict != detect.VerdictBot || status.Code != detect.CodeNoJSExecution {
			t.Errorf("status = %+v, want bot/1006", status)
		}
	})
}

func TestAnalysisWithoutOpenSession(t *testing.T) {
	tr := NewTracker(time.Minute, nil)

	// An analysis call with no prior document fetch still gets a session.
	tr.MarkAnalysisRequested("10.0.0.1")
	tr.Complete("10.0.0.1", detect.Verdict{Verdict: detect.VerdictHuman})

	status := tr.Status("10.0.0.1")
	if status.Verdict != detect.VerdictHuman {
		t.Errorf("verdict = %q, want human", status.Verdict)
	}
}

func TestEvictStale(t *testing.T) {
	tr := NewTracker(time.Minute, nil)
	base := time.Now()
	tr.now = func() time.Time { return base }

	tr.Open("10.0.0.1")
	tr.Open("10.0.0.2")
	if got := tr.Active(); got != 2 {
		t.Fatalf("active = %d, want 2", got)
	}

	tr.now = func() time.Time { return base.Add(61 * time.Second) }
	tr.Open("10.0.0.3") // insert drives the sweep
	if got := tr.Active(); got != 1 {
		t.Errorf("active after sweep = %d, want 1", got)
	}
}
