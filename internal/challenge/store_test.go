package challenge

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"
)

var exprRe = regexp.MustCompile(`^\(function\(\)\{return (\d+) ([+*-]) (\d+);\}\)\(\)$`)

// solve evaluates the issued expression the way the client would.
func solve(t *testing.T, expr string) int {
	t.Helper()
	m := exprRe.FindStringSubmatch(expr)
	if m == nil {
		t.Fatalf("challenge %q does not match the expected form", expr)
	}
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[3])
	switch m[2] {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	}
	t.Fatalf("unknown operator %q", m[2])
	return 0
}

func TestIssueShape(t *testing.T) {
	s := NewStore()
	issued := s.Issue("10.0.0.1")

	if len(issued.ID) != 13 {
		t.Errorf("id length = %d, want 13", len(issued.ID))
	}
	for _, c := range issued.ID {
		if !strings.ContainsRune(base36, c) {
			t.Errorf("id %q contains non-base36 rune %q", issued.ID, c)
		}
	}
	solve(t, issued.Expression)
	if issued.IssuedAtMs == 0 {
		t.Error("timingChallenge is zero")
	}
}

func TestVerifyHappyPath(t *testing.T) {
	s := NewStore()
	issued := s.Issue("10.0.0.1")

	res := s.Verify(issued.ID, solve(t, issued.Expression), issued.IssuedAtMs, 15)
	if !res.Valid {
		t.Errorf("valid = false: %+v", res)
	}
	if !res.TimingValid {
		t.Errorf("timingValid = false: %+v", res)
	}
	if res.SolveTimeMs < 0 {
		t.Errorf("solveTime = %d, want >= 0", res.SolveTimeMs)
	}
}

func TestVerifyConsumesEntry(t *testing.T) {
	s := NewStore()
	issued := s.Issue("10.0.0.1")
	answer := solve(t, issued.Expression)

	first := s.Verify(issued.ID, answer, issued.IssuedAtMs, 15)
	if !first.Valid {
		t.Fatalf("first verify failed: %+v", first)
	}

	second := s.Verify(issued.ID, answer, issued.IssuedAtMs, 15)
	if second.Valid {
		t.Error("second verify with the same id succeeded")
	}
	if second.Reason != "Challenge not found or expired" {
		t.Errorf("reason = %q, want challenge-not-found", second.Reason)
	}
}

func TestVerifyWrongAnswer(t *testing.T) {
	s := NewStore()
	issued := s.Issue("10.0.0.1")

	res := s.Verify(issued.ID, solve(t, issued.Expression)+1, issued.IssuedAtMs, 15)
	if res.Valid {
		t.Error("wrong answer accepted")
	}
	if !res.TimingValid {
		t.Error("timing should be judged independently of the answer")
	}
}

func TestVerifyUnknownID(t *testing.T) {
	s := NewStore()
	res := s.Verify("nonexistent00", 42, time.Now().UnixMilli(), 15)
	if res.Valid || res.TimingValid {
		t.Errorf("unknown id accepted: %+v", res)
	}
	if res.Reason != "Challenge not found or expired" {
		t.Errorf("reason = %q", res.Reason)
	}
}

func TestVerifyExpired(t *testing.T) {
	s := NewStore()
	base := time.Now()
	s.now = func() time.Time { return base }
	issued := s.Issue("10.0.0.1")

	s.now = func() time.Time { return base.Add(61 * time.Second) }
	res := s.Verify(issued.ID, solve(t, issued.Expression), issued.IssuedAtMs, 15)
	if res.Valid {
		t.Error("expired challenge accepted")
	}
	if res.Reason != "Challenge not found or expired" {
		t.Errorf("reason = %q", res.Reason)
	}
}

func TestTimingValidation(t *testing.T) {
	tests := []struct {
		name        string
		proofDelta  int64 // offset from the true issue timestamp
		execTime    float64
		timingValid bool
	}{
		{"round-tripped proof", 0, 15, true},
		{"slight skew tolerated", 800, 15, true},
		{"stale proof", 5000, 15, false},
		{"zero execution time", 0, 0, false},
		{"negative execution time", 0, -3, false},
		{"implausibly slow execution", 0, 6000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			issued := s.Issue("10.0.0.1")
			res := s.Verify(issued.ID, solve(t, issued.Expression), issued.IssuedAtMs+tt.proofDelta, tt.execTime)
			if res.TimingValid != tt.timingValid {
				t.Errorf("timingValid = %v, want %v", res.TimingValid, tt.timingValid)
			}
		})
	}
}

func TestSweepOnIssue(t *testing.T) {
	s := NewStore()
	base := time.Now()
	s.now = func() time.Time { return base }

	for i := 0; i < 5; i++ {
		s.Issue("10.0.0.1")
	}
	if got := s.Outstanding(); got != 5 {
		t.Fatalf("outstanding = %d, want 5", got)
	}

	s.now = func() time.Time { return base.Add(61 * time.Second) }
	s.Issue("10.0.0.1")
	if got := s.Outstanding(); got != 1 {
		t.Errorf("outstanding after sweep = %d, want 1", got)
	}
}

func TestIssueIDsUnique(t *testing.T) {
	s := NewStore()
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		id := s.Issue("10.0.0.1").ID
		if seen[id] {
			t.Fatalf("duplicate id %q after %d issues", id, i)
		}
		seen[id] = true
	}
}
