// Package challenge issues and redeems short-lived arithmetic proofs of
// JS execution. The expression is evaluated client-side; the server only
// ever compares against the pre-computed answer.
package challenge

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

const (
	idLength = 13
	ttl      = 60 * time.Second

	// The client echoes the issue timestamp back as its timing proof;
	// more than a second of drift means it was not round-tripped.
	maxProofSkewMs = 1000
	// Claimed client-side execution time must be positive and under 5 s.
	maxExecutionMs = 5000
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

var operators = []string{"+", "-", "*"}

type entry struct {
	expected int
	issuedAt time.Time
	issuerIP string // logged only, never enforced on verify
}

// Issued is the wire shape handed to the client.
type Issued struct {
	ID         string `json:"challengeId"`
	Expression string `json:"challenge"`
	IssuedAtMs int64  `json:"timingChallenge"`
}

// Result is the verification outcome. A missing or expired id yields the
// zero Result with a Reason; that is a domain answer, not an error.
type Result struct {
	Valid         bool    `json:"valid"`
	TimingValid   bool    `json:"timingValid"`
	ExecutionTime float64 `json:"executionTime"`
	SolveTimeMs   int64   `json:"solveTime"`
	Reason        string  `json:"reason,omitempty"`
}

// Store holds outstanding challenges under a coarse mutex. Entries are
// swept opportunistically on issue; a stale entry that survives a sweep is
// still treated as absent on verify.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	rng     *rand.Rand
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]entry),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
}

// Issue generates a fresh challenge bound to the current instant. The
// expression's textual form is part of the client contract; keep it an
// immediately-invoked function so bare eval environments also work.
func (s *Store) Issue(ip string) Issued {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	a := s.rng.Intn(100)
	b := s.rng.Intn(100)
	op := operators[s.rng.Intn(len(operators))]
	expected := 0
	switch op {
	case "+":
		expected = a + b
	case "-":
		expected = a - b
	case "*":
		expected = a * b
	}

	id := s.newID()
	s.entries[id] = entry{expected: expected, issuedAt: now, issuerIP: ip}

	return Issued{
		ID:         id,
		Expression: fmt.Sprintf("(function(){return %d %s %d;})()", a, op, b),
		IssuedAtMs: now.UnixMilli(),
	}
}

// Verify consumes the challenge: the entry is deleted whether or not the
// answer checks out, so a second call with the same id always fails.
func (s *Store) Verify(id string, answer int, timingProofMs int64, executionTimeMs float64) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
	}
	now := s.now()
	if !ok || now.Sub(ent.issuedAt) > ttl {
		return Result{ExecutionTime: executionTimeMs, Reason: "Challenge not found or expired"}
	}

	skew := timingProofMs - ent.issuedAt.UnixMilli()
	if skew < 0 {
		skew = -skew
	}

	return Result{
		Valid:         answer == ent.expected,
		TimingValid:   skew <= maxProofSkewMs && executionTimeMs > 0 && executionTimeMs < maxExecutionMs,
		ExecutionTime: executionTimeMs,
		SolveTimeMs:   now.Sub(ent.issuedAt).Milliseconds(),
	}
}

// Outstanding reports the live entry count, for the metrics gauge.
func (s *Store) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) sweep(now time.Time) {
	for id, ent := range s.entries {
		if now.Sub(ent.issuedAt) > ttl {
			delete(s.entries, id)
		}
	}
}

func (s *Store) newID() string {
	var sb strings.Builder
	sb.Grow(idLength)
	for i := 0; i < idLength; i++ {
		sb.WriteByte(base36[s.rng.Intn(len(base36))])
	}
	return sb.String()
}
