package httpx

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/shortontech/gosift/internal/assets"
	"github.com/shortontech/gosift/internal/challenge"
	"github.com/shortontech/gosift/internal/detect"
	"github.com/shortontech/gosift/internal/metrics"
	"github.com/shortontech/gosift/internal/sink"
	"github.com/shortontech/gosift/internal/visit"
	cfg "github.com/shortontech/gosift/pkg/config"
)

type Env struct {
	Cfg        cfg.Config
	Challenges *challenge.Store
	Visits     *visit.Tracker
	Emit       func(sink.Record) // injected sink fan-out
	Metrics    *metrics.Metrics  // may be nil in tests
	Ready      func() bool       // readiness probe; nil means always ready
}

func (e Env) emit(rec sink.Record) {
	if e.Emit != nil {
		e.Emit(rec)
	}
}

// clientIP resolves the client address: first element of X-Forwarded-For,
// else the socket peer, else "unknown".
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (e Env) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (e Env) Readyz(w http.ResponseWriter, r *http.Request) {
	if e.Ready != nil && !e.Ready() {
		http.Error(w, "sinks not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// GET /api/challenge — issue a fresh arithmetic challenge.
func (e Env) Challenge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	issued := e.Challenges.Issue(clientIP(r))
	if e.Metrics != nil {
		e.Metrics.ChallengesIssued.Inc()
	}
	writeJSON(w, http.StatusOK, issued)
}

type verifyRequest struct {
	ChallengeID   string  `json:"challengeId"`
	Answer        int     `json:"answer"`
	TimingProof   int64   `json:"timingProof"`
	ExecutionTime float64 `json:"executionTime"`
}

// POST /api/challenge/verify — redeem a challenge. The entry is consumed
// either way; a bad or replayed id is a domain answer, not an error.
func (e Env) ChallengeVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req verifyRequest
	if !e.decodeBody(w, r, &req) {
		return
	}

	ip := clientIP(r)
	result := e.Challenges.Verify(req.ChallengeID, req.Answer, req.TimingProof, req.ExecutionTime)

	if e.Metrics != nil {
		outcome := "invalid"
		if result.Valid {
			outcome = "valid"
		}
		e.Metrics.IncrementChallengesVerified(outcome)
	}

	rec := sink.New(sink.TagChallengeVerify, ip)
	rec.UserAgent = r.UserAgent()
	rec.Extra = map[string]any{
		"challengeId": req.ChallengeID,
		"valid":       result.Valid,
		"timingValid": result.TimingValid,
		"solveTime":   result.SolveTimeMs,
	}
	if result.Reason != "" {
		rec.Extra["reason"] = result.Reason
	}
	e.emit(rec)

	writeJSON(w, http.StatusOK, result)
}

// POST /api/visit — accept an arbitrary client-metrics blob and log it.
func (e Env) Visit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var payload any
	if !e.decodeBody(w, r, &payload) {
		return
	}

	rec := sink.New(sink.TagVisit, clientIP(r))
	rec.Method = r.Method
	rec.Path = r.URL.Path
	rec.UserAgent = r.UserAgent()
	if m, ok := payload.(map[string]any); ok {
		rec.Extra = m
	} else {
		rec.Extra = map[string]any{"payload": payload}
	}
	e.emit(rec)

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/bot — the analysis endpoint. Marking analysis_requested happens
// before the body is read, so a slow upload still disarms the deadline.
func (e Env) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ip := clientIP(r)
	e.Visits.MarkAnalysisRequested(ip)

	var bundle detect.Bundle
	if !e.decodeBody(w, r, &bundle) {
		return
	}

	var verdict detect.Verdict
	source := "bundle"
	if detect.BundleIncomplete(bundle) {
		verdict = detect.EarlyReject()
		source = "early-reject"
	} else {
		verdict = detect.EvaluateBundle(bundle, r.Header)
	}
	e.Visits.Complete(ip, verdict)

	if e.Metrics != nil {
		e.Metrics.IncrementVerdicts(verdict.Verdict, source)
	}

	rec := sink.New(sink.TagBotAnalysis, ip)
	rec.UserAgent = r.UserAgent()
	rec.UAParsed = detect.ParseUA(bundle.Str("navigator", "userAgent"))
	rec.Verdict = verdict.Verdict
	rec.Code = verdict.Code
	rec.Analysis = &verdict
	e.emit(rec)

	writeJSON(w, http.StatusOK, verdict)
}

// GET /api/visit-status — report where the caller's session stands.
func (e Env) VisitStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ip := clientIP(r)
	status := e.Visits.Status(ip)

	rec := sink.New(sink.TagVisitStatus, ip)
	rec.Verdict = status.Verdict
	rec.Code = status.Code
	e.emit(rec)

	writeJSON(w, http.StatusOK, status)
}

// Static serves the built UI from the configured dist directory, falling
// back to the embedded page when the file is absent.
func (e Env) Static(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rel := strings.TrimPrefix(filepath.Clean("/"+r.URL.Path), "/")
	if rel == "" {
		rel = "index.html"
	}
	fp := filepath.Join(e.Cfg.StaticDir, rel)
	if info, err := os.Stat(fp); err == nil && !info.IsDir() {
		http.ServeFile(w, r, fp)
		return
	}
	if info, err := os.Stat(filepath.Join(e.Cfg.StaticDir, "index.html")); err == nil && !info.IsDir() {
		http.ServeFile(w, r, filepath.Join(e.Cfg.StaticDir, "index.html"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(assets.IndexHTML)
}

// decodeBody reads a JSON body under the configured cap. A transport-level
// failure (oversize, malformed JSON) is the only place this surface answers
// with a 4xx; everything past the decode is a domain answer.
func (e Env) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "application/json") {
		http.Error(w, "content-type must be application/json", http.StatusUnsupportedMediaType)
		return false
	}
	defer r.Body.Close()

	maxBytes := e.Cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	if err != nil {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}
