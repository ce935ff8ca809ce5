package httpx

import (
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/shortontech/gosift/internal/detect"
	"github.com/shortontech/gosift/internal/metrics"
	"github.com/shortontech/gosift/internal/sink"
)

func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s ua=%q dur=%s", r.Method, r.URL.Path, r.UserAgent(), time.Since(start))
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Very permissive for dev; tighten in production.
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, DNT")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// isStaticAsset reports whether the path names an asset file. Anything with
// an extension other than .html skips triage entirely.
func isStaticAsset(p string) bool {
	ext := path.Ext(p)
	return ext != "" && ext != ".html"
}

// isDocumentRequest reports whether the request looks like a browser
// navigation: a GET outside /api with either the document fetch metadata
// header or an HTML Accept.
func isDocumentRequest(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	if isStaticAsset(r.URL.Path) {
		return false
	}
	return r.Header.Get("Sec-Fetch-Dest") == "document" ||
		strings.Contains(r.Header.Get("Accept"), "text/html")
}

// Classify is the per-request triage. A document navigation opens a visit
// session; any other non-static request outside the analysis endpoint gets
// a header-only score for the record stream. Neither path ever blocks the
// request itself.
func Classify(e Env) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := r.URL.Path
			switch {
			case p == "/healthz" || p == "/readyz" || isStaticAsset(p):
				// No tracking, no logging.

			case isDocumentRequest(r):
				ip := clientIP(r)
				e.Visits.Open(ip)
				rec := sink.New(sink.TagHeaderAnalysis, ip)
				rec.Method = r.Method
				rec.Path = p
				rec.UserAgent = r.UserAgent()
				rec.UAParsed = detect.ParseUA(r.UserAgent())
				rec.Verdict = "pending"
				e.emit(rec)

			case p != "/api/bot":
				ip := clientIP(r)
				v := detect.EvaluateHeaders(r.Header)
				if e.Metrics != nil {
					e.Metrics.IncrementVerdicts(v.Verdict, "headers")
				}
				rec := sink.New(sink.TagHeaderAnalysis, ip)
				rec.Method = r.Method
				rec.Path = p
				rec.UserAgent = r.UserAgent()
				rec.UAParsed = detect.ParseUA(r.UserAgent())
				rec.Verdict = v.Verdict
				rec.Analysis = &v
				e.emit(rec)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter captures the status code for the metrics middleware.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware records request counts and latency per endpoint.
func MetricsMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)
			m.ObserveHTTP(endpointLabel(r.URL.Path), r.Method, rw.statusCode, time.Since(start))
		})
	}
}

// endpointLabel collapses the static catch-all so asset paths do not blow
// up label cardinality.
func endpointLabel(p string) string {
	if strings.HasPrefix(p, "/api/") || p == "/healthz" || p == "/readyz" {
		return p
	}
	return "/static"
}
