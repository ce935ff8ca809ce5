package httpx

import "net/http"

// NewMux wires the detection routes and the middleware chain: request
// logging outermost, then metrics, CORS, and triage closest to the
// handlers so classification sees the same request the handler does.
func NewMux(e Env) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", e.Healthz)
	mux.HandleFunc("/readyz", e.Readyz)

	mux.HandleFunc("/api/challenge", e.Challenge)
	mux.HandleFunc("/api/challenge/verify", e.ChallengeVerify)
	mux.HandleFunc("/api/visit", e.Visit)
	mux.HandleFunc("/api/bot", e.Analyze)
	mux.HandleFunc("/api/visit-status", e.VisitStatus)

	// Everything else is the static UI.
	mux.HandleFunc("/", e.Static)

	return RequestLogger(MetricsMiddleware(e.Metrics)(cors(Classify(e)(mux))))
}
