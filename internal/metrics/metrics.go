package metrics

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metric families for gosift. Each instance
// owns its registry, so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	// Counters
	VerdictsTotal      *prometheus.CounterVec
	ChallengesIssued   prometheus.Counter
	ChallengesVerified *prometheus.CounterVec
	RecordsEmitted     *prometheus.CounterVec
	SinkErrors         *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec

	// Gauges
	ActiveSessions        prometheus.Gauge
	OutstandingChallenges prometheus.Gauge

	// Histograms
	HTTPDuration *prometheus.HistogramVec
}

// Config holds configuration for the metrics side server.
type Config struct {
	Enabled    bool
	Addr       string
	TLSCert    string
	TLSKey     string
	ClientCA   string
	RequireTLS bool
}

// LoadConfig loads metrics configuration from environment variables.
func LoadConfig() Config {
	return Config{
		Enabled:    getBool("METRICS_ENABLED", false),
		Addr:       getOr("METRICS_ADDR", "127.0.0.1:9090"),
		TLSCert:    getOr("METRICS_TLS_CERT", ""),
		TLSKey:     getOr("METRICS_TLS_KEY", ""),
		ClientCA:   getOr("METRICS_CLIENT_CA", ""),
		RequireTLS: getBool("METRICS_REQUIRE_TLS", false),
	}
}

// NewMetrics creates and registers all gosift metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		VerdictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosift_verdicts_total",
				Help: "Total verdicts by outcome and evidence source",
			},
			[]string{"verdict", "source"},
		),

		ChallengesIssued: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gosift_challenges_issued_total",
				Help: "Total JS challenges issued",
			},
		),

		ChallengesVerified: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosift_challenges_verified_total",
				Help: "Total JS challenge verifications by result",
			},
			[]string{"result"},
		),

		RecordsEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosift_records_emitted_total",
				Help: "Total detection records delivered per sink",
			},
			[]string{"sink"},
		),

		SinkErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosift_sink_errors_total",
				Help: "Total errors writing to a sink",
			},
			[]string{"sink", "error_type"},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gosift_http_requests_total",
				Help: "Total HTTP requests by endpoint and status",
			},
			[]string{"endpoint", "method", "status"},
		),

		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gosift_active_sessions",
				Help: "Live visit sessions being tracked",
			},
		),

		OutstandingChallenges: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gosift_outstanding_challenges",
				Help: "Issued challenges awaiting verification",
			},
		),

		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gosift_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"endpoint", "method"},
		),
	}

	m.registry.MustRegister(
		m.VerdictsTotal,
		m.ChallengesIssued,
		m.ChallengesVerified,
		m.RecordsEmitted,
		m.SinkErrors,
		m.HTTPRequests,
		m.ActiveSessions,
		m.OutstandingChallenges,
		m.HTTPDuration,
	)

	return m
}

// Handler exposes this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Convenience methods for common operations.

func (m *Metrics) IncrementVerdicts(verdict, source string) {
	m.VerdictsTotal.WithLabelValues(verdict, source).Inc()
}

func (m *Metrics) IncrementChallengesVerified(result string) {
	m.ChallengesVerified.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementRecords(sink string) {
	m.RecordsEmitted.WithLabelValues(sink).Inc()
}

func (m *Metrics) IncrementSinkErrors(sink, errorType string) {
	m.SinkErrors.WithLabelValues(sink, errorType).Inc()
}

func (m *Metrics) ObserveHTTP(endpoint, method string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

// Server is the metrics side server, kept off the public listener.
type Server struct {
	server *http.Server
	config Config
}

// NewServer creates a metrics server exposing m.
func NewServer(config Config, m *Metrics) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:         config.Addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if config.RequireTLS && config.TLSCert != "" && config.TLSKey != "" {
		tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
		if config.ClientCA != "" {
			clientCAs, err := loadCertPool(config.ClientCA)
			if err != nil {
				log.Printf("metrics: failed to load client CA: %v", err)
			} else {
				tlsConfig.ClientCAs = clientCAs
				tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
			}
		}
		srv.TLSConfig = tlsConfig
	}

	return &Server{server: srv, config: config}
}

// Start starts the metrics server in a separate goroutine.
func (s *Server) Start(ctx context.Context) error {
	if !s.config.Enabled {
		log.Printf("metrics: disabled (METRICS_ENABLED=false)")
		return nil
	}

	go func() {
		var err error
		if s.config.RequireTLS && s.config.TLSCert != "" && s.config.TLSKey != "" {
			log.Printf("metrics: HTTPS server listening on %s", s.config.Addr)
			err = s.server.ListenAndServeTLS(s.config.TLSCert, s.config.TLSKey)
		} else {
			log.Printf("metrics: HTTP server listening on %s", s.config.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Printf("metrics: server error: %v", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the metrics server.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.config.Enabled {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func getOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return parsed
}

func loadCertPool(certFile string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(certFile)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates in %s", certFile)
	}
	return pool, nil
}
