package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shortontech/gosift/internal/challenge"
	"github.com/shortontech/gosift/internal/detect"
	"github.com/shortontech/gosift/internal/httpx"
	"github.com/shortontech/gosift/internal/metrics"
	"github.com/shortontech/gosift/internal/sink"
	"github.com/shortontech/gosift/internal/visit"
	"github.com/shortontech/gosift/pkg/config"
)

func main() {
	selfcheck := flag.Bool("selfcheck", false, "run canned detections against the evaluators and exit")
	flag.Parse()

	cfg := config.Load()

	if *selfcheck {
		os.Exit(runSelfcheck())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics()

	sinks := buildSinks(ctx, cfg)
	emit := func(rec sink.Record) {
		for _, s := range sinks {
			if err := s.Enqueue(rec); err != nil {
				log.Printf("sink %s: %v", s.Name(), err)
				m.IncrementSinkErrors(s.Name(), "enqueue")
				continue
			}
			m.IncrementRecords(s.Name())
		}
	}

	challenges := challenge.NewStore()
	visits := visit.NewTracker(visit.DefaultDeadline, func(ip string, v detect.Verdict) {
		m.IncrementVerdicts(v.Verdict, "timeout")
		rec := sink.New(sink.TagBotVerdict, ip)
		rec.Verdict = v.Verdict
		rec.Code = v.Code
		rec.Analysis = &v
		emit(rec)
	})

	env := httpx.Env{
		Cfg:        cfg,
		Challenges: challenges,
		Visits:     visits,
		Emit:       emit,
		Metrics:    m,
		Ready:      func() bool { return len(sinks) > 0 },
	}

	metricsSrv := metrics.NewServer(metrics.LoadConfig(), m)
	_ = metricsSrv.Start(ctx)

	// Gauges track map sizes, refreshed on a coarse tick.
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.ActiveSessions.Set(float64(visits.Active()))
				m.OutstandingChallenges.Set(float64(challenges.Outstanding()))
			}
		}
	}()

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: httpx.NewMux(env),
	}

	go func() {
		log.Printf("gosift listening on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			log.Printf("sink %s close: %v", s.Name(), err)
		}
	}
}

// buildSinks starts the sinks named in OUTPUTS. A sink that fails to start
// is dropped with a log line rather than taking the process down; the log
// sink is the floor so the record stream is never silently empty.
func buildSinks(ctx context.Context, cfg config.Config) []sink.Sink {
	var sinks []sink.Sink
	for _, name := range cfg.Outputs {
		var s sink.Sink
		switch name {
		case "log":
			s = sink.NewLogSink()
		case "kafka":
			s = sink.NewKafkaSinkFromEnv()
		case "postgres":
			if cfg.PGDSN == "" {
				log.Printf("sink postgres: PG_DSN not set, skipping")
				continue
			}
			s = sink.NewPGSink(cfg.PGDSN)
		default:
			log.Printf("unknown sink %q, skipping", name)
			continue
		}
		if err := s.Start(ctx); err != nil {
			log.Printf("sink %s failed to start: %v", s.Name(), err)
			continue
		}
		sinks = append(sinks, s)
	}
	if len(sinks) == 0 {
		fallback := sink.NewLogSink()
		_ = fallback.Start(ctx)
		sinks = append(sinks, fallback)
	}
	return sinks
}
