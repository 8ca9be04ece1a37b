// snapd is the futures snapshot daemon. It periodically pulls the
// sportsbook catalog, the live odds feed, and the projections page,
// assembles a snapshot document, and serves it over HTTP and WebSocket.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/oddsmith/futuresnap/config"
	"github.com/oddsmith/futuresnap/core"
	"github.com/oddsmith/futuresnap/pkg/futures"
	"github.com/oddsmith/futuresnap/pkg/metrics"
	"github.com/oddsmith/futuresnap/pkg/oddsfeed"
	"github.com/oddsmith/futuresnap/pkg/ratings"
	"github.com/oddsmith/futuresnap/pkg/snapshot"
	"github.com/oddsmith/futuresnap/pkg/statsapi"
	"github.com/oddsmith/futuresnap/pkg/stream"
)

var (
	// Flags override environment configuration.
	httpAddr = flag.String("http", "", "HTTP server address (overrides LISTEN_ADDR)")
	interval = flag.Duration("interval", 0, "Run interval (overrides RUN_INTERVAL)")
	runOnce  = flag.Bool("once", false, "Run a single snapshot cycle and exit")
	verbose  = flag.Bool("verbose", false, "Verbose logging")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *httpAddr != "" {
		cfg.ListenAddr = *httpAddr
	}
	if *interval > 0 {
		cfg.RunInterval = *interval
	}

	setupLogging(cfg.LogLevel, *verbose)
	log.Info().
		Int("season", cfg.Season).
		Dur("interval", cfg.RunInterval).
		Str("snapshot_path", cfg.SnapshotPath).
		Msg("starting snapshot daemon")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	d := newDaemon(cfg)
	go d.hub.Run()

	if *runOnce {
		d.runCycle(ctx)
		return
	}

	go d.startHTTP(cfg.ListenAddr)
	go d.loop(ctx, cfg.RunInterval)

	log.Info().Str("addr", cfg.ListenAddr).Msg("daemon running")

	<-sigCh
	log.Info().Msg("shutting down")
	cancel()
}

func setupLogging(level string, verbose bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

type daemon struct {
	cfg       *config.Config
	pipeline  *futures.Pipeline
	oddsfeed  *oddsfeed.Client
	extractor *ratings.Extractor
	fetcher   *ratings.Fetcher
	store     *snapshot.Store
	metrics   *metrics.PipelineMetrics
	hub       *stream.Hub

	mu     sync.RWMutex
	latest *core.Snapshot
}

func newDaemon(cfg *config.Config) *daemon {
	m := metrics.NewPipelineMetrics()

	catalog := statsapi.NewClient(cfg.StatsAPIBaseURL)
	ratingsConfig := ratings.DefaultConfig()
	if cfg.MinRecords > 0 {
		ratingsConfig.MinRecords = cfg.MinRecords
	}

	return &daemon{
		cfg: cfg,
		pipeline: futures.NewPipeline(catalog, futures.Config{
			Season:      cfg.Season,
			Concurrency: cfg.Concurrency,
		}, m),
		oddsfeed:  oddsfeed.NewClient(cfg.OddsFeedBaseURL, cfg.OddsFeedAPIKey),
		extractor: ratings.NewExtractor(ratingsConfig, m),
		fetcher:   ratings.NewFetcher(cfg.RatingsPageURL),
		store:     snapshot.NewStore(cfg.SnapshotPath),
		metrics:   m,
		hub:       stream.NewHub(),
	}
}

func (d *daemon) loop(ctx context.Context, interval time.Duration) {
	d.runCycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.runCycle(ctx)
		}
	}
}

// runCycle executes one full snapshot run. Each section degrades
// independently, so a cycle always produces a well-formed document.
func (d *daemon) runCycle(ctx context.Context) {
	start := time.Now()
	log.Info().Msg("snapshot cycle starting")

	nextGame := d.oddsfeed.NextGameProbs(ctx)
	result := d.pipeline.Run(ctx)
	projections := d.extractor.Projections(ctx, d.fetcher)

	snap := snapshot.Assemble(nextGame, result.Futures, projections, result.WinTotals, map[string]string{
		core.SectionNextGame:    d.cfg.OddsFeedBaseURL,
		core.SectionFutures:     d.cfg.StatsAPIBaseURL,
		core.SectionProjections: d.cfg.RatingsPageURL,
		core.SectionWinTotals:   d.cfg.StatsAPIBaseURL,
	})

	previous, err := d.store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("could not read previous snapshot")
	}
	snapshot.ApplyFallback(snap, previous, d.metrics)

	if err := d.store.Save(snap); err != nil {
		log.Error().Err(err).Msg("failed to persist snapshot")
		d.metrics.RecordRun("error", time.Since(start))
		d.hub.BroadcastRunError(err)
		return
	}

	d.mu.Lock()
	d.latest = snap
	d.mu.Unlock()

	d.hub.BroadcastSnapshot(snap)
	d.metrics.RecordRun("ok", time.Since(start))
	log.Info().
		Str("run_id", snap.RunID).
		Int("next_game", len(snap.NextGame)).
		Int("futures", len(snap.Futures)).
		Int("projections", len(snap.Projections)).
		Int("win_totals", len(snap.WinTotals)).
		Dur("elapsed", time.Since(start)).
		Msg("snapshot cycle complete")
}

func (d *daemon) startHTTP(addr string) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/snapshot", func(w http.ResponseWriter, r *http.Request) {
		d.mu.RLock()
		snap := d.latest
		d.mu.RUnlock()
		if snap == nil {
			// Serve the persisted document before the first in-process run.
			var err error
			snap, err = d.store.Load()
			if err != nil || snap == nil {
				http.Error(w, "no snapshot available", http.StatusNotFound)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snap)
	})

	mux.Handle("/metrics", d.metrics.Handler())
	mux.HandleFunc("/ws", d.hub.ServeWS)

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("http server stopped")
	}
}
