package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"

	"github.com/xtding233/enhance-sim/internal/config"
	"github.com/xtding233/enhance-sim/internal/enhance"
	"github.com/xtding233/enhance-sim/internal/history"
	"github.com/xtding233/enhance-sim/internal/logging"
)

type settings struct {
	Addr          string        `env:"ADDR" envDefault:":8080"`
	ConfigDir     string        `env:"CONFIG_DIR" envDefault:"configs"`
	HistoryDB     string        `env:"HISTORY_DB" envDefault:"history.db"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string        `env:"LOG_FILE"`
	LogJSON       bool          `env:"LOG_JSON"`
	WatchInterval time.Duration `env:"CONFIG_WATCH_INTERVAL" envDefault:"5s"`
	MaxRuns       int           `env:"MAX_RUNS" envDefault:"1000000"`
}

type server struct {
	log     *slog.Logger
	loader  *config.Loader
	history *history.Store
	maxRuns int
}

type errResp struct {
	Err string `json:"err"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(r *http.Request, key string, def int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return v, nil
}

func parseSeed(r *http.Request) (*uint64, error) {
	s := r.URL.Query().Get("seed")
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, errors.New("invalid seed")
	}
	return &v, nil
}

// buildOptions assembles Monte Carlo options from query params against
// the current config tables.
func (s *server) buildOptions(r *http.Request) (enhance.MonteCarloOptions, error) {
	var opts enhance.MonteCarloOptions

	raw, err := s.loader.LoadMerged(r.URL.Query().Get("profile"))
	if err != nil {
		return opts, err
	}
	cfg, err := raw.EngineConfig()
	if err != nil {
		return opts, err
	}

	presetName := r.URL.Query().Get("preset")
	if presetName == "" {
		presetName = "conservative"
	}
	policy, ok := enhance.Preset(presetName)
	if !ok {
		return opts, errors.New("unknown preset " + presetName)
	}

	target, err := parseInt(r, "target", cfg.MaxTier-1)
	if err != nil {
		return opts, err
	}
	start, err := parseInt(r, "start", 0)
	if err != nil {
		return opts, err
	}
	bound, err := parseInt(r, "bound", 0)
	if err != nil {
		return opts, err
	}
	seed, err := parseSeed(r)
	if err != nil {
		return opts, err
	}

	opts = enhance.MonteCarloOptions{
		Config:      cfg,
		Policy:      policy,
		Prices:      raw.PriceTable(),
		StartTier:   start,
		TargetTier:  target,
		SafetyBound: bound,
		Seed:        seed,
	}
	return opts, nil
}

type simulateResp struct {
	Converged bool              `json:"converged"`
	Silver    int64             `json:"silver"`
	Ledger    enhance.RunLedger `json:"ledger"`
}

// one full run, raw ledger back
func (s *server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	opts, err := s.buildOptions(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Err: err.Error()})
		return
	}

	ledger, err := enhance.RunOnce(opts)
	var nc *enhance.NonConvergenceError
	switch {
	case errors.As(err, &nc):
		// truncated ledger is still useful; flag it instead of hiding it
		writeJSON(w, http.StatusOK, simulateResp{
			Converged: false,
			Silver:    nc.Ledger.SilverCost(opts.Prices),
			Ledger:    nc.Ledger,
		})
	case err != nil:
		writeJSON(w, http.StatusBadRequest, errResp{Err: err.Error()})
	default:
		writeJSON(w, http.StatusOK, simulateResp{
			Converged: true,
			Silver:    ledger.SilverCost(opts.Prices),
			Ledger:    ledger,
		})
	}
}

// N runs, aggregate report back
func (s *server) handleMonteCarlo(w http.ResponseWriter, r *http.Request) {
	opts, err := s.buildOptions(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Err: err.Error()})
		return
	}
	runs, err := parseInt(r, "runs", 10_000)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Err: err.Error()})
		return
	}
	if runs > s.maxRuns {
		writeJSON(w, http.StatusBadRequest, errResp{Err: "runs exceeds server limit"})
		return
	}
	workers, err := parseInt(r, "workers", 1)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Err: err.Error()})
		return
	}
	opts.Runs = runs
	opts.Workers = workers

	requestID := uuid.NewString()
	w.Header().Set("X-Request-ID", requestID)
	log := s.log.With("request_id", requestID)

	started := time.Now()
	report, err := enhance.RunMonteCarlo(r.Context(), opts)
	if err != nil {
		var nc *enhance.NonConvergenceError
		if errors.As(err, &nc) {
			writeJSON(w, http.StatusUnprocessableEntity, errResp{Err: err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, errResp{Err: err.Error()})
		return
	}
	log.Info("montecarlo batch done",
		"runs", report.Runs, "target", report.TargetTier,
		"cancelled", report.Cancelled, "elapsed", time.Since(started))

	if s.history != nil && !report.Cancelled {
		rec := history.Record{
			ID:         requestID,
			CreatedAt:  time.Now().UTC(),
			Preset:     presetName(r),
			TargetTier: report.TargetTier,
			Runs:       report.Runs,
			Seed:       report.Seed,
			Report:     report,
		}
		if err := s.history.Save(r.Context(), rec); err != nil {
			log.Warn("history save failed", "err", err)
		}
	}

	writeJSON(w, http.StatusOK, report)
}

func presetName(r *http.Request) string {
	if p := r.URL.Query().Get("preset"); p != "" {
		return p
	}
	return "conservative"
}

func (s *server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"presets": enhance.PresetNames()})
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseInt(r, "limit", 20)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Err: err.Error()})
		return
	}
	recs, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errResp{Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": recs})
}

func main() {
	var cfg settings
	if err := env.Parse(&cfg); err != nil {
		slog.Error("parse env", "err", err)
		os.Exit(1)
	}

	log := logging.New(logging.Config{
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
		JSON:  cfg.LogJSON,
	})

	loader := config.NewLoader(cfg.ConfigDir)
	watcher := config.NewDirWatcher(loader.Paths().ProfilesDir(), cfg.WatchInterval, log, func(string) {
		loader.Invalidate()
	})
	watcher.Start()
	defer watcher.Stop()

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		log.Error("open history store", "err", err)
		os.Exit(1)
	}
	defer store.Close()
	if err := store.Init(context.Background()); err != nil {
		log.Error("init history store", "err", err)
		os.Exit(1)
	}

	srv := &server{log: log, loader: loader, history: store, maxRuns: cfg.MaxRuns}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	mux.HandleFunc("/api/simulate", srv.handleSimulate)
	mux.HandleFunc("/api/montecarlo", srv.handleMonteCarlo)
	mux.HandleFunc("/api/presets", srv.handlePresets)
	mux.HandleFunc("/api/history", srv.handleHistory)

	httpSrv := &http.Server{Addr: cfg.Addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("listening", "addr", cfg.Addr, "config_dir", cfg.ConfigDir)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("serve", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
	log.Info("stopped")
}
