package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/xtding233/enhance-sim/internal/config"
	"github.com/xtding233/enhance-sim/internal/enhance"
)

func main() {
	var (
		configDir = flag.String("config", "configs", "config base directory")
		profile   = flag.String("profile", "", "profile overlay name (optional)")
		preset    = flag.String("preset", "conservative", "policy preset")
		target    = flag.Int("target", -1, "target tier (-1 = max tier - 1)")
		start     = flag.Int("start", 0, "starting tier")
		runs      = flag.Int("runs", 10_000, "number of independent runs")
		seed      = flag.Uint64("seed", 0, "RNG seed (0 = random)")
		bound     = flag.Int("bound", 0, "per-run attempt safety bound (0 = default)")
		workers   = flag.Int("workers", 4, "parallel workers")
		asJSON    = flag.Bool("json", false, "emit the raw report as JSON")
		list      = flag.Bool("presets", false, "list policy presets and exit")
	)
	flag.Parse()

	if *list {
		fmt.Println(strings.Join(enhance.PresetNames(), "\n"))
		return
	}

	if err := run(*configDir, *profile, *preset, *target, *start, *runs, *seed, *bound, *workers, *asJSON); err != nil {
		fmt.Fprintln(os.Stderr, "simulate:", err)
		os.Exit(1)
	}
}

func run(configDir, profile, preset string, target, start, runs int, seed uint64, bound, workers int, asJSON bool) error {
	raw, err := config.NewLoader(configDir).LoadMerged(profile)
	if err != nil {
		return err
	}
	cfg, err := raw.EngineConfig()
	if err != nil {
		return err
	}
	policy, ok := enhance.Preset(preset)
	if !ok {
		return fmt.Errorf("unknown preset %q (try -presets)", preset)
	}
	if target < 0 {
		target = cfg.MaxTier - 1
	}

	opts := enhance.MonteCarloOptions{
		Config:      cfg,
		Policy:      policy,
		Prices:      raw.PriceTable(),
		StartTier:   start,
		TargetTier:  target,
		Runs:        runs,
		SafetyBound: bound,
		Workers:     workers,
	}
	if seed != 0 {
		opts.Seed = &seed
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := enhance.RunMonteCarlo(ctx, opts)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(os.Stdout, preset, report)
	return nil
}

func printReport(w *os.File, preset string, rep enhance.Report) {
	fmt.Fprintf(w, "target tier %d, %d runs, preset %s, seed %d\n",
		rep.TargetTier, rep.Runs, preset, rep.Seed)
	if rep.Cancelled {
		fmt.Fprintln(w, "(interrupted - partial results)")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-20s %12s %10s %10s %10s %10s\n", "", "average", "p50", "p90", "p99", "worst")
	row := func(name string, m enhance.Metric, silver bool) {
		f := func(v int64) string {
			if silver {
				return humanSilver(v)
			}
			return fmt.Sprintf("%d", v)
		}
		avg := fmt.Sprintf("%.1f", m.Mean)
		if silver {
			avg = humanSilver(int64(m.Mean))
		}
		fmt.Fprintf(w, "%-20s %12s %10s %10s %10s %10s\n",
			name, avg, f(m.P50), f(m.P90), f(m.P99), f(m.Worst))
	}
	row("attempts", rep.Attempts, false)
	row("silver", rep.Silver, true)
	row("tier drops", rep.TierDrops, false)
	row("pity triggers", rep.PityTriggers, false)
	row("recovery attempts", rep.RecoveryAttempts, false)

	if len(rep.Resources) > 0 {
		fmt.Fprintln(w)
		names := make([]enhance.Resource, 0, len(rep.Resources))
		for r := range rep.Resources {
			names = append(names, r)
		}
		sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
		for _, r := range names {
			row(string(r), rep.Resources[r], false)
		}
	}
}

// humanSilver renders silver amounts the way players quote them: 1.5B,
// 34.7M, 2.1T.
func humanSilver(v int64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1_000_000_000_000:
		return fmt.Sprintf("%.1fT", float64(v)/1e12)
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(v)/1e9)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(v)/1e6)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", float64(v)/1e3)
	}
	return fmt.Sprintf("%d", v)
}
