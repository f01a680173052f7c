package enhance

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Metric summarizes one tracked quantity over all completed runs.
// Percentiles are nearest-rank, lower-biased: the value at index
// min(floor(n*p), n-1) of the ascending-sorted samples.
type Metric struct {
	Mean  float64 `json:"average"`
	P50   int64   `json:"p50"`
	P90   int64   `json:"p90"`
	P99   int64   `json:"p99"`
	Worst int64   `json:"worst"`
}

// Report is the aggregate output of a Monte Carlo batch.
type Report struct {
	Runs       int    `json:"num_runs"` // completed runs
	TargetTier int    `json:"target_tier"`
	Seed       uint64 `json:"seed"`
	Cancelled  bool   `json:"cancelled,omitempty"`

	Attempts         Metric `json:"attempts"`
	Silver           Metric `json:"silver"`
	TierDrops        Metric `json:"tier_drops"`
	PityTriggers     Metric `json:"pity_triggers"`
	RecoveryAttempts Metric `json:"recovery_attempts"`

	Resources map[Resource]Metric `json:"resources"`
}

// MonteCarloOptions describes one batch of independent runs.
type MonteCarloOptions struct {
	Config *Config
	Policy Policy
	Prices Pricer // optional; nil prices everything at 0

	StartTier     int
	StartProgress map[int]int // path entry tier -> initial sub-progress
	TargetTier    int
	Runs          int
	SafetyBound   int // 0 = DefaultSafetyBound

	// Seed pins the batch: run i draws from stream (Seed, i), so results
	// are identical for a fixed seed regardless of worker count.
	Seed    *uint64
	Workers int // <= 1 runs sequentially
}

func (opts *MonteCarloOptions) validate() error {
	if err := opts.Config.Validate(); err != nil {
		return err
	}
	if err := opts.Config.ValidateTarget(opts.TargetTier); err != nil {
		return err
	}
	if opts.Policy == nil {
		return fmt.Errorf("%w: policy is required", ErrInvalidConfig)
	}
	if opts.StartTier < 0 || opts.StartTier > opts.Config.MaxTier {
		return fmt.Errorf("%w: start tier %d outside [0,%d]", ErrInvalidConfig, opts.StartTier, opts.Config.MaxTier)
	}
	for entry, prog := range opts.StartProgress {
		path := opts.Config.PathAt(entry)
		if path == nil {
			return fmt.Errorf("%w: no alternate path enters at tier %d", ErrInvalidConfig, entry)
		}
		if prog < 0 || prog >= path.Length {
			return fmt.Errorf("%w: start progress %d outside [0,%d) for path at tier %d", ErrInvalidConfig, prog, path.Length, entry)
		}
	}
	return nil
}

func (opts *MonteCarloOptions) newGear() *GearState {
	g := NewGearState(opts.Config, opts.StartTier)
	for entry, prog := range opts.StartProgress {
		g.Path(entry).Progress = prog
	}
	return g
}

// RunOnce executes a single run. With a seed it uses stream (seed, 0),
// matching run 0 of a batch with the same options.
func RunOnce(opts MonteCarloOptions) (RunLedger, error) {
	if err := opts.validate(); err != nil {
		return RunLedger{}, err
	}
	rng := DefaultRNG()
	if opts.Seed != nil {
		rng = NewRunRNG(*opts.Seed, 0)
	}
	sim := &Simulator{cfg: opts.Config, policy: opts.Policy, rng: rng}
	return sim.RunToTarget(opts.newGear(), opts.TargetTier, opts.SafetyBound)
}

// RunMonteCarlo executes opts.Runs independent runs and reduces their
// ledgers to order statistics. Runs are embarrassingly parallel: each one
// owns its gear state and its random stream, and completed ledgers are
// appended under a mutex (the only shared structure).
//
// Cancellation is checked between runs, never mid-attempt. A cancelled
// batch reports over whatever runs completed, flagged Cancelled.
// A run that exhausts its safety bound aborts the whole batch with its
// *NonConvergenceError; mixing truncated ledgers into the statistics
// would bias every percentile downward.
func RunMonteCarlo(ctx context.Context, opts MonteCarloOptions) (Report, error) {
	if opts.Runs <= 0 {
		return Report{}, fmt.Errorf("%w: runs must be >= 1", ErrInvalidConfig)
	}
	if err := opts.validate(); err != nil {
		return Report{}, err
	}

	seed := RandomSeed()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > opts.Runs {
		workers = opts.Runs
	}

	var (
		mu      sync.Mutex
		ledgers []RunLedger
		fatal   error
	)
	abort := make(chan struct{}) // closed once on the first fatal run
	var abortOnce sync.Once

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				sim := &Simulator{cfg: opts.Config, policy: opts.Policy, rng: NewRunRNG(seed, uint64(i))}
				ledger, err := sim.RunToTarget(opts.newGear(), opts.TargetTier, opts.SafetyBound)
				if err != nil {
					abortOnce.Do(func() {
						mu.Lock()
						fatal = fmt.Errorf("run %d: %w", i, err)
						mu.Unlock()
						close(abort)
					})
					return
				}
				mu.Lock()
				ledgers = append(ledgers, ledger)
				mu.Unlock()
			}
		}()
	}

	cancelled := false
feed:
	for i := 0; i < opts.Runs; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			cancelled = true
			break feed
		case <-abort:
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if fatal != nil {
		return Report{}, fatal
	}

	report := buildReport(ledgers, opts.Prices)
	report.TargetTier = opts.TargetTier
	report.Seed = seed
	report.Cancelled = cancelled
	return report, nil
}

func buildReport(ledgers []RunLedger, prices Pricer) Report {
	n := len(ledgers)
	report := Report{Runs: n, Resources: make(map[Resource]Metric)}
	if n == 0 {
		return report
	}

	attempts := make([]int64, n)
	silver := make([]int64, n)
	drops := make([]int64, n)
	pity := make([]int64, n)
	recovery := make([]int64, n)
	byResource := make(map[Resource][]int64)

	for i, l := range ledgers {
		attempts[i] = int64(l.Attempts)
		silver[i] = l.SilverCost(prices)
		drops[i] = int64(l.TierDrops)
		pity[i] = int64(l.PityTriggers)
		recovery[i] = int64(l.RecoveryAttempts)
		for r := range l.Resources {
			if _, ok := byResource[r]; !ok {
				byResource[r] = make([]int64, n)
			}
		}
	}
	for r, samples := range byResource {
		for i, l := range ledgers {
			samples[i] = int64(l.Resources[r])
		}
		report.Resources[r] = metricOf(samples)
	}

	report.Attempts = metricOf(attempts)
	report.Silver = metricOf(silver)
	report.TierDrops = metricOf(drops)
	report.PityTriggers = metricOf(pity)
	report.RecoveryAttempts = metricOf(recovery)
	return report
}

// metricOf sorts in place; callers hand over ownership of samples.
func metricOf(samples []int64) Metric {
	n := len(samples)
	if n == 0 {
		return Metric{}
	}
	slices.Sort(samples)

	// summing in sorted order keeps the mean bit-identical across
	// worker counts
	var sum float64
	for _, v := range samples {
		sum += float64(v)
	}

	return Metric{
		Mean:  sum / float64(n),
		P50:   percentile(samples, 0.50),
		P90:   percentile(samples, 0.90),
		P99:   percentile(samples, 0.99),
		Worst: samples[n-1],
	}
}

// percentile is nearest-rank and lower-biased: index floor(n*p), clamped
// to the last element.
func percentile(sorted []int64, p float64) int64 {
	idx := int(float64(len(sorted)) * p)
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
