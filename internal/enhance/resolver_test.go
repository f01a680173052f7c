package enhance

import (
	"errors"
	"testing"
)

// fixedRNG replays a scripted sequence of draws; the last value repeats.
type fixedRNG struct {
	vals []float64
	i    int
}

func (f *fixedRNG) Float64() float64 {
	if f.i >= len(f.vals) {
		return f.vals[len(f.vals)-1]
	}
	v := f.vals[f.i]
	f.i++
	return v
}

func testConfig() *Config {
	return &Config{
		MaxTier:       10,
		Rates:         []float64{0, 0.5, 0.4, 0.3, 0.2, 0.1, 0.07, 0.05, 0.03, 0.02, 0.01},
		Pity:          []int{0, 0, 0, 2, 3, 4, 12, 25, 100, 334, 500},
		Recovery:      RecoveryConfig{Rate: 0.4, Scrolls: 200},
		Valks10Ratio:  1.1,
		Valks50Ratio:  1.5,
		Valks100Ratio: 2.0,
		Paths: []PathConfig{
			{EntryTier: 7, Length: 5, Rate: 0.1, Pity: 17, CrystalsPerAttempt: 15},
			{EntryTier: 8, Length: 10, Rate: 0.1, Pity: 17, CrystalsPerAttempt: 15},
		},
	}
}

func mustSimulator(t *testing.T, cfg *Config, policy Policy, rng RandomSource) *Simulator {
	t.Helper()
	sim, err := NewSimulator(cfg, policy, rng)
	if err != nil {
		t.Fatal(err)
	}
	return sim
}

func TestPityMonotonicity(t *testing.T) {
	cfg := testConfig()
	cfg.Pity[1] = 10
	// four failures then one success on tier 0 -> 1
	rng := &fixedRNG{vals: []float64{0.99, 0.99, 0.99, 0.99, 0.0}}
	sim := mustSimulator(t, cfg, ThresholdPolicy{}, rng)
	g := NewGearState(cfg, 0)

	for i := 1; i <= 4; i++ {
		out, err := sim.Resolve(g)
		if err != nil {
			t.Fatal(err)
		}
		if out.Success {
			t.Fatalf("attempt %d should fail", i)
		}
		if got := g.EnergyAt(1); got != i {
			t.Fatalf("energy after %d failures = %d, want %d", i, got, i)
		}
	}

	out, err := sim.Resolve(g)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Success || g.Tier != 1 {
		t.Fatalf("fifth attempt should succeed; got %+v tier=%d", out, g.Tier)
	}
	if got := g.EnergyAt(1); got != 0 {
		t.Fatalf("energy must reset to 0 on success; got %d", got)
	}
}

func TestPityGuarantee(t *testing.T) {
	cfg := testConfig()
	cfg.Pity[1] = 3
	rng := &fixedRNG{vals: []float64{0.999999}} // any draw would fail

	for trial := 0; trial < 100; trial++ {
		sim := mustSimulator(t, cfg, ThresholdPolicy{}, rng)
		g := NewGearState(cfg, 0)
		g.Energy[1] = 3 // at threshold
		out, err := sim.Resolve(g)
		if err != nil {
			t.Fatal(err)
		}
		if !out.Success || !out.PityTriggered {
			t.Fatalf("trial %d: energy >= threshold must force success; got %+v", trial, out)
		}
		if g.Tier != 1 || g.EnergyAt(1) != 0 {
			t.Fatalf("trial %d: tier=%d energy=%d after forced success", trial, g.Tier, g.EnergyAt(1))
		}
	}
}

func TestPityDisabledNeverForces(t *testing.T) {
	cfg := testConfig()
	cfg.Pity[1] = 0
	rng := &fixedRNG{vals: []float64{0.999999}}
	sim := mustSimulator(t, cfg, ThresholdPolicy{}, rng)
	g := NewGearState(cfg, 0)
	g.Energy[1] = 10_000

	out, err := sim.Resolve(g)
	if err != nil {
		t.Fatal(err)
	}
	if out.Success || out.PityTriggered {
		t.Fatalf("threshold 0 must never force success; got %+v", out)
	}
}

func TestProbabilityClamp(t *testing.T) {
	cfg := testConfig()
	cfg.Rates[1] = 0.9
	sim := mustSimulator(t, cfg, ThresholdPolicy{Valks100From: 1}, &fixedRNG{vals: []float64{0.5}})

	if got := sim.effectiveRate(1, Valks100); got != 1.0 {
		t.Fatalf("0.9 x 2.0 must clamp to 1.0; got %v", got)
	}
	if got := sim.effectiveRate(2, Valks50); got != 0.4*1.5 {
		t.Fatalf("unclamped rate = %v, want %v", got, 0.4*1.5)
	}
}

func TestFloorInvariant(t *testing.T) {
	cfg := testConfig()
	rng := &fixedRNG{vals: []float64{0.999999}}
	sim := mustSimulator(t, cfg, ThresholdPolicy{}, rng)
	g := NewGearState(cfg, 0)

	for i := 0; i < 50; i++ {
		out, err := sim.Resolve(g)
		if err != nil {
			t.Fatal(err)
		}
		if g.Tier != 0 {
			t.Fatalf("tier 0 must never downgrade; tier=%d after attempt %d", g.Tier, i)
		}
		if out.EndTier != 0 {
			t.Fatalf("outcome end tier = %d, want 0", out.EndTier)
		}
	}
}

func TestRecoveryPreventsDowngrade(t *testing.T) {
	cfg := testConfig()
	// fail the roll (0.99), then win recovery (0.1 < 0.4)
	rng := &fixedRNG{vals: []float64{0.99, 0.1}}
	sim := mustSimulator(t, cfg, ThresholdPolicy{RecoveryFrom: 1}, rng)
	g := NewGearState(cfg, 5)

	out, err := sim.Resolve(g)
	if err != nil {
		t.Fatal(err)
	}
	if out.Success {
		t.Fatal("roll should have failed")
	}
	if !out.RecoveryAttempted || !out.RecoverySuccess {
		t.Fatalf("recovery should be attempted and succeed; got %+v", out)
	}
	if g.Tier != 5 {
		t.Fatalf("successful recovery must keep tier; got %d", g.Tier)
	}
	if out.Resources[ResourceScroll] != cfg.Recovery.Scrolls {
		t.Fatalf("recovery must consume %d scrolls; got %d", cfg.Recovery.Scrolls, out.Resources[ResourceScroll])
	}
}

func TestRecoveryFailureDowngrades(t *testing.T) {
	cfg := testConfig()
	// fail the roll, then lose recovery (0.9 >= 0.4)
	rng := &fixedRNG{vals: []float64{0.99, 0.9}}
	sim := mustSimulator(t, cfg, ThresholdPolicy{RecoveryFrom: 1}, rng)
	g := NewGearState(cfg, 5)

	out, err := sim.Resolve(g)
	if err != nil {
		t.Fatal(err)
	}
	if !out.RecoveryAttempted || out.RecoverySuccess {
		t.Fatalf("recovery should be attempted and fail; got %+v", out)
	}
	if g.Tier != 4 || out.EndTier != 4 {
		t.Fatalf("failed recovery must downgrade; tier=%d end=%d", g.Tier, out.EndTier)
	}
}

func TestNoRecoveryDowngrades(t *testing.T) {
	cfg := testConfig()
	rng := &fixedRNG{vals: []float64{0.99}}
	sim := mustSimulator(t, cfg, ThresholdPolicy{RecoveryFrom: 6}, rng)
	g := NewGearState(cfg, 3) // below the recovery threshold

	out, err := sim.Resolve(g)
	if err != nil {
		t.Fatal(err)
	}
	if out.RecoveryAttempted {
		t.Fatal("recovery must not be attempted below threshold")
	}
	if g.Tier != 2 {
		t.Fatalf("tier should drop to 2; got %d", g.Tier)
	}
	if out.Resources[ResourceScroll] != 0 {
		t.Fatal("no scrolls should be consumed without a recovery attempt")
	}
}

func TestCostPaidOnFailure(t *testing.T) {
	cfg := testConfig()
	rng := &fixedRNG{vals: []float64{0.99}}
	sim := mustSimulator(t, cfg, ThresholdPolicy{Valks50From: 1}, rng)
	g := NewGearState(cfg, 0)

	out, err := sim.Resolve(g)
	if err != nil {
		t.Fatal(err)
	}
	if out.Success {
		t.Fatal("attempt should fail")
	}
	if out.Resources[ResourceCrystal] != 1 || out.Resources[ResourceValks50] != 1 {
		t.Fatalf("crystal and booster are consumed win or lose; got %v", out.Resources)
	}
}

func TestAlreadyAtTarget(t *testing.T) {
	cfg := testConfig()
	sim := mustSimulator(t, cfg, ThresholdPolicy{}, &fixedRNG{vals: []float64{0.5}})
	g := NewGearState(cfg, cfg.MaxTier)

	_, err := sim.Resolve(g)
	if !errors.Is(err, ErrAlreadyAtTarget) {
		t.Fatalf("expected ErrAlreadyAtTarget; got %v", err)
	}
}
