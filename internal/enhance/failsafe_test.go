package enhance

import "testing"

func TestPathCompletionAtomicity(t *testing.T) {
	cfg := testConfig()
	path := cfg.PathAt(7)
	rng := &fixedRNG{vals: []float64{0.0}} // always succeed
	sim := mustSimulator(t, cfg, ThresholdPolicy{EngagePaths: []int{7}}, rng)

	g := NewGearState(cfg, 7)
	g.Path(7).Progress = path.Length - 1
	g.Energy[8] = 42 // stale pity at the destination tier

	out := sim.ResolveSub(g, path)
	if !out.Success || !out.PathComplete {
		t.Fatalf("final sub-attempt should complete the path; got %+v", out)
	}
	if g.Tier != 8 {
		t.Fatalf("path completion must yield exactly one tier increment; tier=%d", g.Tier)
	}
	if ps := g.Path(7); ps.Progress != 0 || ps.Pity != 0 {
		t.Fatalf("path state must reset on completion; got %+v", ps)
	}
	if g.EnergyAt(8) != 0 {
		t.Fatalf("pity energy at the new tier must reset; got %d", g.EnergyAt(8))
	}
}

func TestPathSubPity(t *testing.T) {
	cfg := testConfig()
	path := cfg.PathAt(7)
	rng := &fixedRNG{vals: []float64{0.999999}}
	sim := mustSimulator(t, cfg, ThresholdPolicy{EngagePaths: []int{7}}, rng)
	g := NewGearState(cfg, 7)

	for i := 1; i <= path.Pity; i++ {
		out := sim.ResolveSub(g, path)
		if out.Success {
			t.Fatalf("sub-attempt %d should fail", i)
		}
		if out.SubPity != i {
			t.Fatalf("sub-pity after %d failures = %d", i, out.SubPity)
		}
		if g.Tier != 7 {
			t.Fatal("sub-attempts never downgrade the main tier")
		}
	}

	// at the threshold the next sub-attempt is forced
	out := sim.ResolveSub(g, path)
	if !out.Success || !out.PityTriggered {
		t.Fatalf("sub-pity at threshold must force success; got %+v", out)
	}
	if out.Progress != 1 || g.Path(7).Pity != 0 {
		t.Fatalf("success must advance progress and reset sub-pity; got %+v", out)
	}
}

func TestPathConsumesCrystals(t *testing.T) {
	cfg := testConfig()
	path := cfg.PathAt(8)
	sim := mustSimulator(t, cfg, ThresholdPolicy{EngagePaths: []int{8}}, &fixedRNG{vals: []float64{0.999999}})
	g := NewGearState(cfg, 8)

	out := sim.ResolveSub(g, path)
	if out.Resources[ResourceExquisite] != path.CrystalsPerAttempt {
		t.Fatalf("sub-attempt must consume %d crystals win or lose; got %v",
			path.CrystalsPerAttempt, out.Resources)
	}
}

func TestPartialPathMustContinue(t *testing.T) {
	cfg := testConfig()
	cfg.Paths[0].Rate = 1.0 // tier 7 path always succeeds
	rng := &fixedRNG{vals: []float64{0.5}}
	// policy does NOT engage the path; partial progress forces it anyway
	sim := mustSimulator(t, cfg, ThresholdPolicy{}, rng)

	g := NewGearState(cfg, 7)
	g.Path(7).Progress = 2

	ledger, err := sim.RunToTarget(g, 8, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := cfg.Paths[0].Length - 2
	if ledger.Attempts != want {
		t.Fatalf("driver must finish the started path in %d sub-attempts; got %d", want, ledger.Attempts)
	}
	if ledger.Resources[ResourceCrystal] != 0 {
		t.Fatalf("no main-path attempts expected; consumed %v", ledger.Resources)
	}
	if ledger.FinalTier != 8 {
		t.Fatalf("final tier = %d, want 8", ledger.FinalTier)
	}
}
