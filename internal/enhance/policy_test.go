package enhance

import "testing"

func TestThresholdPolicyMultiplier(t *testing.T) {
	p := ThresholdPolicy{Valks10From: 1, Valks50From: 3, Valks100From: 5}

	cases := []struct {
		target int
		want   Valks
	}{
		{1, Valks10},
		{2, Valks10},
		{3, Valks50},
		{4, Valks50},
		{5, Valks100}, // strongest eligible booster wins
		{9, Valks100},
	}
	for _, tc := range cases {
		if got := p.Multiplier(tc.target); got != tc.want {
			t.Fatalf("Multiplier(%d) = %v, want %v", tc.target, got, tc.want)
		}
	}

	none := ThresholdPolicy{}
	if got := none.Multiplier(9); got != ValksNone {
		t.Fatalf("zero thresholds must disable boosters; got %v", got)
	}
}

func TestThresholdPolicyRecovery(t *testing.T) {
	p := ThresholdPolicy{RecoveryFrom: 6}
	if p.UseRecovery(5) {
		t.Fatal("recovery below threshold")
	}
	if !p.UseRecovery(6) {
		t.Fatal("recovery at threshold")
	}
	if (ThresholdPolicy{}).UseRecovery(9) {
		t.Fatal("RecoveryFrom 0 must mean never")
	}
}

func TestPresets(t *testing.T) {
	for _, name := range PresetNames() {
		if _, ok := Preset(name); !ok {
			t.Fatalf("preset %q listed but not found", name)
		}
	}
	if _, ok := Preset("nope"); ok {
		t.Fatal("unknown preset must not resolve")
	}

	p, ok := Preset("failsafe_paths")
	if !ok {
		t.Fatal("failsafe_paths preset missing")
	}
	if !p.EngagePath(7) || !p.EngagePath(8) || p.EngagePath(5) {
		t.Fatalf("failsafe_paths should engage tiers 7 and 8 only; got %+v", p)
	}
}
