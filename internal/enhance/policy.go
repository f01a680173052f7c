package enhance

import "slices"

// Policy supplies the pure decisions a player would make: which booster
// to spend on an attempt, whether to pay for recovery after a failure,
// and whether to engage an alternate path at its entry tier. Policies
// never mutate gear state.
type Policy interface {
	Multiplier(targetTier int) Valks
	UseRecovery(tier int) bool
	EngagePath(entryTier int) bool
}

// ThresholdPolicy decides everything by tier thresholds, mirroring how
// players actually play: cheap boosters early, expensive ones late,
// recovery only where a drop hurts. A zero threshold disables the
// corresponding mechanic.
type ThresholdPolicy struct {
	// Lowest target tier at which each booster is used. The strongest
	// eligible booster wins.
	Valks10From  int
	Valks50From  int
	Valks100From int

	// Lowest current tier at which recovery is paid for. 0 = never.
	RecoveryFrom int

	// Entry tiers whose alternate path should be engaged.
	EngagePaths []int
}

func (p ThresholdPolicy) Multiplier(targetTier int) Valks {
	if p.Valks100From > 0 && targetTier >= p.Valks100From {
		return Valks100
	}
	if p.Valks50From > 0 && targetTier >= p.Valks50From {
		return Valks50
	}
	if p.Valks10From > 0 && targetTier >= p.Valks10From {
		return Valks10
	}
	return ValksNone
}

func (p ThresholdPolicy) UseRecovery(tier int) bool {
	return p.RecoveryFrom > 0 && tier >= p.RecoveryFrom
}

func (p ThresholdPolicy) EngagePath(entryTier int) bool {
	return slices.Contains(p.EngagePaths, entryTier)
}

// Named policy presets, in rough order of aggressiveness.
var presets = map[string]ThresholdPolicy{
	"conservative":     {RecoveryFrom: 1},
	"no_recovery":      {},
	"recovery_above_3": {RecoveryFrom: 3},
	"recovery_above_5": {RecoveryFrom: 5},
	"valks_high_tier":  {RecoveryFrom: 1, Valks50From: 6},
	"full_optimal":     {RecoveryFrom: 1, Valks10From: 4, Valks50From: 7},
	"failsafe_paths":   {RecoveryFrom: 6, Valks10From: 1, Valks50From: 3, Valks100From: 5, EngagePaths: []int{7, 8}},
}

// Preset returns a named policy preset.
func Preset(name string) (ThresholdPolicy, bool) {
	p, ok := presets[name]
	return p, ok
}

// PresetNames lists available presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
