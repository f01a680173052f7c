package enhance

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyAtTarget reports a resolve call on gear that is already at
	// the configured max tier. This is caller misuse, not a random outcome.
	ErrAlreadyAtTarget = errors.New("enhance: already at max tier")

	// ErrInvalidConfig reports a configuration that cannot drive a
	// simulation (missing tier entries, rates out of range, ...).
	ErrInvalidConfig = errors.New("enhance: invalid configuration")
)

// NonConvergenceError reports a run that hit its attempt safety bound
// before reaching the target tier. The partial ledger is attached so the
// caller can decide whether to retry with a larger bound.
type NonConvergenceError struct {
	Ledger RunLedger
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("enhance: run did not converge within %d attempts (reached tier %d)",
		e.Ledger.Attempts, e.Ledger.FinalTier)
}

// Resource identifies a consumable tracked by the ledger.
type Resource string

const (
	ResourceCrystal   Resource = "pristine_black_crystal"
	ResourceScroll    Resource = "restoration_scroll"
	ResourceExquisite Resource = "exquisite_black_crystal"
	ResourceValks10   Resource = "valks_advice_10"
	ResourceValks50   Resource = "valks_advice_50"
	ResourceValks100  Resource = "valks_advice_100"
)

// Valks is the closed set of success-rate boosters. Each carries a
// multiplicative ratio (configured) and consumes one item per attempt.
type Valks int

const (
	ValksNone Valks = iota
	Valks10         // +10%
	Valks50         // +50%
	Valks100        // +100%
)

func (v Valks) String() string {
	switch v {
	case Valks10:
		return "10"
	case Valks50:
		return "50"
	case Valks100:
		return "100"
	}
	return "none"
}

// Resource returns the consumable backing this booster.
func (v Valks) Resource() Resource {
	switch v {
	case Valks10:
		return ResourceValks10
	case Valks50:
		return ResourceValks50
	case Valks100:
		return ResourceValks100
	}
	return ""
}

// PathState tracks one alternate path while gear sits at its entry tier.
type PathState struct {
	Progress int
	Pity     int
}

// GearState is the mutable state of one piece of gear being enhanced.
// Pity energy is indexed by target tier (1..MaxTier); entry 0 is unused.
type GearState struct {
	Tier   int
	Energy []int
	Paths  map[int]*PathState // keyed by path entry tier
}

// NewGearState creates gear at startTier with zero pity everywhere.
func NewGearState(cfg *Config, startTier int) *GearState {
	return &GearState{
		Tier:   startTier,
		Energy: make([]int, cfg.MaxTier+1),
		Paths:  make(map[int]*PathState),
	}
}

// EnergyAt returns accumulated pity energy for a target tier.
func (g *GearState) EnergyAt(target int) int {
	if target < 0 || target >= len(g.Energy) {
		return 0
	}
	return g.Energy[target]
}

func (g *GearState) addEnergy(target int) { g.Energy[target]++ }

func (g *GearState) resetEnergy(target int) { g.Energy[target] = 0 }

// Path returns (creating if needed) the state for a path entry tier.
func (g *GearState) Path(entryTier int) *PathState {
	ps, ok := g.Paths[entryTier]
	if !ok {
		ps = &PathState{}
		g.Paths[entryTier] = ps
	}
	return ps
}

// AttemptOutcome records one main-path enhancement attempt.
type AttemptOutcome struct {
	Success       bool
	PityTriggered bool // success was forced by pity energy
	StartTier     int
	EndTier       int
	Valks         Valks
	RecoveryAttempted bool
	RecoverySuccess   bool
	Resources         map[Resource]int // consumed by this attempt
}

// SubOutcome records one alternate-path sub-attempt.
type SubOutcome struct {
	Success       bool
	PityTriggered bool
	EntryTier     int
	Progress      int // after this attempt
	SubPity       int // after this attempt
	PathComplete  bool
	EndTier       int
	Resources     map[Resource]int
}

// RunLedger accumulates one run's costs and event counts.
type RunLedger struct {
	Attempts  int
	FinalTier int

	Successes         int
	Failures          int
	TierDrops         int
	PityTriggers      int
	RecoveryAttempts  int
	RecoverySuccesses int

	Resources map[Resource]int
}

func newRunLedger() RunLedger {
	return RunLedger{Resources: make(map[Resource]int)}
}

func (l *RunLedger) addResources(m map[Resource]int) {
	for r, n := range m {
		l.Resources[r] += n
	}
}

// Pricer converts resource counts into silver.
type Pricer interface {
	UnitPrice(r Resource) int64
}

// SilverCost prices the ledger with the given table. Order of summation
// does not affect the integer total.
func (l *RunLedger) SilverCost(p Pricer) int64 {
	if p == nil {
		return 0
	}
	var total int64
	for r, n := range l.Resources {
		total += p.UnitPrice(r) * int64(n)
	}
	return total
}
