package enhance

// DefaultSafetyBound caps attempts per run when the caller passes 0.
const DefaultSafetyBound = 100_000

// RunToTarget drives g until it reaches targetTier or the safety bound
// is hit. On a normal finish the returned ledger is complete; when the
// bound is exceeded the partial ledger is returned together with a
// *NonConvergenceError so callers can tell the two apart.
func (s *Simulator) RunToTarget(g *GearState, targetTier, safetyBound int) (RunLedger, error) {
	if err := s.cfg.ValidateTarget(targetTier); err != nil {
		return RunLedger{}, err
	}
	if safetyBound <= 0 {
		safetyBound = DefaultSafetyBound
	}

	ledger := newRunLedger()
	for g.Tier < targetTier && ledger.Attempts < safetyBound {
		if path := s.cfg.PathAt(g.Tier); path != nil && s.pathEngaged(g, path) {
			out := s.ResolveSub(g, path)
			ledger.Attempts++
			ledger.addResources(out.Resources)
			if out.Success {
				ledger.Successes++
			} else {
				ledger.Failures++
			}
			if out.PityTriggered {
				ledger.PityTriggers++
			}
			continue
		}

		out, err := s.Resolve(g)
		if err != nil {
			ledger.FinalTier = g.Tier
			return ledger, err
		}
		ledger.Attempts++
		ledger.addResources(out.Resources)
		if out.Success {
			ledger.Successes++
		} else {
			ledger.Failures++
		}
		if out.PityTriggered {
			ledger.PityTriggers++
		}
		if out.RecoveryAttempted {
			ledger.RecoveryAttempts++
			if out.RecoverySuccess {
				ledger.RecoverySuccesses++
			}
		}
		if out.EndTier < out.StartTier {
			ledger.TierDrops++
		}
	}

	ledger.FinalTier = g.Tier
	if g.Tier < targetTier {
		return ledger, &NonConvergenceError{Ledger: ledger}
	}
	return ledger, nil
}
