package enhance

// ResolveSub performs one sub-attempt of an alternate path, mutating g.
// Sub-attempts never downgrade the main tier; reaching the path length
// advances the main tier by one and clears the path state atomically.
func (s *Simulator) ResolveSub(g *GearState, path *PathConfig) SubOutcome {
	ps := g.Path(path.EntryTier)

	resources := map[Resource]int{ResourceExquisite: path.CrystalsPerAttempt}
	out := SubOutcome{
		EntryTier: path.EntryTier,
		Resources: resources,
	}

	forced := path.Pity > 0 && ps.Pity >= path.Pity
	success := forced
	if !forced {
		success = s.rng.Float64() < path.Rate
	}

	if success {
		ps.Progress++
		ps.Pity = 0
		out.Success = true
		out.PityTriggered = forced
		if ps.Progress >= path.Length {
			// path complete: one main-tier increment, fresh pity at the
			// new tier, path state back to zero
			g.Tier++
			g.resetEnergy(g.Tier)
			ps.Progress = 0
			out.PathComplete = true
		}
	} else {
		ps.Pity++
	}

	out.Progress = ps.Progress
	out.SubPity = ps.Pity
	out.EndTier = g.Tier
	return out
}

// pathEngaged reports whether the driver should route the next attempt
// through the alternate path at g's current tier. Partial progress must
// be finished regardless of policy; discarding it would waste the spent
// crystals.
func (s *Simulator) pathEngaged(g *GearState, path *PathConfig) bool {
	ps := g.Path(path.EntryTier)
	if ps.Progress >= path.Length {
		return false
	}
	return ps.Progress > 0 || s.policy.EngagePath(path.EntryTier)
}
