package scoring

// DurationGate rejects candidates whose runtime is too far from the
// target's. One value serves both the scorer's early reject and the
// processor's persistence check.
type DurationGate struct {
	MinRatio float64
	MaxRatio float64
}

// DefaultDurationGate accepts candidates within 30% of the target runtime.
func DefaultDurationGate() DurationGate {
	return DurationGate{MinRatio: 0.7, MaxRatio: 1.3}
}

// Ratio returns candidate/target and whether both durations are known.
func (g DurationGate) Ratio(target, candidate int) (float64, bool) {
	if target <= 0 || candidate <= 0 {
		return 0, false
	}
	return float64(candidate) / float64(target), true
}

// Passes reports whether the candidate duration is acceptable. Unknown
// durations (<= 0) on either side always pass.
func (g DurationGate) Passes(target, candidate int) bool {
	ratio, known := g.Ratio(target, candidate)
	if !known {
		return true
	}
	return ratio >= g.MinRatio && ratio <= g.MaxRatio
}
