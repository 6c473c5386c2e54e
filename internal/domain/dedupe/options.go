package dedupe

// Policy decides which occurrence of a duplicated candidate survives.
type Policy int

// Duplicate policies.
const (
	// FirstWins keeps the first occurrence in fanout order and drops later
	// ones, including their scores.
	FirstWins Policy = iota
	// KeepBest keeps the highest scoring occurrence. Ties keep the earlier one.
	KeepBest
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	if p == KeepBest {
		return "keep_best"
	}
	return "first_wins"
}

// Option applies a configuration option to the Collector.
type Option func(*Collector)

// WithPolicy sets the duplicate policy.
func WithPolicy(p Policy) Option {
	return func(c *Collector) {
		c.policy = p
	}
}

// WithDeduper replaces the id tracker. Ids already recorded in it are
// duplicates under either policy.
func WithDeduper(d Deduper) Option {
	return func(c *Collector) {
		if d != nil {
			c.seen = d
		}
	}
}
