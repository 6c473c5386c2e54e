package dedupe

import (
	"sort"

	"github.com/okian/vidmatch/internal/domain/model"
)

// Collector accumulates one record's scored candidates across its query
// fanout. It is not safe for concurrent use; each record owns one.
type Collector struct {
	policy     Policy
	seen       Deduper
	items      []model.ScoredCandidate
	index      map[string]int // id -> position in items
	duplicates int
}

// NewCollector creates an empty collector. The default policy is FirstWins.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		policy: FirstWins,
		seen:   NewInMemoryDeduper(),
		index:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add offers a candidate and reports whether it was kept. Candidates
// without an id are never kept.
func (c *Collector) Add(sc model.ScoredCandidate) bool {
	if sc.ID == "" {
		return false
	}
	if c.policy == KeepBest {
		return c.addBest(sc)
	}
	if c.seen.SeenAndRecord(sc.ID) {
		c.duplicates++
		return false
	}
	c.index[sc.ID] = len(c.items)
	c.items = append(c.items, sc)
	return true
}

// addBest replaces an earlier occurrence in place when sc scores higher,
// so the earlier position still breaks ranking ties. Ids the deduper
// recorded elsewhere are dropped since there is nothing here to replace.
func (c *Collector) addBest(sc model.ScoredCandidate) bool {
	pos, ok := c.index[sc.ID]
	if !ok {
		if c.seen.SeenAndRecord(sc.ID) {
			c.duplicates++
			return false
		}
		c.index[sc.ID] = len(c.items)
		c.items = append(c.items, sc)
		return true
	}
	c.duplicates++
	if sc.Score > c.items[pos].Score {
		c.items[pos] = sc
		return true
	}
	return false
}

// Len returns the number of distinct candidates held.
func (c *Collector) Len() int { return len(c.items) }

// Duplicates returns how many offered candidates repeated a known id.
func (c *Collector) Duplicates() int { return c.duplicates }

// Ranked returns the candidates by descending score. Equal scores keep
// first-seen order.
func (c *Collector) Ranked() []model.ScoredCandidate {
	out := make([]model.ScoredCandidate, len(c.items))
	copy(out, c.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
