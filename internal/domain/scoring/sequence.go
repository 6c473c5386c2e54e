package scoring

// autojunkMinLen is the length of b from which elements occurring in more
// than 1% of positions are excluded from block seeding.
const autojunkMinLen = 200

// SequenceRatio returns 2*M/(len(a)+len(b)) over runes, where M is the
// total size of the matching blocks found by repeatedly taking the longest
// common contiguous block and recursing on both sides of it. Two empty
// strings are identical (1.0).
func SequenceRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	m := newMatcher(ra, rb)
	return 2.0 * float64(m.matchedRunes()) / float64(total)
}

type matcher struct {
	a, b []rune
	b2j  map[rune][]int
}

func newMatcher(a, b []rune) *matcher {
	m := &matcher{a: a, b: b, b2j: make(map[rune][]int)}
	for j, r := range b {
		m.b2j[r] = append(m.b2j[r], j)
	}
	if n := len(b); n >= autojunkMinLen {
		limit := n/100 + 1
		for r, idx := range m.b2j {
			if len(idx) > limit {
				delete(m.b2j, r)
			}
		}
	}
	return m
}

type span struct{ alo, ahi, blo, bhi int }

// matchedRunes sums the sizes of all matching blocks.
func (m *matcher) matchedRunes() int {
	total := 0
	stack := []span{{0, len(m.a), 0, len(m.b)}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		i, j, k := m.longest(s)
		if k == 0 {
			continue
		}
		total += k
		if s.alo < i && s.blo < j {
			stack = append(stack, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			stack = append(stack, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return total
}

// longest finds the longest block a[i:i+k] == b[j:j+k] inside s. Among
// equally long blocks it returns the one starting earliest in a, then
// earliest in b.
func (m *matcher) longest(s span) (besti, bestj, bestk int) {
	besti, bestj = s.alo, s.blo
	j2len := map[int]int{}
	for i := s.alo; i < s.ahi; i++ {
		next := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < s.blo {
				continue
			}
			if j >= s.bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}

	// Seeding skips pruned elements; grow the block over them.
	for besti > s.alo && bestj > s.blo && m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestk = besti-1, bestj-1, bestk+1
	}
	for besti+bestk < s.ahi && bestj+bestk < s.bhi && m.a[besti+bestk] == m.b[bestj+bestk] {
		bestk++
	}
	return besti, bestj, bestk
}
