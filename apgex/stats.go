package apgex

// Stats accumulates counters across every search performed through a
// Matcher, until reset.
type Stats struct {
	// Searches counts every Parse attempt made while locating matches
	// (including failed attempts at candidate offsets, and every attempt
	// inside Replace/Split). Offsets a prefilter skips are not parsed and not
	// counted.
	Searches uint64
	// Matches counts successful top-level matches.
	Matches uint64
	// HitCount sums parser.Result.HitCount across every attempt.
	HitCount uint64
	// MaxDepth is the deepest parser.Result.MaxDepth seen so far.
	MaxDepth int
	// PPPTSkipped sums parser.Result.PPPTSkipped across every attempt.
	PPPTSkipped uint64
}

func (s *Stats) accumulate(searched bool, matched bool, hitCount uint64, depth int, ppptSkipped uint64) {
	if searched {
		s.Searches++
	}
	if matched {
		s.Matches++
	}
	s.HitCount += hitCount
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}
	s.PPPTSkipped += ppptSkipped
}

// Stats returns a copy of the matcher's accumulated statistics.
func (m *Matcher[C]) Stats() Stats {
	return m.stats
}

// ResetStats zeroes the matcher's accumulated statistics.
func (m *Matcher[C]) ResetStats() {
	m.stats = Stats{}
}
