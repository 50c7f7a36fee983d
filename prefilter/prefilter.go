// Package prefilter wraps github.com/coregx/ahocorasick as a candidate-offset
// skip-ahead for the matcher driver's default/global search modes: instead
// of invoking parse at every offset, the driver asks the Filter for the
// next offset that could possibly start a match and only tries those.
//
// Built around one Automaton constructed from the pattern's required
// literals, whose Find(haystack, at) jumps straight to the next candidate.
// Unlike a standalone Aho-Corasick search strategy, the automaton here is
// strictly advisory — the caller still runs the full recursive-descent
// parse at the returned offset, since the required-literals set is only a
// prefix hint, not the whole pattern.
package prefilter

import "github.com/coregx/ahocorasick"

// Filter reports candidate start offsets in a byte haystack. A nil *Filter
// (via New returning one for an empty literal set) or a nil Filter pointer
// both mean "every offset is a candidate" — correct, just unfiltered.
type Filter struct {
	automaton *ahocorasick.Automaton
}

// New builds a Filter from literals (opcode.Grammar.RequiredLiterals,
// already narrowed to the byte alphabet by the caller — wider alphabets get
// no prefilter). Returns (nil, nil) if
// literals is empty: nothing to filter on.
func New(literals [][]byte) (*Filter, error) {
	if len(literals) == 0 {
		return nil, nil
	}
	builder := ahocorasick.NewBuilder()
	for _, lit := range literals {
		if len(lit) == 0 {
			continue // an empty required literal would match everywhere; skip it
		}
		builder.AddPattern(lit)
	}
	automaton, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &Filter{automaton: automaton}, nil
}

// Next returns the offset of the next position at or after from where one of
// the filter's literals begins, or -1 if none remain in haystack[from:]. A
// nil Filter (no literal hint available) always returns from unchanged,
// telling the caller to try every offset.
func (f *Filter) Next(haystack []byte, from int) int {
	if f == nil || f.automaton == nil {
		return from
	}
	m := f.automaton.Find(haystack, from)
	if m == nil {
		return -1
	}
	return m.Start
}
