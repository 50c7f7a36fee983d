package apgex

import "github.com/ldthomas/apgego/parser"

// search locates the next match of source per the matcher's current mode
// and last_index, without updating last_index itself (Exec does that, based
// on the outcome). It returns the parser result, the offset it matched at,
// and whether a match was found.
func (m *Matcher[C]) search(source []C) (parser.Result, uint, bool, error) {
	if m.lastIndex > uint(len(source)) {
		return parser.Result{}, 0, false, &SetupError{Err: ErrLastIndexRange}
	}

	if m.flags.mode == ModeSticky {
		res, err := m.traceParse(source, m.lastIndex)
		m.stats.accumulate(true, res.Matched, res.HitCount, res.MaxDepth, res.PPPTSkipped)
		if err != nil {
			return parser.Result{}, 0, false, err
		}
		if !res.Matched {
			return res, 0, false, nil
		}
		return res, m.lastIndex, true, nil
	}

	i := m.lastIndex
	for i <= uint(len(source)) {
		next, ok := m.nextCandidate(source, i)
		if !ok {
			break
		}
		i = next
		if i > uint(len(source)) {
			break
		}
		res, err := m.traceParse(source, i)
		m.stats.accumulate(true, res.Matched, res.HitCount, res.MaxDepth, res.PPPTSkipped)
		if err != nil {
			return parser.Result{}, 0, false, err
		}
		if res.Matched {
			return res, i, true, nil
		}
		i++
	}
	return parser.Result{}, 0, false, nil
}

// traceParse runs one parser.Parse attempt at offset, reporting it to the
// attached Tracer (if any) when the pattern's 't' flag is set. Tracing here
// is at the granularity of one top-level start-rule attempt, not every
// nested rule/operator: the tracer is a purely observational hook with no
// default implementation, and this matcher limits the wiring to its own
// search loop rather than threading a hook through the parser core's hot
// path.
func (m *Matcher[C]) traceParse(source []C, offset uint) (parser.Result, error) {
	name := ""
	if r := m.grammar.RuleAt(m.grammar.StartRule); r != nil {
		name = r.Name
	}
	if m.flags.trace && m.tracer != nil {
		m.tracer.Enter(name, offset)
	}
	res, err := m.parser.Parse(source, offset, int(m.grammar.StartRule), nil)
	if m.flags.trace && m.tracer != nil {
		m.tracer.Exit(name, offset, res.Matched, res.Length)
	}
	return res, err
}

// Exec searches source for the pattern, starting from last_index and
// honoring the current search mode. On MATCH in global or sticky mode,
// last_index advances to offset + max(length, 1), wrapped modulo
// len(source)+1; in default mode, or on NOMATCH in any mode, last_index
// resets to 0.
func (m *Matcher[C]) Exec(source []C) (Result[C], error) {
	if m.grammar == nil {
		return Result[C]{}, &SetupError{Err: ErrNoPattern}
	}

	res, offset, found, err := m.search(source)
	if err != nil {
		return Result[C]{}, err
	}
	if !found {
		m.lastIndex = 0
		return Result[C]{Matched: false}, nil
	}

	switch m.flags.mode {
	case ModeGlobal, ModeSticky:
		step := res.Length
		if step == 0 {
			step = 1
		}
		m.lastIndex = (offset + step) % (uint(len(source)) + 1)
	default:
		m.lastIndex = 0
	}

	return m.buildResult(source, offset, res), nil
}

// Test reports whether source contains a match, with the same last_index
// bookkeeping as Exec: test(source) == (exec(source).match != none).
func (m *Matcher[C]) Test(source []C) (bool, error) {
	res, err := m.Exec(source)
	if err != nil {
		return false, err
	}
	return res.Matched, nil
}
