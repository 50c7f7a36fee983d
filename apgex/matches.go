package apgex

import "github.com/ldthomas/apgego/alphabet"

// matchSpan is one match located by collectMatches: its span plus a
// snapshot of the captures recorded while matching it (the AST buffer is
// reused by the next Parse, so this must be copied out immediately).
type matchSpan struct {
	Offset   uint
	Length   uint
	Captures map[string][]alphabet.Phrase
}

// collectMatches walks source from the beginning looking for non-
// overlapping matches of the start rule, independent of the matcher's own
// last_index cursor (Replace and Split are whole-source operations, not
// single-exec calls, so they keep their own local cursor). If all is false,
// it stops after the first match.
func (m *Matcher[C]) collectMatches(source []C, all bool) ([]matchSpan, error) {
	var spans []matchSpan
	i := uint(0)
	for i <= uint(len(source)) {
		next, ok := m.nextCandidate(source, i)
		if !ok {
			break
		}
		i = next
		if i > uint(len(source)) {
			break
		}
		res, err := m.parser.Parse(source, i, int(m.grammar.StartRule), nil)
		m.stats.accumulate(true, res.Matched, res.HitCount, res.MaxDepth, res.PPPTSkipped)
		if err != nil {
			return nil, err
		}
		if res.Matched {
			spans = append(spans, matchSpan{Offset: i, Length: res.Length, Captures: m.captureSnapshot()})
			if !all {
				break
			}
			step := res.Length
			if step == 0 {
				step = 1
			}
			i += step
			continue
		}
		i++
	}
	return spans, nil
}
