package apgex

import (
	"github.com/ldthomas/apgego/alphabet"
	"github.com/ldthomas/apgego/parser"
)

// Result is what Exec reports for one search: whether the start rule
// matched, the matched phrase, its surrounding context, and (for every
// enabled rule/UDT) the captured sub-phrases in the order they occurred.
type Result[C alphabet.Char] struct {
	Matched      bool
	Offset       uint
	Length       uint
	LeftContext  alphabet.Phrase // [0, Offset)
	RightContext alphabet.Phrase // [Offset+Length, len(source))
	Depth        int
	HitCount     uint64
	Captures     map[string][]alphabet.Phrase
}

// captureSnapshot reads the matcher's AST buffer into a name -> ordered
// phrase list, the shape Result.Captures exposes. Must be called before the
// buffer is reused by another Parse.
func (m *Matcher[C]) captureSnapshot() map[string][]alphabet.Phrase {
	out := make(map[string][]alphabet.Phrase)
	for _, r := range m.parser.AST().Records() {
		if r.State.String() == "POST" {
			out[r.Name] = append(out[r.Name], r.Phrase)
		}
	}
	return out
}

func (m *Matcher[C]) buildResult(source []C, offset uint, res parser.Result) Result[C] {
	return Result[C]{
		Matched:      true,
		Offset:       offset,
		Length:       res.Length,
		LeftContext:  alphabet.Phrase{Offset: 0, Length: offset},
		RightContext: alphabet.Phrase{Offset: offset + res.Length, Length: uint(len(source)) - (offset + res.Length)},
		Depth:        res.MaxDepth,
		HitCount:     res.HitCount,
		Captures:     m.captureSnapshot(),
	}
}
