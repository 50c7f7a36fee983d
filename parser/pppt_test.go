package parser

import (
	"testing"

	"github.com/ldthomas/apgego/opcode"
	"github.com/ldthomas/apgego/pppt"
)

// TestPPPTIdenticalToPlainPath exercises spec.md §8's "with and without
// PPPT, identical results" invariant for a grammar whose PPPT table
// correctly predicts a TRG opcode's outcome.
func TestPPPTIdenticalToPlainPath(t *testing.T) {
	ops := []opcode.Op[byte]{opcode.NewTrg[byte]('a', 'z')}
	g := grammar(ops, []opcode.Rule{{Name: "S", Root: 0}})

	plain := NewParser[byte](g, DefaultConfig())
	withTable := NewParser[byte](g, DefaultConfig())

	tbl := pppt.NewTable(1, 256, pppt.IdentityClassify)
	tbl.Set(0, int('q'), pppt.MatchLen1)
	tbl.Set(0, int('9'), pppt.NoMatch)
	withTable.SetPPPT(tbl)

	for _, in := range []string{"q", "9", "Z"} {
		r1, err1 := plain.Parse([]byte(in), 0, 0, nil)
		r2, err2 := withTable.Parse([]byte(in), 0, 0, nil)
		if (err1 == nil) != (err2 == nil) || r1.Matched != r2.Matched || r1.Length != r2.Length {
			t.Errorf("Parse(%q): plain=%+v/%v, pppt=%+v/%v, want identical", in, r1, err1, r2, err2)
		}
	}

	// Confirm the fast path was actually taken for the predicted inputs.
	res, err := withTable.Parse([]byte("q"), 0, 0, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.PPPTSkipped == 0 {
		t.Errorf("Parse(%q).PPPTSkipped = 0, want the PPPT fast path taken", "q")
	}
}

func TestASTCaptureEnabling(t *testing.T) {
	// S = RNM(word); word = REP(1,RepMax, TRG('a','z'))
	ops := []opcode.Op[byte]{
		opcode.NewTrg[byte]('a', 'z'),
		opcode.NewRep[byte](1, opcode.RepMax, 0),
		opcode.NewRnm[byte](1),
	}
	g := grammar(ops, []opcode.Rule{
		{Name: "S", Root: 2},
		{Name: "word", Root: 1},
	})
	p := NewParser[byte](g, DefaultConfig())
	p.EnableRule(1, true)

	res, err := p.Parse([]byte("hello"), 0, 0, nil)
	if err != nil || !res.Matched || res.Length != 5 {
		t.Fatalf("Parse() = %+v, %v, want MATCH length 5", res, err)
	}

	records := p.AST().Records()
	if len(records) != 2 {
		t.Fatalf("AST().Records() has %d records, want 2 (PRE+POST for word)", len(records))
	}
	if records[0].Name != "word" || records[0].State.String() != "PRE" {
		t.Errorf("records[0] = %+v, want PRE word", records[0])
	}
	if records[1].Name != "word" || records[1].State.String() != "POST" || records[1].Phrase.Length != 5 {
		t.Errorf("records[1] = %+v, want POST word length 5", records[1])
	}
}
