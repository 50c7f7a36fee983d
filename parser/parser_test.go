package parser

import (
	"testing"

	"github.com/ldthomas/apgego/backref"
	"github.com/ldthomas/apgego/opcode"
)

// grammar builds a tiny hand-assembled Grammar[byte] the way an external
// compiler would deliver one, following _examples/coregx-coregex/nfa tests'
// habit of constructing compiled structures directly rather than through a
// higher-level front end that doesn't exist in this package's scope.
func grammar(ops []opcode.Op[byte], rules []opcode.Rule) *opcode.Grammar[byte] {
	return &opcode.Grammar[byte]{Ops: ops, Rules: rules, StartRule: 0}
}

func TestLiteralMatch(t *testing.T) {
	// S = "abc" (TBS), case-sensitive.
	g := grammar(
		[]opcode.Op[byte]{opcode.NewTbs[byte]([]byte("abc"))},
		[]opcode.Rule{{Name: "S", Root: 0}},
	)
	p := NewParser[byte](g, DefaultConfig())

	res, err := p.Parse([]byte("abcdef"), 0, 0, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !res.Matched || res.Length != 3 {
		t.Errorf("Parse() = %+v, want MATCH length 3", res)
	}

	res, err = p.Parse([]byte("xyz"), 0, 0, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Matched {
		t.Errorf("Parse() = %+v, want NOMATCH", res)
	}
}

func TestTLSCaseFold(t *testing.T) {
	g := grammar(
		[]opcode.Op[byte]{opcode.NewTls[byte]([]byte("get"))},
		[]opcode.Rule{{Name: "S", Root: 0}},
	)
	p := NewParser[byte](g, DefaultConfig())

	res, err := p.Parse([]byte("GET /"), 0, 0, nil)
	if err != nil || !res.Matched || res.Length != 3 {
		t.Errorf("Parse(GET) = %+v, %v, want MATCH length 3", res, err)
	}
}

func TestAnchors(t *testing.T) {
	// S = ABG CAT "a" CAT AEN  -- matches only if the whole input is "a".
	ops := []opcode.Op[byte]{
		opcode.NewAbg[byte](),                 // 0
		opcode.NewTbs[byte]([]byte("a")),       // 1
		opcode.NewAen[byte](),                  // 2
		opcode.NewCat[byte]([]opcode.Index{0, 1, 2}), // 3
	}
	g := grammar(ops, []opcode.Rule{{Name: "S", Root: 3}})
	p := NewParser[byte](g, DefaultConfig())

	if res, err := p.Parse([]byte("a"), 0, 0, nil); err != nil || !res.Matched || res.Length != 1 {
		t.Errorf(`Parse("a") = %+v, %v, want MATCH length 1`, res, err)
	}
	if res, err := p.Parse([]byte("ab"), 0, 0, nil); err != nil || res.Matched {
		t.Errorf(`Parse("ab") = %+v, %v, want NOMATCH (AEN fails)`, res, err)
	}
}

func TestRepNullableTerminates(t *testing.T) {
	// S = REP(0,RepMax, NOT(TBS("z"))): the child MATCHes 0 whenever the next
	// char isn't 'z', forcing the "zero-length accepting iteration"
	// termination rule to fire on the very first iteration, proving REP
	// doesn't loop forever.
	ops := []opcode.Op[byte]{
		opcode.NewTbs[byte]([]byte("z")), // 0
		opcode.NewNot[byte](0),           // 1: MATCH 0 iff next char != 'z'
		opcode.NewRep[byte](0, opcode.RepMax, 1), // 2
	}
	g := grammar(ops, []opcode.Rule{{Name: "S", Root: 2}})
	p := NewParser[byte](g, DefaultConfig())

	res, err := p.Parse([]byte("abc"), 0, 0, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !res.Matched || res.Length != 0 {
		t.Errorf("Parse() = %+v, want MATCH length 0 (terminated on zero-length iteration)", res)
	}
}

func TestRepMinMax(t *testing.T) {
	// S = REP(2,3, "a")
	ops := []opcode.Op[byte]{
		opcode.NewTbs[byte]([]byte("a")),
		opcode.NewRep[byte](2, 3, 0),
	}
	g := grammar(ops, []opcode.Rule{{Name: "S", Root: 1}})
	p := NewParser[byte](g, DefaultConfig())

	tests := []struct {
		in      string
		matched bool
		length  uint
	}{
		{"a", false, 0},
		{"aa", true, 2},
		{"aaa", true, 3},
		{"aaaa", true, 3}, // greedy up to max, doesn't consume the 4th
	}
	for _, tt := range tests {
		res, err := p.Parse([]byte(tt.in), 0, 0, nil)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.in, err)
		}
		if res.Matched != tt.matched || (tt.matched && res.Length != tt.length) {
			t.Errorf("Parse(%q) = %+v, want matched=%v length=%d", tt.in, res, tt.matched, tt.length)
		}
	}
}

func TestRepNullableTerminatesWithMinAboveOne(t *testing.T) {
	// S = REP(2,3, NOT("z")) -- the child MATCHes 0 on the very first
	// iteration whenever the next char isn't 'z', before count ever reaches
	// min. REP must still report MATCH length 0, not NOMATCH, even though
	// the loop stopped short of min iterations.
	ops := []opcode.Op[byte]{
		opcode.NewTbs[byte]([]byte("z")), // 0
		opcode.NewNot[byte](0),           // 1: MATCH 0 iff next char != 'z'
		opcode.NewRep[byte](2, 3, 1),     // 2
	}
	g := grammar(ops, []opcode.Rule{{Name: "S", Root: 2}})
	p := NewParser[byte](g, DefaultConfig())

	res, err := p.Parse([]byte("abc"), 0, 0, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !res.Matched || res.Length != 0 {
		t.Errorf("Parse() = %+v, want MATCH length 0 despite min=2 not being reached", res)
	}
}

func TestLookbehindLimit(t *testing.T) {
	// S = BKA("a"), exercised with LookbehindLimit=1: the one-character child
	// is found at k=1, the largest look-behind the limit allows, and BKA
	// fails when the character just behind the offset is not 'a'.
	ops := []opcode.Op[byte]{
		opcode.NewTbs[byte]([]byte("a")),
		opcode.NewBka[byte](0),
	}
	g := grammar(ops, []opcode.Rule{{Name: "S", Root: 1}})
	cfg := DefaultConfig()
	cfg.LookbehindLimit = 1
	p := NewParser[byte](g, cfg)

	res, err := p.Parse([]byte("ba"), 2, 0, nil) // offset 2, previous char 'a'
	if err != nil || !res.Matched || res.Length != 0 {
		t.Errorf("Parse() = %+v, %v, want MATCH length 0 (BKA found 'a' at k=1)", res, err)
	}

	res, err = p.Parse([]byte("bb"), 2, 0, nil)
	if err != nil || res.Matched {
		t.Errorf("Parse() = %+v, %v, want NOMATCH (no 'a' within lookbehind_limit)", res, err)
	}
}

func TestAndNot(t *testing.T) {
	// S = CAT(AND("a"), TBS("abc"))  -- AND doesn't consume.
	ops := []opcode.Op[byte]{
		opcode.NewTbs[byte]([]byte("a")),
		opcode.NewAnd[byte](0),
		opcode.NewTbs[byte]([]byte("abc")),
		opcode.NewCat[byte]([]opcode.Index{1, 2}),
	}
	g := grammar(ops, []opcode.Rule{{Name: "S", Root: 3}})
	p := NewParser[byte](g, DefaultConfig())

	res, err := p.Parse([]byte("abc"), 0, 0, nil)
	if err != nil || !res.Matched || res.Length != 3 {
		t.Errorf("Parse() = %+v, %v, want MATCH length 3", res, err)
	}
}

func TestRuleCallbackOverride(t *testing.T) {
	// S (rule 0) = TBS("zzz") normally, but a pre-callback always overrides
	// with MATCH length 2.
	ops := []opcode.Op[byte]{opcode.NewTbs[byte]([]byte("zzz"))}
	g := grammar(ops, []opcode.Rule{{Name: "S", Root: 0, Nullable: false}})
	p := NewParser[byte](g, DefaultConfig())
	p.BindRulePre(0, func(ctx CallbackCtx[byte]) (CallbackState, uint) {
		return Match, 2
	})

	res, err := p.Parse([]byte("ab"), 0, 0, nil)
	if err != nil || !res.Matched || res.Length != 2 {
		t.Errorf("Parse() = %+v, %v, want callback-overridden MATCH length 2", res, err)
	}
}

func TestRuleCallbackEmptyNonNullableIsFatal(t *testing.T) {
	ops := []opcode.Op[byte]{opcode.NewTbs[byte]([]byte("z"))}
	g := grammar(ops, []opcode.Rule{{Name: "S", Root: 0, Nullable: false}})
	p := NewParser[byte](g, DefaultConfig())
	p.BindRulePre(0, func(ctx CallbackCtx[byte]) (CallbackState, uint) {
		return Match, 0
	})

	_, err := p.Parse([]byte("ab"), 0, 0, nil)
	if err == nil {
		t.Fatalf("Parse() = nil error, want ErrEmptyNonNullable")
	}
}

func TestUDTBoundAndUnbound(t *testing.T) {
	ops := []opcode.Op[byte]{opcode.NewUdt[byte](0)}
	g := &opcode.Grammar[byte]{
		Ops:   ops,
		Rules: []opcode.Rule{{Name: "S", Root: 0}},
		Udts:  []opcode.Udt{{Name: "digits", Nullable: false}},
	}
	p := NewParser[byte](g, DefaultConfig())

	if _, err := p.Parse([]byte("123"), 0, 0, nil); err == nil {
		t.Fatalf("Parse() with unbound UDT = nil error, want ErrUnboundUDT")
	}

	p.BindUDT(0, func(ctx CallbackCtx[byte]) (CallbackState, uint) {
		n := uint(0)
		for n < uint(len(ctx.Input))-ctx.Offset && ctx.Input[ctx.Offset+n] >= '0' && ctx.Input[ctx.Offset+n] <= '9' {
			n++
		}
		if n == 0 {
			return Nomatch, 0
		}
		return Match, n
	})

	res, err := p.Parse([]byte("123abc"), 0, 0, nil)
	if err != nil || !res.Matched || res.Length != 3 {
		t.Errorf("Parse() = %+v, %v, want MATCH length 3", res, err)
	}
}

func TestBkrUniversalMode(t *testing.T) {
	// S = CAT(RNM(tag), TBS(" "), BKR(tag)); tag = TBS("a") | TBS("bb")
	ops := []opcode.Op[byte]{
		opcode.NewTbs[byte]([]byte("a")),                   // 0
		opcode.NewTbs[byte]([]byte("bb")),                  // 1
		opcode.NewAlt[byte]([]opcode.Index{0, 1}),          // 2 (tag's root)
		opcode.NewRnm[byte](1),                             // 3: RNM(tag)
		opcode.NewTbs[byte]([]byte(" ")),                   // 4
		opcode.NewBkr[byte](1, false, opcode.BkrUniversal, opcode.CaseSensitive), // 5
		opcode.NewCat[byte]([]opcode.Index{3, 4, 5}),       // 6 (S's root)
	}
	g := grammar(ops, []opcode.Rule{
		{Name: "S", Root: 6},
		{Name: "tag", Root: 2},
	})
	p := NewParser[byte](g, DefaultConfig())
	p.RegisterBkrTarget(backref.TargetKey{Index: 1}, backref.Universal)

	res, err := p.Parse([]byte("bb bb"), 0, 0, nil)
	if err != nil || !res.Matched || res.Length != 5 {
		t.Errorf("Parse() = %+v, %v, want MATCH length 5", res, err)
	}

	res, err = p.Parse([]byte("bb a"), 0, 0, nil)
	if err != nil || res.Matched {
		t.Errorf("Parse() = %+v, %v, want NOMATCH (back-reference doesn't match)", res, err)
	}
}
