package apgex

import (
	"strings"

	"github.com/ldthomas/apgego/alphabet"
	"github.com/ldthomas/apgego/backref"
	"github.com/ldthomas/apgego/opcode"
	"github.com/ldthomas/apgego/parser"
	"github.com/ldthomas/apgego/prefilter"
)

// Matcher is the source-oriented driver over one compiled pattern: it owns
// a parser.Parser[C], the current search mode/last_index, and (for byte
// alphabets with required literals) a prefilter.Filter — a compiled program
// plus a mutable search cursor and accumulated stats.
type Matcher[C alphabet.Char] struct {
	cfg     Config
	grammar *opcode.Grammar[C]
	parser  *parser.Parser[C]
	prefilt *prefilter.Filter

	ruleIndex map[string]int // lowercased name -> rule index
	udtIndex  map[string]int // lowercased name -> UDT index

	flags     flagSettings
	lastIndex uint
	tracer    Tracer

	stats Stats
}

// NewMatcher returns a Matcher with no pattern set; call SetPatternPrebuilt
// before any search operation.
func NewMatcher[C alphabet.Char](cfg Config) (*Matcher[C], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = DefaultConfig().MaxDepth
	}
	if cfg.LookbehindLimit == 0 {
		cfg.LookbehindLimit = DefaultConfig().LookbehindLimit
	}
	return &Matcher[C]{cfg: cfg}, nil
}

// SetPatternPrebuilt binds grammar as the matcher's pattern and parses
// flags. apgex ships no ABNF/SABNF text-grammar compiler: the caller
// supplies an already-compiled opcode.Grammar, e.g. from its own compiler
// or an injected one.
func (m *Matcher[C]) SetPatternPrebuilt(grammar *opcode.Grammar[C], flags string) error {
	fs, err := parseFlags(flags)
	if err != nil {
		return err
	}

	m.grammar = grammar
	m.flags = fs
	m.lastIndex = 0

	p := parser.NewParser[C](grammar, parser.Config{
		LookbehindLimit: m.cfg.LookbehindLimit,
		MaxDepth:        m.cfg.MaxDepth,
	})
	if fs.usePPPT && grammar.PPPT != nil {
		p.SetPPPT(grammar.PPPT)
	}
	for i := range grammar.Ops {
		op := &grammar.Ops[i]
		if op.Kind() != opcode.KindBkr {
			continue
		}
		mode, _, isUDT := op.BkrInfo()
		if !isUDT && grammar.RuleAt(op.Target()) == nil {
			continue
		}
		bm := backref.Universal
		if mode == opcode.BkrParent {
			bm = backref.Parent
		}
		p.RegisterBkrTarget(backref.TargetKey{Index: int(op.Target()), IsUDT: isUDT}, bm)
	}
	m.parser = p

	m.ruleIndex = make(map[string]int, len(grammar.Rules))
	for i, r := range grammar.Rules {
		m.ruleIndex[strings.ToLower(r.Name)] = i
	}
	m.udtIndex = make(map[string]int, len(grammar.Udts))
	for i, u := range grammar.Udts {
		m.udtIndex[strings.ToLower(u.Name)] = i
	}

	m.prefilt = nil
	if lits, ok := any(grammar.RequiredLiterals).([][]byte); ok && len(lits) > 0 {
		f, err := prefilter.New(lits)
		if err != nil {
			return err
		}
		m.prefilt = f
	}

	return nil
}

// DefineUDT binds a callback to the UDT named name (case-insensitive). An
// unknown name is ErrUnknownName.
func (m *Matcher[C]) DefineUDT(name string, cb parser.UdtCallback[C]) error {
	if m.grammar == nil {
		return &SetupError{Err: ErrNoPattern}
	}
	idx, ok := m.udtIndex[strings.ToLower(name)]
	if !ok {
		return &SetupError{Err: ErrUnknownName, Detail: name}
	}
	m.parser.BindUDT(idx, cb)
	return nil
}

// BindRule binds pre/post callbacks to the rule named name (case-insensitive).
// Either may be nil to leave that half unbound.
func (m *Matcher[C]) BindRule(name string, pre, post parser.RuleCallback[C]) error {
	if m.grammar == nil {
		return &SetupError{Err: ErrNoPattern}
	}
	idx, ok := m.ruleIndex[strings.ToLower(name)]
	if !ok {
		return &SetupError{Err: ErrUnknownName, Detail: name}
	}
	if pre != nil {
		m.parser.BindRulePre(idx, pre)
	}
	if post != nil {
		m.parser.BindRulePost(idx, post)
	}
	return nil
}

// Enable turns AST capture on/off for a comma-separated list of rule/UDT
// names (case-insensitive, whitespace-trimmed), or for every rule and UDT
// if names is the literal "--all". An unknown name is ErrUnknownName.
func (m *Matcher[C]) Enable(names string, on bool) error {
	if m.grammar == nil {
		return &SetupError{Err: ErrNoPattern}
	}
	for _, raw := range strings.Split(names, ",") {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if name == "--all" {
			for idx := range m.grammar.Rules {
				m.parser.EnableRule(idx, on)
			}
			for idx := range m.grammar.Udts {
				m.parser.EnableUDT(idx, on)
			}
			continue
		}
		if idx, ok := m.ruleIndex[name]; ok {
			m.parser.EnableRule(idx, on)
			continue
		}
		if idx, ok := m.udtIndex[name]; ok {
			m.parser.EnableUDT(idx, on)
			continue
		}
		return &SetupError{Err: ErrUnknownName, Detail: raw}
	}
	return nil
}

// SetLastIndex sets the cursor used by the next Exec/Test call in global or
// sticky mode.
func (m *Matcher[C]) SetLastIndex(i uint) {
	m.lastIndex = i
}

// SetTracer attaches (or, with nil, detaches) a Tracer. It is invoked only
// when the pattern's flags include 't'.
func (m *Matcher[C]) SetTracer(t Tracer) {
	m.tracer = t
}

// Properties reports the matcher's current setup/search state: a
// supplemented introspection surface over its configuration and cursor.
type Properties struct {
	Mode         Mode
	UsePPPT      bool
	Trace        bool
	TraceHTML    bool
	LastIndex    uint
	HasPattern   bool
	AllUDTsBound bool
}

// Properties returns the matcher's current Properties snapshot.
func (m *Matcher[C]) Properties() Properties {
	p := Properties{
		Mode:       m.flags.mode,
		UsePPPT:    m.flags.usePPPT,
		Trace:      m.flags.trace,
		TraceHTML:  m.flags.traceHTML,
		LastIndex:  m.lastIndex,
		HasPattern: m.grammar != nil,
	}
	if m.parser != nil {
		p.AllUDTsBound = m.parser.AllUDTsBound()
	}
	return p
}

// asBytes reports (source, true) if C is instantiated as byte, else
// (nil, false). Used to gate the byte-only literal prefilter.
func asBytes[C alphabet.Char](s []C) ([]byte, bool) {
	b, ok := any(s).([]byte)
	return b, ok
}

// nextCandidate returns the next offset at or after i that could possibly
// start a match, or (0, false) if none remain. With no prefilter (wider
// alphabets, or a pattern with no required literals) every offset is a
// candidate.
func (m *Matcher[C]) nextCandidate(source []C, i uint) (uint, bool) {
	if m.prefilt == nil {
		return i, true
	}
	bytes, ok := asBytes(source)
	if !ok {
		return i, true
	}
	next := m.prefilt.Next(bytes, int(i))
	if next < 0 {
		return 0, false
	}
	return uint(next), true
}
