// Package parser implements the parser core: the single-threaded recursive
// descent interpreter over a compiled opcode.Grammar.
//
// The dispatcher switches over opcode kind and recurses with an explicit
// position parameter, restoring checkpointed state on failure, rather than
// a mutable cursor object threaded by reference.
package parser

import (
	"github.com/ldthomas/apgego/alphabet"
	"github.com/ldthomas/apgego/ast"
	"github.com/ldthomas/apgego/backref"
	"github.com/ldthomas/apgego/opcode"
	"github.com/ldthomas/apgego/pppt"
)

// Config holds the parser core's tunables, bound once when the Parser is
// constructed.
type Config struct {
	// LookbehindLimit bounds how many characters BKA/BKN will look behind
	// the current offset.
	LookbehindLimit uint
	// MaxDepth bounds recursion depth; 0 means DefaultConfig's value.
	MaxDepth int
}

// DefaultConfig returns the parser core's default tunables.
func DefaultConfig() Config {
	return Config{
		LookbehindLimit: 255,
		MaxDepth:        5000,
	}
}

// Validate reports a setup error in cfg, if any.
func (cfg Config) Validate() error {
	if cfg.MaxDepth < 0 {
		return &ParseError{Op: -1, Err: ErrInvalidConfig}
	}
	return nil
}

// Result is what Parse reports: whether the attempt matched, the matched
// length, max tree depth reached, and hit count.
type Result struct {
	Matched     bool
	Length      uint
	MaxDepth    int
	HitCount    uint64
	PPPTSkipped uint64
}

// Parser is one reusable interpreter instance bound to a single compiled
// Grammar. A Parser owns its own AST buffer and back-reference stacks; it is
// not safe for concurrent use by multiple goroutines — strictly
// single-threaded cooperative execution within one engine instance.
type Parser[C alphabet.Char] struct {
	grammar *opcode.Grammar[C]
	cfg     Config
	pppt    *pppt.Table

	rules     map[int]rulePair[C]
	udts      map[int]UdtCallback[C]
	enabled   map[int]bool // rule index -> capture enabled
	enabledUD map[int]bool // UDT index -> capture enabled

	backrefs *backref.Stacks[C]
	astBuf   *ast.Buffer
}

// NewParser returns a Parser bound to grammar, using cfg. A MaxDepth of zero
// or less is replaced by DefaultConfig's; LookbehindLimit is used as given.
func NewParser[C alphabet.Char](grammar *opcode.Grammar[C], cfg Config) *Parser[C] {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultConfig().MaxDepth
	}
	return &Parser[C]{
		grammar:   grammar,
		cfg:       cfg,
		rules:     make(map[int]rulePair[C]),
		udts:      make(map[int]UdtCallback[C]),
		enabled:   make(map[int]bool),
		enabledUD: make(map[int]bool),
		backrefs:  backref.NewStacks[C](len(grammar.Rules)),
		astBuf:    ast.NewBuffer(),
	}
}

// SetPPPT attaches (or, with nil, detaches) a PPPT fast-path table.
func (p *Parser[C]) SetPPPT(t *pppt.Table) {
	p.pppt = t
}

// BindRulePre registers rule index ruleIdx's pre-callback.
func (p *Parser[C]) BindRulePre(ruleIdx int, cb RuleCallback[C]) {
	pair := p.rules[ruleIdx]
	pair.Pre = cb
	p.rules[ruleIdx] = pair
}

// BindRulePost registers rule index ruleIdx's post-callback.
func (p *Parser[C]) BindRulePost(ruleIdx int, cb RuleCallback[C]) {
	pair := p.rules[ruleIdx]
	pair.Post = cb
	p.rules[ruleIdx] = pair
}

// BindUDT registers udtIdx's callback. A UDT referenced by the grammar with
// no bound callback is a setup error, detected on the first Parse.
func (p *Parser[C]) BindUDT(udtIdx int, cb UdtCallback[C]) {
	p.udts[udtIdx] = cb
}

// RegisterBkrTarget declares that the rule/UDT identified by key is a
// back-reference target in the given mode. Must be called once per distinct
// BKR target before the first Parse that exercises it (normally done once
// while binding a freshly compiled grammar).
func (p *Parser[C]) RegisterBkrTarget(key backref.TargetKey, mode backref.Mode) {
	p.backrefs.Register(key, mode)
}

// EnableRule turns AST capture on/off for the rule at ruleIdx.
func (p *Parser[C]) EnableRule(ruleIdx int, on bool) {
	if on {
		p.enabled[ruleIdx] = true
	} else {
		delete(p.enabled, ruleIdx)
	}
}

// EnableUDT turns AST capture on/off for the UDT at udtIdx.
func (p *Parser[C]) EnableUDT(udtIdx int, on bool) {
	if on {
		p.enabledUD[udtIdx] = true
	} else {
		delete(p.enabledUD, udtIdx)
	}
}

// AST returns the buffer of AST records from the most recent Parse. Valid
// until the next Parse call.
func (p *Parser[C]) AST() *ast.Buffer {
	return p.astBuf
}

// AllUDTsBound reports whether every UDT the grammar references has a
// bound callback, the precondition ErrUnboundUDT otherwise signals on the
// first Parse. Exposed so a driver can surface this as a setup-readiness
// property without forcing a Parse attempt.
func (p *Parser[C]) AllUDTsBound() bool {
	return p.unboundUDT() < 0
}

// SnapshotEnabled returns copies of the current rule/UDT capture-enabled
// sets, for a caller that needs to temporarily change them and restore
// them afterward (e.g. a split operation that disables capture for its
// duration).
func (p *Parser[C]) SnapshotEnabled() (map[int]bool, map[int]bool) {
	rules := make(map[int]bool, len(p.enabled))
	for k, v := range p.enabled {
		rules[k] = v
	}
	udts := make(map[int]bool, len(p.enabledUD))
	for k, v := range p.enabledUD {
		udts[k] = v
	}
	return rules, udts
}

// RestoreEnabled replaces the current rule/UDT capture-enabled sets with
// rules/udts, as previously returned by SnapshotEnabled.
func (p *Parser[C]) RestoreEnabled(rules, udts map[int]bool) {
	p.enabled = rules
	p.enabledUD = udts
}

// DisableAllCaptures clears every rule/UDT capture-enabled flag.
func (p *Parser[C]) DisableAllCaptures() {
	p.enabled = make(map[int]bool)
	p.enabledUD = make(map[int]bool)
}

// unboundUDT returns the index of a UDT opcode's target with no bound
// callback, or -1 if every referenced UDT is bound.
func (p *Parser[C]) unboundUDT() int {
	for i := range p.grammar.Ops {
		op := &p.grammar.Ops[i]
		if op.Kind() != opcode.KindUdt {
			continue
		}
		idx := int(op.Target())
		if _, ok := p.udts[idx]; !ok {
			return idx
		}
	}
	return -1
}

// Parse runs the parser core over input starting at subBegin, trying rule
// startRule.
func (p *Parser[C]) Parse(input []C, subBegin uint, startRule int, userData any) (Result, error) {
	if subBegin > uint(len(input)) {
		return Result{}, &ParseError{Op: -1, Offset: subBegin, Err: ErrSubBegin}
	}
	if p.grammar.RuleAt(opcode.Index(startRule)) == nil {
		return Result{}, &ParseError{Op: -1, Offset: subBegin, Err: ErrStartRuleRange}
	}
	if bad := p.unboundUDT(); bad >= 0 {
		return Result{}, &ParseError{Op: bad, Offset: subBegin, Err: ErrUnboundUDT}
	}

	p.backrefs.Reset()
	p.astBuf.Reset()

	c := &ctx[C]{
		input:    input,
		fullLen:  uint(len(input)),
		subBeg:   subBegin,
		subEnd:   uint(len(input)),
		userData: userData,
	}

	matched, length, err := p.evalRule(c, startRule, subBegin)
	if err != nil {
		p.astBuf.Reset()
		return Result{}, err
	}
	return Result{
		Matched:     matched,
		Length:      length,
		MaxDepth:    c.maxDepth,
		HitCount:    c.hitCount,
		PPPTSkipped: c.ppptSkipped,
	}, nil
}
