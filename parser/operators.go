package parser

import (
	"github.com/ldthomas/apgego/alphabet"
	"github.com/ldthomas/apgego/backref"
	"github.com/ldthomas/apgego/opcode"
	"github.com/ldthomas/apgego/pppt"
)

// eval dispatches on op's kind, reading the current offset pos and reporting
// (matched, consumed, err): consumed is 0 whenever matched is false, and pos
// is never advanced in place — the caller combines pos and the returned
// consumed length itself.
func (p *Parser[C]) eval(c *ctx[C], idx opcode.Index, pos uint) (bool, uint, error) {
	c.depth++
	if c.depth > c.maxDepth {
		c.maxDepth = c.depth
	}
	if c.depth > p.cfg.MaxDepth {
		c.depth--
		return false, 0, &ParseError{Op: int(idx), Offset: pos, Err: ErrMaxDepthExceeded}
	}
	defer func() { c.depth-- }()

	c.hitCount++

	op := p.grammar.OpAt(idx)
	if op == nil {
		return false, 0, &ParseError{Op: int(idx), Offset: pos, Err: ErrOpcodeRange}
	}

	if p.pppt != nil && pos < c.subEnd {
		switch p.pppt.Lookup(int(idx), uint64(c.input[pos])) {
		case pppt.MatchLen1:
			c.ppptSkipped++
			return true, 1, nil
		case pppt.NoMatch:
			return false, 0, nil
		}
	}

	switch op.Kind() {
	case opcode.KindAlt:
		return p.evalAlt(c, op, pos)
	case opcode.KindCat:
		return p.evalCat(c, op, pos)
	case opcode.KindRep:
		return p.evalRep(c, op, pos)
	case opcode.KindRnm:
		return p.evalRule(c, int(op.Target()), pos)
	case opcode.KindTrg:
		return p.evalTrg(c, op, pos)
	case opcode.KindTls:
		return p.evalTls(c, op, pos)
	case opcode.KindTbs:
		return p.evalTbs(c, op, pos)
	case opcode.KindUdt:
		return p.evalUdt(c, op, pos)
	case opcode.KindAnd:
		return p.evalLookaround(c, op, pos, false)
	case opcode.KindNot:
		return p.evalLookaround(c, op, pos, true)
	case opcode.KindBka:
		return p.evalLookbehind(c, op, pos, false)
	case opcode.KindBkn:
		return p.evalLookbehind(c, op, pos, true)
	case opcode.KindBkr:
		return p.evalBkr(c, op, pos)
	case opcode.KindAbg:
		return pos == 0, 0, nil
	case opcode.KindAen:
		return pos == c.fullLen, 0, nil
	default:
		return false, 0, &ParseError{Op: int(idx), Offset: pos, Err: ErrOpcodeRange}
	}
}

// evalAlt: first child to MATCH wins; declaration order.
func (p *Parser[C]) evalAlt(c *ctx[C], op *opcode.Op[C], pos uint) (bool, uint, error) {
	for _, child := range op.Children() {
		matched, length, err := p.eval(c, child, pos)
		if err != nil {
			return false, 0, err
		}
		if matched {
			return true, length, nil
		}
	}
	return false, 0, nil
}

// evalCat: concatenation, checkpointed so a failing child rolls back every
// earlier child's AST records and back-reference captures.
func (p *Parser[C]) evalCat(c *ctx[C], op *opcode.Op[C], pos uint) (bool, uint, error) {
	astCP := p.astBuf.Len()
	bkrCP := p.backrefs.Checkpoint()

	cur := pos
	var total uint
	for _, child := range op.Children() {
		matched, length, err := p.eval(c, child, cur)
		if err != nil {
			return false, 0, err
		}
		if !matched {
			p.astBuf.Truncate(astCP)
			p.backrefs.Restore(bkrCP)
			return false, 0, nil
		}
		cur += length
		total += length
	}
	return true, total, nil
}

// evalRep: greedy repetition, min..max times, terminating immediately with
// MATCH on a zero-length accepting iteration (regardless of min/max) to
// guarantee termination over nullable children.
func (p *Parser[C]) evalRep(c *ctx[C], op *opcode.Op[C], pos uint) (bool, uint, error) {
	min, max, child := op.Rep()

	astCP := p.astBuf.Len()
	bkrCP := p.backrefs.Checkpoint()

	cur := pos
	var total, count uint
	for max == opcode.RepMax || count < max {
		matched, length, err := p.eval(c, child, cur)
		if err != nil {
			return false, 0, err
		}
		if !matched {
			break
		}
		if length == 0 {
			return true, total, nil
		}
		cur += length
		total += length
		count++
	}

	if count < min {
		p.astBuf.Truncate(astCP)
		p.backrefs.Restore(bkrCP)
		return false, 0, nil
	}
	return true, total, nil
}

// evalRule is RNM's body plus the shared rule-entry machinery Parse also
// uses for the start rule: callback override, checkpointing, parent-mode
// placeholder push, and post-match AST/back-reference bookkeeping.
func (p *Parser[C]) evalRule(c *ctx[C], ruleIdx int, pos uint) (bool, uint, error) {
	rule := p.grammar.RuleAt(opcode.Index(ruleIdx))
	if rule == nil {
		return false, 0, &ParseError{Op: ruleIdx, Offset: pos, Err: ErrOpcodeRange}
	}

	astCP := p.astBuf.Len()
	bkrCP := p.backrefs.Checkpoint()
	p.backrefs.EnterParentScope()
	pre := -1
	if p.enabled[ruleIdx] {
		pre = p.astBuf.PushPre(rule.Name, ruleIdx, false, pos)
	}

	matched, length, err := p.evalRuleWithCallbacks(c, ruleIdx, rule, pos)
	if err != nil {
		return false, 0, err
	}

	if !matched {
		p.astBuf.Truncate(astCP)
		p.backrefs.Restore(bkrCP)
		return false, 0, nil
	}

	if pre >= 0 {
		p.astBuf.PushPost(pre, length)
	}
	p.backrefs.Capture(backref.TargetKey{Index: ruleIdx}, alphabet.Phrase{Offset: pos, Length: length})
	return true, length, nil
}

// evalRuleWithCallbacks applies the pre-/post-callback override protocol
// around a plain tree evaluation.
func (p *Parser[C]) evalRuleWithCallbacks(c *ctx[C], ruleIdx int, rule *opcode.Rule, pos uint) (bool, uint, error) {
	pair := p.rules[ruleIdx]

	matched, length, err := false, uint(0), error(nil)
	if pair.Pre != nil {
		state, l := pair.Pre(p.callbackCtx(c, ruleIdx, false, pos))
		if state == Active {
			matched, length, err = p.eval(c, rule.Root, pos)
		} else {
			matched, length, err = p.applyOverride(c, ruleIdx, rule.Nullable, pos, state, l)
		}
	} else {
		matched, length, err = p.eval(c, rule.Root, pos)
	}
	if err != nil {
		return false, 0, err
	}

	if pair.Post != nil {
		postPos := pos
		if matched {
			postPos = pos + length
		}
		state, l := pair.Post(p.callbackCtx(c, ruleIdx, false, postPos))
		if state != Active {
			return p.applyOverride(c, ruleIdx, rule.Nullable, pos, state, l)
		}
	}
	return matched, length, nil
}

// applyOverride validates and applies a callback's (state, length) return:
// length must satisfy pos+length <= sub_end, and a non-nullable rule
// reporting (Match, 0) is a fatal error.
func (p *Parser[C]) applyOverride(c *ctx[C], idx int, nullable bool, pos uint, state CallbackState, length uint) (bool, uint, error) {
	switch state {
	case Match:
		if pos+length > c.subEnd {
			return false, 0, &ParseError{Op: idx, Offset: pos, Err: ErrCallbackLength}
		}
		if length == 0 && !nullable {
			return false, 0, &ParseError{Op: idx, Offset: pos, Err: ErrEmptyNonNullable}
		}
		return true, length, nil
	case Nomatch:
		return false, 0, nil
	default:
		return false, 0, &ParseError{Op: idx, Offset: pos, Err: ErrCallbackState}
	}
}

func (p *Parser[C]) callbackCtx(c *ctx[C], idx int, isUDT bool, pos uint) CallbackCtx[C] {
	return CallbackCtx[C]{
		Input:    c.input[c.subBeg:c.subEnd],
		Offset:   pos - c.subBeg,
		Index:    idx,
		IsUDT:    isUDT,
		UserData: c.userData,
	}
}

// recordAndCapture pushes an AST PRE/POST pair (if the UDT is enabled for
// capture) and records a back-reference capture (a no-op if it is not a
// registered target), on a UDT's successful exit. Rules push their PRE on
// entry instead, in evalRule.
func (p *Parser[C]) recordAndCapture(idx int, isUDT bool, name string, pos, length uint) {
	enabled := p.enabled
	if isUDT {
		enabled = p.enabledUD
	}
	if enabled[idx] {
		pre := p.astBuf.PushPre(name, idx, isUDT, pos)
		p.astBuf.PushPost(pre, length)
	}
	p.backrefs.Capture(backref.TargetKey{Index: idx, IsUDT: isUDT}, alphabet.Phrase{Offset: pos, Length: length})
}

// evalTrg: single-character inclusive range terminal.
func (p *Parser[C]) evalTrg(c *ctx[C], op *opcode.Op[C], pos uint) (bool, uint, error) {
	if pos >= c.subEnd {
		return false, 0, nil
	}
	lo, hi := op.Range()
	ch := c.input[pos]
	if ch >= lo && ch <= hi {
		return true, 1, nil
	}
	return false, 0, nil
}

// evalTls: case-insensitive literal; the stored literal is already folded to
// lowercase at compile time, so only the input side needs folding here.
func (p *Parser[C]) evalTls(c *ctx[C], op *opcode.Op[C], pos uint) (bool, uint, error) {
	lit := op.Literal()
	n := uint(len(lit))
	if pos+n > c.subEnd {
		return false, 0, nil
	}
	for i, want := range lit {
		if alphabet.FoldASCII(c.input[pos+uint(i)]) != want {
			return false, 0, nil
		}
	}
	return true, n, nil
}

// evalTbs: exact-case literal.
func (p *Parser[C]) evalTbs(c *ctx[C], op *opcode.Op[C], pos uint) (bool, uint, error) {
	lit := op.Literal()
	n := uint(len(lit))
	if pos+n > c.subEnd {
		return false, 0, nil
	}
	for i, want := range lit {
		if c.input[pos+uint(i)] != want {
			return false, 0, nil
		}
	}
	return true, n, nil
}

// evalUdt invokes the bound callback, trusting its returned (state, length)
// subject to the same bounds and nullable checks as RNM.
func (p *Parser[C]) evalUdt(c *ctx[C], op *opcode.Op[C], pos uint) (bool, uint, error) {
	idx := int(op.Target())
	cb, ok := p.udts[idx]
	if !ok {
		return false, 0, &ParseError{Op: idx, Offset: pos, Err: ErrUnboundUDT}
	}
	udt := p.grammar.UdtAt(op.Target())
	nullable := udt != nil && udt.Nullable

	state, length := cb(p.callbackCtx(c, idx, true, pos))
	matched, length, err := p.applyOverride(c, idx, nullable, pos, state, length)
	if err != nil {
		return false, 0, err
	}
	if !matched {
		return false, 0, nil
	}

	name := ""
	if udt != nil {
		name = udt.Name
	}
	p.recordAndCapture(idx, true, name, pos, length)
	return true, length, nil
}

// evalLookaround implements AND (invert=false) and NOT (invert=true):
// evaluate the child with every side effect rolled back, then report MATCH 0
// according to whether the child matched (AND) or didn't (NOT).
func (p *Parser[C]) evalLookaround(c *ctx[C], op *opcode.Op[C], pos uint, invert bool) (bool, uint, error) {
	astCP := p.astBuf.Len()
	bkrCP := p.backrefs.Checkpoint()

	c.lookaround++
	matched, _, err := p.eval(c, op.Child(), pos)
	c.lookaround--

	p.astBuf.Truncate(astCP)
	p.backrefs.Restore(bkrCP)
	if err != nil {
		return false, 0, err
	}

	if invert {
		matched = !matched
	}
	if matched {
		return true, 0, nil
	}
	return false, 0, nil
}

// evalLookbehind implements BKA (invert=false) and BKN (invert=true):
// iterate candidate look-behind lengths k = 0..min(o, lookbehind_limit),
// narrowing the sub-range to [o,o) for each attempt, stopping at the first
// k for which the child matches exactly k characters.
func (p *Parser[C]) evalLookbehind(c *ctx[C], op *opcode.Op[C], pos uint, invert bool) (bool, uint, error) {
	limit := p.cfg.LookbehindLimit
	maxK := pos
	if limit < maxK {
		maxK = limit
	}

	astCP := p.astBuf.Len()
	bkrCP := p.backrefs.Checkpoint()
	savedSub := c.saveSub()
	c.subBeg, c.subEnd = pos, pos
	c.lookaround++

	found := false
	var evalErr error
	for k := uint(0); k <= maxK; k++ {
		matched, length, err := p.eval(c, op.Child(), pos-k)
		if err != nil {
			evalErr = err
			break
		}
		if matched && length == k {
			found = true
			break
		}
	}

	c.lookaround--
	c.restoreSub(savedSub)
	p.astBuf.Truncate(astCP)
	p.backrefs.Restore(bkrCP)

	if evalErr != nil {
		return false, 0, evalErr
	}
	if invert {
		found = !found
	}
	if found {
		return true, 0, nil
	}
	return false, 0, nil
}

// evalBkr matches the phrase most recently captured by op's target.
func (p *Parser[C]) evalBkr(c *ctx[C], op *opcode.Op[C], pos uint) (bool, uint, error) {
	mode, cs, isUDT := op.BkrInfo()
	_ = mode // mode only governs how Capture/EnterParentScope behave; fetch is mode-agnostic (always reads the top frame)

	key := backref.TargetKey{Index: int(op.Target()), IsUDT: isUDT}
	target, ok := p.backrefs.Fetch(key)
	if !ok {
		return false, 0, nil
	}
	if pos+target.Length > c.subEnd {
		return false, 0, nil
	}

	for i := uint(0); i < target.Length; i++ {
		got := c.input[pos+i]
		want := c.input[target.Offset+i]
		if cs == opcode.CaseInsensitive {
			got = alphabet.FoldASCII(got)
			want = alphabet.FoldASCII(want)
		}
		if got != want {
			return false, 0, nil
		}
	}
	return true, target.Length, nil
}
