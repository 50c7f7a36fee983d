package parser

import (
	"github.com/ldthomas/apgego/alphabet"
	"github.com/ldthomas/apgego/backref"
)

// ctx holds the mutable state of one parse attempt that is not threaded
// through eval's return values: sub-range bounds, tree depth, and a small
// fixed set of counters, with no per-node heap allocation. The current
// offset itself is passed as an explicit parameter through the recursive
// eval calls, a pos-as-parameter style rather than a mutable field every
// operator would have to remember to restore.
type ctx[C alphabet.Char] struct {
	input []C

	fullLen uint // len(input); ABG/AEN anchor against this, ignoring sub-range
	subBeg  uint
	subEnd  uint

	depth       int
	maxDepth    int
	lookaround  int // >0 while inside AND/NOT/BKA/BKN
	hitCount    uint64
	ppptSkipped uint64

	userData any
}

// subSnapshot captures sub_begin/sub_end for BKA/BKN's temporary narrowing:
// both are set to the current offset for the lookaround child, then restored
// to the saved values afterward regardless of outcome.
type subSnapshot struct {
	beg, end uint
}

func (c *ctx[C]) saveSub() subSnapshot {
	return subSnapshot{beg: c.subBeg, end: c.subEnd}
}

func (c *ctx[C]) restoreSub(s subSnapshot) {
	c.subBeg, c.subEnd = s.beg, s.end
}

// bkrCheckpoint names backref.Checkpoint locally so parser.go reads as
// "the kind of checkpoint rule/CAT/REP/look-around entry points take",
// without repeating the backref import alias everywhere.
type bkrCheckpoint = backref.Checkpoint
