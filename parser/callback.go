package parser

import "github.com/ldthomas/apgego/alphabet"

// CallbackState is the tri-state a rule/UDT callback returns.
type CallbackState uint8

const (
	// Active means "no override, continue normal processing" — valid only
	// for a rule's pre- or post-callback; a UDT callback returning Active is a
	// callback-protocol violation (ErrCallbackState).
	Active CallbackState = iota
	Match
	Nomatch
)

// CallbackCtx is what a rule/UDT callback receives: a pointer to the input
// sub-string, the offset within it, which rule/UDT this is, and the opaque
// user-data pointer threaded through from Parse.
type CallbackCtx[C alphabet.Char] struct {
	Input    []C // the full sub-string [sub_begin, sub_end)
	Offset   uint
	Index    int
	IsUDT    bool
	UserData any
}

// RuleCallback is a rule's pre- or post-parse callback. It returns Active
// to decline overriding, or Match/Nomatch plus the matched length to
// override the tree walk.
type RuleCallback[C alphabet.Char] func(ctx CallbackCtx[C]) (CallbackState, uint)

// UdtCallback is a UDT's callback. It must return Match or Nomatch; an
// Active return is a protocol violation.
type UdtCallback[C alphabet.Char] func(ctx CallbackCtx[C]) (CallbackState, uint)

// rulePair holds a rule's optional pre- and post-callbacks.
type rulePair[C alphabet.Char] struct {
	Pre, Post RuleCallback[C]
}
