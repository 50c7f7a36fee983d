// Package ast implements the AST record buffer: the linear log of rule/UDT
// entry and exit events built up during a successful parse, later walked
// with user callbacks.
//
// The buffer is a single owned, reusable slice (Buffer) rather than a linked
// list, cleared and regrown across parse attempts instead of reallocated.
package ast

import "github.com/ldthomas/apgego/alphabet"

// State marks whether a Record is the entry (PRE) or successful-exit (POST)
// half of a rule/UDT activation.
type State uint8

const (
	PRE State = iota
	POST
)

func (s State) String() string {
	if s == POST {
		return "POST"
	}
	return "PRE"
}

// Record is one entry/exit event for an enabled rule or UDT activation.
type Record struct {
	Name    string
	Index   int // rule or UDT index (see IsUDT)
	IsUDT   bool
	Phrase  alphabet.Phrase
	State   State
	Self    int // this record's own index in the Buffer
	Sibling int // PRE.Sibling -> its POST index; POST.Sibling -> its PRE index
}

// Buffer is the append-only AST record log for one parse attempt. It is
// cleared at the start of each top-level parse and mutated only by the
// parser core during that attempt.
type Buffer struct {
	records []Record
}

// NewBuffer returns an empty Buffer, ready for a parse attempt.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Reset clears the buffer for a new top-level parse attempt, reusing the
// underlying storage.
func (b *Buffer) Reset() {
	b.records = b.records[:0]
}

// Len returns the number of records currently in the buffer. Used by the
// parser core as a checkpoint: on a rule/UDT's NOMATCH, the buffer is
// truncated back to the length captured at entry, discarding the
// speculative PRE.
func (b *Buffer) Len() int {
	return len(b.records)
}

// Truncate discards every record from index n onward. n must be <= Len().
func (b *Buffer) Truncate(n int) {
	b.records = b.records[:n]
}

// PushPre appends a PRE record for the given rule/UDT activation at the
// given offset, returning its index in the buffer (needed later to
// back-patch the phrase length and to link the matching POST).
func (b *Buffer) PushPre(name string, index int, isUDT bool, offset uint) int {
	self := len(b.records)
	b.records = append(b.records, Record{
		Name:    name,
		Index:   index,
		IsUDT:   isUDT,
		Phrase:  alphabet.Phrase{Offset: offset},
		State:   PRE,
		Self:    self,
		Sibling: -1,
	})
	return self
}

// PushPost appends a POST record for the activation whose PRE is at
// preIndex, records the matched phrase length on both records (the PRE's
// phrase length is back-patched), and links the two records' Sibling
// indices.
func (b *Buffer) PushPost(preIndex int, length uint) {
	pre := &b.records[preIndex]
	pre.Phrase.Length = length

	self := len(b.records)
	b.records = append(b.records, Record{
		Name:    pre.Name,
		Index:   pre.Index,
		IsUDT:   pre.IsUDT,
		Phrase:  alphabet.Phrase{Offset: pre.Phrase.Offset, Length: length},
		State:   POST,
		Self:    self,
		Sibling: preIndex,
	})
	b.records[preIndex].Sibling = self
}

// Records returns the buffer's records. Valid until the next Reset/Truncate.
func (b *Buffer) Records() []Record {
	return b.records
}

// RuleCallback is invoked for each PRE and POST record of a rule/UDT
// activation during Translate.
type RuleCallback func(r *Record, userData any) Directive

// Directive controls how Translate proceeds after a callback returns.
type Directive uint8

const (
	// Continue walks into/past the record normally.
	Continue Directive = iota
	// Skip is only honored on a PRE callback: it prunes the subtree,
	// jumping the walk directly to the matching POST's index + 1.
	Skip
)

// Walker translates an AST record buffer by invoking registered per-name
// callbacks in record order. Multiple translations of the same buffer are
// permitted, and callbacks may be rebound between them.
type Walker struct {
	buf       *Buffer
	callbacks map[string]RuleCallback
}

// NewWalker returns a Walker over buf with no callbacks registered.
func NewWalker(buf *Buffer) *Walker {
	return &Walker{buf: buf, callbacks: make(map[string]RuleCallback)}
}

// SetCallback registers (or clears, if cb is nil) the callback for the
// named rule/UDT. The same callback fires for both the PRE and the POST
// record of an activation; inspect Record.State to distinguish them.
func (w *Walker) SetCallback(name string, cb RuleCallback) {
	if cb == nil {
		delete(w.callbacks, name)
		return
	}
	w.callbacks[name] = cb
}

// Translate walks the buffer in order, invoking the registered callback for
// each record's name. Records with no registered callback are skipped over
// (Continue semantics) without invoking anything.
func (w *Walker) Translate(userData any) {
	records := w.buf.Records()
	for i := 0; i < len(records); i++ {
		r := &records[i]
		cb, ok := w.callbacks[r.Name]
		if !ok {
			continue
		}
		if cb(r, userData) == Skip && r.State == PRE && r.Sibling > i {
			i = r.Sibling
		}
	}
}
