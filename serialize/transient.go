package serialize

import "github.com/croc-lang/croc/internal/value"

// Transient maps distinguished host objects — native functions by
// identity, class templates the embedder registers ahead of time — to
// stable tokens so they can be re-bound in a destination VM instead of
// serialized by value. Values absent from the table that also aren't
// otherwise serializable (NativeObj, an open Upvalue aliasing a live
// stack slot) are a serialization error.
type Transient struct {
	toToken map[value.GCObject]uint32
	toObj   map[uint32]value.GCObject
}

// NewTransient builds a Transient table from a set of (token, object)
// pairs the caller has agreed on with whatever will deserialize this
// stream — typically the embedder's own registered native functions and
// class templates, keyed however is stable across the two processes.
func NewTransient(entries map[uint32]value.GCObject) *Transient {
	tr := &Transient{
		toToken: make(map[value.GCObject]uint32, len(entries)),
		toObj:   make(map[uint32]value.GCObject, len(entries)),
	}
	for token, obj := range entries {
		tr.toToken[obj] = token
		tr.toObj[token] = obj
	}
	return tr
}

func (tr *Transient) tokenFor(o value.GCObject) (uint32, bool) {
	if tr == nil {
		return 0, false
	}
	tok, ok := tr.toToken[o]
	return tok, ok
}

func (tr *Transient) objFor(tok uint32) (value.GCObject, bool) {
	if tr == nil {
		return nil, false
	}
	o, ok := tr.toObj[tok]
	return o, ok
}
