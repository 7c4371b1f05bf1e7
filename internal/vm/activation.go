package vm

import (
	"fmt"

	"github.com/croc-lang/croc/internal/value"
)

// pushActivation opens a new call frame for fn at register base base,
// with args already placed at regs[base+1..] (slot base itself holds
// `this`, per the ActivationRecord.Base doc comment). It grows the
// logical stack to hold fn's MaxRegisters and returns the new AR.
func (t *Thread) pushActivation(fn *value.Function, base int, returnSlot, expectedReturns int) (*ActivationRecord, error) {
	ar := &ActivationRecord{
		Fn:              fn,
		Base:            base,
		ReturnSlot:      returnSlot,
		ExpectedReturns: expectedReturns,
	}
	if fn.Def != nil {
		top := base + fn.Def.MaxRegisters
		if top > len(t.regs) {
			return nil, fmt.Errorf("croc: register stack overflow (limit %d)", len(t.regs))
		}
		for i := t.stackTop; i < top; i++ {
			t.regs[i] = value.Null
		}
		t.stackTop = top
		ar.Top = top
	}
	t.ars = append(t.ars, ar)
	return ar, nil
}

// popActivation closes every upvalue open at or above the popped
// activation's base, restores the stack top to the base, and, when
// numResults > 0, pushes the single result at that base (the record's
// ReturnSlot is not consulted). It is also used (with a Null result) by
// the exception unwinder to discard frames that have no handler.
func (t *Thread) popActivation(result value.Value, numResults int) {
	if len(t.ars) == 0 {
		return
	}
	ar := t.ars[len(t.ars)-1]
	t.ars = t.ars[:len(t.ars)-1]
	t.closeUpvalsFrom(ar.Base)
	t.stackTop = ar.Base
	if numResults > 0 {
		if err := t.Push(result); err != nil {
			// overflow restoring a single result into a frame we just
			// shrank cannot happen since ar.Base < len(t.regs) always.
			panic(err)
		}
	}
}

// tailReplace discards the current activation's frame but keeps the
// caller's return slot/expected-returns, reusing the same AR slot for
// fn's frame: a tailcall replaces the current activation rather than
// stacking a new one, so a tail-recursive script loop runs in O(1)
// Go-level call stack and bounded register-stack depth.
func (t *Thread) tailReplace(fn *value.Function, newBase int) error {
	ar := t.currentAR()
	t.closeUpvalsFrom(ar.Base)
	ar.Fn = fn
	ar.PC = 0
	ar.TailCallCount++
	ar.Base = newBase
	if fn.Def != nil {
		top := newBase + fn.Def.MaxRegisters
		if top > len(t.regs) {
			return fmt.Errorf("croc: register stack overflow (limit %d)", len(t.regs))
		}
		for i := t.stackTop; i < top; i++ {
			t.regs[i] = value.Null
		}
		t.stackTop = top
		ar.Top = top
	}
	return nil
}
