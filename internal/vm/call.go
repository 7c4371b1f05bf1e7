package vm

import (
	"fmt"

	"github.com/croc-lang/croc/internal/value"
)

// doCall implements opCall/opTailCall: R[A] holds the callee, args are
// R[A+1..A+1+numArgs-1], and results land starting at R[A].
func (ip *Interpreter) doCall(t *Thread, ar *ActivationRecord, inst value.Instruction, tail bool) (stepResult, error) {
	calleeSlot := ar.Base + int(inst.A)
	callee := t.regs[calleeSlot]
	numArgs := int(inst.B)
	numReturns := int(inst.C)

	fn, ok := callee.Ref().(*value.Function)
	if !ok {
		if !callee.IsNull() {
			if mtFn, ok2 := ip.lookupMetamethod(callee, value.MMCall); ok2 {
				fn = mtFn
				ok = true
			}
		}
		if !ok {
			return stepContinue, fmt.Errorf("croc: cannot call a %s", callee.Kind())
		}
	}

	if fn.IsNative() {
		results, err := ip.callNative(t, fn, t.regs[calleeSlot+1:calleeSlot+1+numArgs])
		if err != nil {
			return stepContinue, err
		}
		ip.placeResults(t, ar, calleeSlot, results, numReturns)
		return stepContinue, nil
	}

	if tail {
		newBase := calleeSlot
		copy(t.regs[newBase+1:newBase+1+numArgs], t.regs[calleeSlot+1:calleeSlot+1+numArgs])
		if err := t.tailReplace(fn, newBase); err != nil {
			return stepContinue, err
		}
		return stepContinue, nil
	}

	argsBase := calleeSlot
	if _, err := t.pushActivation(fn, argsBase, calleeSlot, numReturns); err != nil {
		return stepContinue, err
	}
	return stepContinue, nil
}

// doReturn implements opReturn: gathers R[A..A+B-1] as results, pops the
// current activation, and places them at the caller's return slot.
func (ip *Interpreter) doReturn(t *Thread, ar *ActivationRecord, inst value.Instruction) (stepResult, error) {
	n := int(inst.B)
	results := make([]value.Value, n)
	for i := 0; i < n; i++ {
		results[i] = t.regs[ar.Base+int(inst.A)+i]
	}
	returnSlot := ar.ReturnSlot
	expected := ar.ExpectedReturns
	t.closeUpvalsFrom(ar.Base)
	t.ars = t.ars[:len(t.ars)-1]
	t.stackTop = ar.Base

	if len(t.ars) == 0 {
		// Returning from the thread body itself: stash results as the
		// thread's yielded-equivalent return values for the resumer to
		// collect (Resume returns these; Thread.Yielded exposes them), and
		// also leave them on the register stack at returnSlot so callSync's
		// register-diff result extraction sees them too.
		t.yieldedVals = results
		for i, v := range results {
			t.regs[returnSlot+i] = v
		}
		t.stackTop = returnSlot + len(results)
		return stepReturned, nil
	}

	callerAR := t.currentAR()
	want := expected
	if want < 0 {
		want = len(results)
	}
	for i := 0; i < want; i++ {
		v := value.Null
		if i < len(results) {
			v = results[i]
		}
		t.regs[returnSlot+i] = v
	}
	top := callerAR.Base + callerAR.Fn.Def.MaxRegisters
	if returnSlot+want > top {
		top = returnSlot + want
	}
	t.stackTop = top
	return stepContinue, nil
}

// placeResults is the native-call counterpart of doReturn's result
// placement, used when the callee was a NativeFn rather than a script
// activation (so there is no AR to pop).
func (ip *Interpreter) placeResults(t *Thread, ar *ActivationRecord, slot int, results []value.Value, numReturns int) {
	want := numReturns
	if want < 0 {
		want = len(results)
	}
	for i := 0; i < want; i++ {
		v := value.Null
		if i < len(results) {
			v = results[i]
		}
		t.regs[slot+i] = v
	}
	top := ar.Base + ar.Fn.Def.MaxRegisters
	if slot+want > top {
		top = slot + want
	}
	t.stackTop = top
}

// doMethodCall implements opMethod: looks up a string-keyed method on
// R[A] (field/opMethod dispatch), then calls it with R[A] as `this`
// followed by the supplied arguments.
func (ip *Interpreter) doMethodCall(t *Thread, ar *ActivationRecord, inst value.Instruction) (stepResult, error) {
	thisSlot := ar.Base + int(inst.A)
	this := t.regs[thisSlot]
	name := ar.Fn.Def.Constants[inst.B].Ref().(*value.String).Go()

	method, err := ip.field(t, this, name)
	if err != nil {
		return stepContinue, err
	}
	fn, ok := method.Ref().(*value.Function)
	if !ok {
		return stepContinue, fmt.Errorf("croc: %q is not callable on a %s", name, this.Kind())
	}

	numArgs := int(inst.C)
	numReturns := 1

	if fn.IsNative() {
		results, err := ip.callNative(t, fn, t.regs[thisSlot+1:thisSlot+1+numArgs])
		if err != nil {
			return stepContinue, err
		}
		ip.placeResults(t, ar, thisSlot, results, numReturns)
		return stepContinue, nil
	}

	if _, err := t.pushActivation(fn, thisSlot, thisSlot, numReturns); err != nil {
		return stepContinue, err
	}
	return stepContinue, nil
}

// doSuperCall implements opSuperCall: method dispatch that starts
// searching at the *executing* function's base class rather than the
// receiver's own class, implementing `super.method(...)`.
func (ip *Interpreter) doSuperCall(t *Thread, ar *ActivationRecord, inst value.Instruction) (stepResult, error) {
	if ar.BaseClass == nil {
		return stepContinue, fmt.Errorf("croc: super call outside a method body")
	}
	thisSlot := ar.Base + int(inst.A)
	name := ar.Fn.Def.Constants[inst.B].Ref().(*value.String).Go()
	fv, ok := ar.BaseClass.Lookup(name)
	if !ok {
		return stepContinue, fmt.Errorf("croc: no such super member %q", name)
	}
	fn, ok := fv.Ref().(*value.Function)
	if !ok {
		return stepContinue, fmt.Errorf("croc: %q is not callable via super", name)
	}
	numArgs := int(inst.C)
	if fn.IsNative() {
		results, err := ip.callNative(t, fn, t.regs[thisSlot+1:thisSlot+1+numArgs])
		if err != nil {
			return stepContinue, err
		}
		ip.placeResults(t, ar, thisSlot, results, 1)
		return stepContinue, nil
	}
	if _, err := t.pushActivation(fn, thisSlot, thisSlot, 1); err != nil {
		return stepContinue, err
	}
	return stepContinue, nil
}

// callSync runs fn to completion and returns its results, for contexts
// that need a call to act as an ordinary Go function call: metamethod
// dispatch and finalizer invocation. Since the dispatch loop is
// non-recursive for script calls, this has to actually recurse at the Go
// level by running a nested Run() over a synthetic sub-frame — which is
// exactly the "native function calling back into script" case
// nativeDepth exists to track, so yield is correctly disallowed for the
// duration.
func (t *Thread) callSync(fn *value.Function, args []value.Value, numReturns int) ([]value.Value, error) {
	if fn.IsNative() {
		ctx := &nativeCallCtx{thread: t, args: args}
		t.nativeDepth++
		results, err := fn.Native(ctx)
		t.nativeDepth--
		return results, err
	}

	ip := NewInterpreter(t.vm)
	base := t.stackTop
	if err := t.Push(value.Null); err != nil { // `this` slot
		return nil, err
	}
	for _, a := range args {
		if err := t.Push(a); err != nil {
			return nil, err
		}
	}
	savedARCount := len(t.ars)
	if _, err := t.pushActivation(fn, base, base, numReturns); err != nil {
		return nil, err
	}

	t.nativeDepth++
	defer func() { t.nativeDepth-- }()

	for len(t.ars) > savedARCount {
		res, err := ip.Run(t)
		if err != nil {
			return nil, err
		}
		if res == RunThrew {
			exc := t.pendingException
			t.clearException()
			return nil, fmt.Errorf("croc: uncaught exception: %s", exc)
		}
		if res == RunHalted {
			return nil, fmt.Errorf("croc: thread halted")
		}
		break
	}

	n := t.stackTop - base
	if n < 0 {
		n = 0
	}
	results := make([]value.Value, n)
	copy(results, t.regs[base:t.stackTop])
	t.stackTop = base
	return results, nil
}

// callHook invokes fn as a debug-hook callback; hook functions run synchronously and their return
// value, if any, is discarded.
func (ip *Interpreter) callHook(t *Thread, fn value.Value, event HookMask, line int) {
	f, ok := fn.Ref().(*value.Function)
	if !ok {
		return
	}
	_, _ = t.callSync(f, []value.Value{value.Int(int64(event)), value.Int(int64(line))}, 0)
}

func (ip *Interpreter) callNative(t *Thread, fn *value.Function, args []value.Value) ([]value.Value, error) {
	return t.callSync(fn, args, -1)
}

// nativeCallCtx implements value.NativeContext over a fixed argument
// slice, for calls made through callSync (metamethods, finalizers, debug
// hooks) rather than through the embedding stack API's own NativeContext
// implementation in package croc.
type nativeCallCtx struct {
	thread *Thread
	args   []value.Value
}

func (c *nativeCallCtx) NumArgs() int { return len(c.args) }
func (c *nativeCallCtx) Arg(i int) value.Value {
	if i < 0 || i >= len(c.args) {
		return value.Null
	}
	return c.args[i]
}
func (c *nativeCallCtx) This() value.Value {
	if len(c.args) == 0 {
		return value.Null
	}
	return c.args[0]
}
func (c *nativeCallCtx) Upval(i int) value.Value      { return value.Null }
func (c *nativeCallCtx) SetUpval(i int, v value.Value) {}
