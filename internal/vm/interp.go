package vm

import (
	"fmt"

	"github.com/croc-lang/croc/internal/value"
)

// Interpreter drives a single Thread's dispatch loop. It holds no state
// of its own beyond a reference to the VM — every mutable piece of
// execution state lives on the Thread, so multiple coroutines can be
// interpreted with one Interpreter value.
type Interpreter struct {
	VM *VM
}

func NewInterpreter(v *VM) *Interpreter { return &Interpreter{VM: v} }

// YieldResult is returned by Run when the thread yielded rather than
// returned or threw; the resumer receives yieldedVals via t.Yielded().
type YieldResult struct{}

// RunResult distinguishes why Run stopped.
type RunResult int

const (
	RunReturned RunResult = iota
	RunYielded
	RunThrew
	RunHalted
)

// Run executes t's dispatch loop starting from its current AR (the
// trampoline body of the stackless coroutine model): script-to-script
// calls push/pop activations without any further Go-level recursion, so
// a yield deep in a script call chain is just "stop the loop, state is
// already on the Thread." Go-level recursion only occurs when a native
// function calls back into the interpreter (via Interpreter.Call from
// within a NativeFn), tracked by t.nativeDepth; OpYield refuses to
// yield while nativeDepth > 0, since a native function cannot yield.
func (ip *Interpreter) Run(t *Thread) (RunResult, error) {
	for {
		if t.pendingHalt {
			t.pendingHalt = false
			return RunHalted, nil
		}
		if len(t.ars) == 0 {
			return RunReturned, nil
		}
		ar := t.currentAR()
		if ar.Fn == nil || ar.Fn.Def == nil {
			return RunReturned, fmt.Errorf("croc: Run on a frame with no script body")
		}
		code := ar.Fn.Def.Code
		if ar.PC >= len(code) {
			t.popActivation(value.Null, 1)
			continue
		}
		inst := code[ar.PC]
		ar.PC++

		result, err := ip.step(t, ar, inst)
		if err != nil {
			t.Throw(nativeErrorValue(ip.VM, err))
			err = nil
		}
		if t.isThrowing {
			handled, rethrow := ip.handleThrow(t)
			if rethrow {
				return RunThrew, nil
			}
			if !handled {
				continue
			}
			continue
		}
		switch result {
		case stepContinue:
			continue
		case stepReturned:
			if len(t.ars) == 0 {
				return RunReturned, nil
			}
			continue
		case stepYielded:
			return RunYielded, nil
		}
	}
}

type stepResult int

const (
	stepContinue stepResult = iota
	stepReturned
	stepYielded
)

// handleThrow attempts to unwind to a catch handler within t. It returns
// handled=true once control has been transferred to a catch or finally
// block (and the loop should keep running), or rethrow=true if the
// exception escaped every frame on this thread.
func (ip *Interpreter) handleThrow(t *Thread) (handled, rethrow bool) {
	ar, region, isCatch := t.unwindToHandler()
	if ar == nil {
		return false, true
	}
	if isCatch {
		t.clearException()
		ar.PC = region.catchPC
	} else {
		ar.PC = region.finallyPC
	}
	return true, false
}

func nativeErrorValue(v *VM, err error) value.Value {
	return value.Of(v.Alloc.Intern(v.Intern, []byte(err.Error())))
}

// step decodes and executes one instruction against ar's frame (base
// ar.Base within t.regs). It returns a stepResult telling Run whether to
// keep looping in the same frame, whether an activation was popped, or
// whether the thread yielded.
func (ip *Interpreter) step(t *Thread, ar *ActivationRecord, inst value.Instruction) (stepResult, error) {
	reg := func(i int32) value.Value { return t.regs[ar.Base+int(i)] }
	setReg := func(i int32, v value.Value) { t.regs[ar.Base+int(i)] = v }
	konst := func(i int32) value.Value { return ar.Fn.Def.Constants[i] }

	switch inst.Op {
	case value.OpLoadConst:
		setReg(inst.A, konst(inst.B))
	case value.OpLoadNull:
		setReg(inst.A, value.Null)
	case value.OpLoadBool:
		setReg(inst.A, value.Bool(inst.B != 0))
	case value.OpMove:
		setReg(inst.A, reg(inst.B))

	case value.OpAdd, value.OpSub, value.OpMul, value.OpDiv, value.OpMod:
		res, err := ip.arith(t, inst.Op, reg(inst.B), reg(inst.C))
		if err != nil {
			return stepContinue, err
		}
		setReg(inst.A, res)
	case value.OpNeg:
		res, err := ip.negate(t, reg(inst.B))
		if err != nil {
			return stepContinue, err
		}
		setReg(inst.A, res)

	case value.OpAnd, value.OpOr, value.OpXor, value.OpShl, value.OpShr, value.OpUShr:
		res, err := ip.bitwise(t, inst.Op, reg(inst.B), reg(inst.C))
		if err != nil {
			return stepContinue, err
		}
		setReg(inst.A, res)
	case value.OpCom:
		b := reg(inst.B)
		if b.Kind() != value.KindInt {
			return stepContinue, fmt.Errorf("croc: cannot bitwise-complement a %s", b.Kind())
		}
		setReg(inst.A, value.Int(^b.AsInt()))

	case value.OpCat:
		res, err := ip.concat(t, ar, int(inst.B), int(inst.C))
		if err != nil {
			return stepContinue, err
		}
		setReg(inst.A, res)

	case value.OpLen:
		res, err := ip.length(t, reg(inst.B))
		if err != nil {
			return stepContinue, err
		}
		setReg(inst.A, res)

	case value.OpIndex:
		res, err := ip.index(t, reg(inst.B), reg(inst.C))
		if err != nil {
			return stepContinue, err
		}
		setReg(inst.A, res)
	case value.OpIndexAssign:
		if err := ip.indexAssign(t, reg(inst.A), reg(inst.B), reg(inst.C)); err != nil {
			return stepContinue, err
		}
	case value.OpField:
		name := konst(inst.C)
		res, err := ip.field(t, reg(inst.B), name.Ref().(*value.String).Go())
		if err != nil {
			return stepContinue, err
		}
		setReg(inst.A, res)
	case value.OpFieldAssign:
		name := konst(inst.B)
		if err := ip.fieldAssign(t, reg(inst.A), name.Ref().(*value.String).Go(), reg(inst.C)); err != nil {
			return stepContinue, err
		}

	case value.OpEquals:
		setReg(inst.A, value.Bool(ip.equals(t, reg(inst.B), reg(inst.C))))
	case value.OpCmp:
		c, err := ip.compare(t, reg(inst.B), reg(inst.C))
		if err != nil {
			return stepContinue, err
		}
		setReg(inst.A, value.Int(int64(c)))

	case value.OpNewTable:
		setReg(inst.A, value.NewTableValue(t.vm.Alloc.NewTable()))
	case value.OpNewArray:
		setReg(inst.A, value.NewArrayValue(t.vm.Alloc.NewArray(int(inst.B))))

	case value.OpClosure:
		def := ar.Fn.Def.Inner[inst.B]
		upvals := make([]*value.Upvalue, len(def.UpvalDescs))
		for i, d := range def.UpvalDescs {
			if d.FromParentLocal {
				upvals[i] = t.openUpvalueFor(ar.Base + d.Index)
			} else {
				upvals[i] = ar.Fn.Upvals[d.Index]
			}
		}
		setReg(inst.A, value.NewFunctionValue(t.vm.Alloc.NewScriptFunction(def, ar.Fn.Env, upvals)))

	case value.OpGetUpval:
		setReg(inst.A, ar.Fn.Upvals[inst.B].Get())
	case value.OpSetUpval:
		ar.Fn.Upvals[inst.A].Set(reg(inst.B))

	case value.OpGetGlobal:
		name := konst(inst.B).Ref().(*value.String).Go()
		v, ok := t.vm.Globals.Lookup(name)
		if !ok {
			return stepContinue, fmt.Errorf("croc: global %q is not defined", name)
		}
		setReg(inst.A, v)
	case value.OpSetGlobal:
		name := konst(inst.A).Ref().(*value.String).Go()
		if _, ok := t.vm.Globals.Lookup(name); !ok {
			return stepContinue, fmt.Errorf("croc: global %q is not defined", name)
		}
		t.vm.Globals.Set(name, reg(inst.B))
	case value.OpNewGlobal:
		name := konst(inst.A).Ref().(*value.String).Go()
		if _, ok := t.vm.Globals.LocalGet(name); ok {
			return stepContinue, fmt.Errorf("croc: global %q already exists", name)
		}
		t.vm.Globals.Set(name, reg(inst.B))

	case value.OpJump:
		ar.PC += int(inst.A)
	case value.OpJumpTrue:
		if reg(inst.A).IsTrue() {
			ar.PC += int(inst.B)
		}
	case value.OpJumpFalse:
		if !reg(inst.A).IsTrue() {
			ar.PC += int(inst.B)
		}

	case value.OpCall:
		return ip.doCall(t, ar, inst, false)
	case value.OpTailCall:
		return ip.doCall(t, ar, inst, true)
	case value.OpMethodCall:
		return ip.doMethodCall(t, ar, inst)
	case value.OpSuperCall:
		return ip.doSuperCall(t, ar, inst)
	case value.OpReturn:
		return ip.doReturn(t, ar, inst)

	case value.OpNewClass:
		name := konst(inst.B).Ref().(*value.String).Go()
		var base *value.Class
		baseVal := reg(inst.C)
		if !baseVal.IsNull() {
			base = baseVal.Ref().(*value.Class)
		}
		setReg(inst.A, value.NewClassValue(t.vm.Alloc.NewClass(name, base)))
	case value.OpNewInstance:
		cls := reg(inst.B).Ref().(*value.Class)
		inst2 := t.vm.Alloc.NewInstance(cls, 0, 0)
		setReg(inst.A, value.NewInstanceValue(inst2))

	case value.OpTry:
		ar.TryRegions = append(ar.TryRegions, tryRegion{
			catchPC:   ar.PC + int(inst.A) - 1,
			finallyPC: ar.PC + int(inst.B) - 1,
		})
	case value.OpPopTry:
		if n := len(ar.TryRegions); n > 0 {
			ar.TryRegions = ar.TryRegions[:n-1]
		}
	case value.OpThrow:
		t.Throw(reg(inst.A))
	case value.OpEndFinally:
		if t.isThrowing {
			handled, rethrow := ip.handleThrow(t)
			if rethrow {
				return stepReturned, nil
			}
			_ = handled
		}

	case value.OpYield:
		if t.nativeDepth > 0 {
			return stepContinue, fmt.Errorf("croc: cannot yield across a native call frame")
		}
		vals := make([]value.Value, inst.B)
		for i := int32(0); i < inst.B; i++ {
			vals[i] = reg(inst.A + i)
		}
		t.yieldedVals = vals
		ar.YieldDestSlot = ar.Base + int(inst.A)
		ar.YieldDestCount = int(inst.B)
		t.state = StateSuspended
		return stepYielded, nil

	case value.OpHalt:
		return stepReturned, nil

	default:
		return stepContinue, fmt.Errorf("croc: unimplemented opcode %v", inst.Op)
	}
	return stepContinue, nil
}
