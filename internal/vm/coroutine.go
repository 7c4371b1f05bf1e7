package vm

import (
	"fmt"

	"github.com/croc-lang/croc/internal/value"
)

// NewCoroutine creates a new Thread running body, in the Initial state,
// registered with v so it is part of the GC root set.
func NewCoroutine(v *VM, body *value.Function) *Thread {
	t := NewThread(v, len(v.mainThread.regs), body)
	v.registerThread(t)
	return t
}

// Resume transfers control to t with args as either its initial
// parameters (State Initial) or the values a pending Yield receives
// (State Suspended). It runs t's dispatch loop until t yields, returns,
// or throws, and is itself a blocking call on the resumer's Go
// goroutine — coroutines here are a scheduling abstraction over the
// single mutator thread, not OS- or goroutine-level concurrency. There
// is no implicit parallelism.
func (ip *Interpreter) Resume(resumer, t *Thread, args []value.Value) ([]value.Value, error) {
	switch t.state {
	case StateDead:
		return nil, fmt.Errorf("croc: cannot resume a dead thread")
	case StateRunning, StateWaiting:
		return nil, fmt.Errorf("croc: thread is already running")
	case StateInitial:
		base := 0
		t.regs[base] = value.Null // `this`
		for i, a := range args {
			t.regs[base+1+i] = a
		}
		t.stackTop = base + 1 + len(args)
		if _, err := t.pushActivation(t.bodyFn, base, 0, -1); err != nil {
			return nil, err
		}
	case StateSuspended:
		t.resumeVals = args
		ar := t.currentAR()
		if ar != nil {
			for i := 0; i < ar.YieldDestCount; i++ {
				if i < len(args) {
					t.regs[ar.YieldDestSlot+i] = args[i]
				} else {
					t.regs[ar.YieldDestSlot+i] = value.Null
				}
			}
		}
	}

	t.resumer = resumer
	t.state = StateRunning
	resumer.state = StateWaiting

	res, err := ip.Run(t)

	resumer.state = StateRunning
	if err != nil {
		t.state = StateDead
		return nil, err
	}
	switch res {
	case RunYielded:
		t.state = StateSuspended
		return t.yieldedVals, nil
	case RunReturned:
		t.state = StateDead
		return t.yieldedVals, nil
	case RunThrew:
		t.state = StateDead
		exc := t.pendingException
		t.clearException()
		return nil, fmt.Errorf("croc: uncaught exception in coroutine: %s", exc)
	case RunHalted:
		t.state = StateDead
		return nil, fmt.Errorf("croc: thread halted")
	}
	return nil, nil
}

// Yielded returns the values most recently yielded or returned by t, for
// the resumer to collect after Resume.
func (t *Thread) Yielded() []value.Value { return t.yieldedVals }

// Halt requests that t stop at its next safe point (the top of the
// dispatch loop, between instructions). The stop bypasses every
// try/catch region on the thread, so script code cannot catch it.
func (t *Thread) Halt() { t.pendingHalt = true }
