package vm

import (
	"fmt"
	"strings"

	"github.com/croc-lang/croc/internal/value"
)

// TraceEntry is one frame of a captured traceback. Consecutive
// tailcalls through the same slot collapse into a single entry whose
// TailCalls count renders as "<N tailcalls>", so a recursive tail loop
// doesn't produce an unbounded traceback.
type TraceEntry struct {
	FuncName  string
	Location  string // "<module>(<line>)" or "<native>"
	Line      int
	TailCalls int
}

func (e TraceEntry) String() string {
	if e.TailCalls > 0 {
		return fmt.Sprintf("%s at %s (<%d tailcalls>)", e.FuncName, e.Location, e.TailCalls)
	}
	return fmt.Sprintf("%s at %s", e.FuncName, e.Location)
}

// FormatTraceback renders a captured traceback as a multi-line string,
// most-recent frame first.
func FormatTraceback(entries []TraceEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "\tat %s", e.String())
	}
	return b.String()
}

// captureTraceback walks the AR stack, most recent first, collapsing
// runs of tailcalls through the same frame into one entry.
func (t *Thread) captureTraceback() []TraceEntry {
	entries := make([]TraceEntry, 0, len(t.ars))
	for i := len(t.ars) - 1; i >= 0; i-- {
		ar := t.ars[i]
		name := "<anonymous>"
		loc := "<native>"
		line := 0
		if ar.Fn != nil && ar.Fn.Def != nil {
			if ar.Fn.Def.Name != "" {
				name = ar.Fn.Def.Name
			}
			line = int(ar.Fn.Def.LineFor(ar.PC))
			loc = fmt.Sprintf("%s(%d)", ar.Fn.Def.Module, line)
		}
		entries = append(entries, TraceEntry{
			FuncName:  name,
			Location:  loc,
			Line:      line,
			TailCalls: ar.TailCallCount,
		})
	}
	return entries
}

// Throw sets exc as the in-flight exception and captures a traceback
// from the current AR stack. The interpreter's dispatch loop
// checks isThrowing after every instruction that can raise and unwinds
// to the nearest tryRegion with a catchPC, or propagates out of Run.
func (t *Thread) Throw(exc value.Value) {
	t.pendingException = exc
	t.isThrowing = true
	t.traceback = t.captureTraceback()
}

func (t *Thread) IsThrowing() bool          { return t.isThrowing }
func (t *Thread) PendingException() value.Value { return t.pendingException }
func (t *Thread) Traceback() []TraceEntry   { return t.traceback }

func (t *Thread) clearException() {
	t.pendingException = value.Null
	t.isThrowing = false
}

// unwindToHandler pops activations until it finds one with an active
// tryRegion that has a catch or a finally, removes that region, and
// returns it with true for a catch and false for a finally. It returns a
// nil record if the exception escapes the thread entirely (every AR
// popped without a handler), in which case the exception remains pending
// for the embedding API (or the resumer, for a coroutine) to observe.
func (t *Thread) unwindToHandler() (*ActivationRecord, *tryRegion, bool) {
	for len(t.ars) > 0 {
		ar := t.currentAR()
		for i := len(ar.TryRegions) - 1; i >= 0; i-- {
			r := ar.TryRegions[i]
			if r.catchPC >= 0 {
				ar.TryRegions = ar.TryRegions[:i]
				return ar, &r, true
			}
			if r.finallyPC >= 0 {
				ar.TryRegions = ar.TryRegions[:i]
				return ar, &r, false
			}
		}
		t.popActivation(value.Null, 0)
	}
	return nil, nil, false
}
