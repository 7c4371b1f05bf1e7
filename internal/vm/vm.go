package vm

import (
	"fmt"
	"log"

	"github.com/croc-lang/croc/internal/gcx"
	"github.com/croc-lang/croc/internal/value"
)

// Config configures a VM at construction, playing the same role as
// runtime/debug's SetGCPercent or GOMAXPROCS: every field has a zero
// value that is a sane default, so embedders who don't care can pass a
// zero Config.
type Config struct {
	// InitialGCLimit overrides the allocator's default GC-trigger byte
	// threshold. Zero keeps the allocator's own default.
	InitialGCLimit uint64

	// RegisterStackSize overrides the per-thread fixed register-stack
	// capacity. Zero keeps DefaultRegisterStackSize.
	RegisterStackSize int

	// Logger, when non-nil, receives allocation/collection/finalizer
	// diagnostics. Off (nil) by default, mirroring the convention that a
	// nil logger means quiet.
	Logger *log.Logger
}

// VM is the top-level runtime: one allocator/collector, one metatable
// table per primitive Kind, the global namespace, the intern table, and
// the set of live threads.
type VM struct {
	Alloc  *gcx.Allocator
	Intern *value.InternTable

	Globals *value.Namespace

	// metatables holds one optional Metatable per primitive value Kind.
	metatables [value.KindCount]*value.Metatable

	mainThread *Thread
	threads    []*Thread

	refs    map[int]value.Value
	nextRef int

	logger *log.Logger
}

// NewVM constructs a VM and its main thread.
func NewVM(cfg Config) *VM {
	alloc := gcx.NewAllocator()
	if cfg.InitialGCLimit != 0 {
		alloc.SetGCLimit(cfg.InitialGCLimit)
	}
	v := &VM{
		Alloc:   alloc,
		Intern:  value.NewInternTable(nil),
		Globals: alloc.NewNamespace("global", nil),
		refs:    make(map[int]value.Value),
		logger:  cfg.Logger,
	}
	gcx.SetDebugLog(cfg.Logger)
	regSize := cfg.RegisterStackSize
	if regSize == 0 {
		regSize = DefaultRegisterStackSize
	}
	v.mainThread = NewThread(v, regSize, nil)
	v.mainThread.state = StateRunning
	v.threads = append(v.threads, v.mainThread)
	return v
}

func (v *VM) MainThread() *Thread { return v.mainThread }

func (v *VM) Metatable(k value.Kind) *value.Metatable {
	if int(k) < 0 || int(k) >= len(v.metatables) {
		return nil
	}
	return v.metatables[k]
}

func (v *VM) SetMetatable(k value.Kind, mt *value.Metatable) {
	if int(k) < 0 || int(k) >= len(v.metatables) {
		return
	}
	v.metatables[k] = mt
}

// registerThread adds a freshly-created coroutine to the VM's thread
// list, so a full GC's root set includes every live Thread.
func (v *VM) registerThread(t *Thread) {
	v.threads = append(v.threads, t)
}

// roots returns every Value the collector must start marking from:
// every live thread (as a Value, so Thread.Traverse walks its own
// stack/ARs/upvalues), the global namespace, and the ref table.
func (v *VM) roots() []value.Value {
	rs := make([]value.Value, 0, len(v.threads)+len(v.refs)+1)
	for _, t := range v.threads {
		rs = append(rs, ThreadValue(t))
	}
	rs = append(rs, value.NewNamespaceValue(v.Globals))
	for _, ref := range v.refs {
		rs = append(rs, ref)
	}
	for _, mt := range v.metatables {
		if mt == nil {
			continue
		}
		mt.ForEach(func(val value.Value) { rs = append(rs, val) })
	}
	return rs
}

// Collect runs a full garbage-collection cycle, invoking any finalizers
// that become due. Finalizer invocation happens only once the
// collector's own bookkeeping is settled, so user code never observes a
// half-swept heap.
func (v *VM) Collect() gcx.CollectStats {
	// Threads are not on the allocation list, so sweep never whitens
	// them; reset them here so this cycle's mark traverses them again.
	for _, t := range v.threads {
		t.SetColor(value.White)
	}
	c := gcx.Collector{Alloc: v.Alloc, Intern: v.Intern}
	return c.Collect(v.roots(), v.invokeFinalizer)
}

// MaybeCollect runs Collect only if the allocator's byte threshold has
// been crossed. The embedding API's MaybeGC calls it; the interpreter's
// dispatch loop does not.
func (v *VM) MaybeCollect() bool {
	if v.Alloc.ShouldCollect() {
		v.Collect()
		return true
	}
	return false
}

// invokeFinalizer is handed to the collector as its finalizer-invocation
// callback: fn is the finalizer Function Value recorded on the
// object's GC header, obj is the object's own Value.
func (v *VM) invokeFinalizer(fn, obj value.Value) {
	f, ok := fn.Ref().(*value.Function)
	if !ok {
		return
	}
	if _, err := v.mainThread.callSync(f, []value.Value{obj}, 0); err != nil {
		if v.logger != nil {
			v.logger.Printf("croc: finalizer failed: %v", err)
		}
	}
}

// CreateRef pins v against GC and returns a
// handle the embedder can hold beyond the native stack's lifetime.
func (v *VM) CreateRef(val value.Value) int {
	v.nextRef++
	id := v.nextRef
	v.refs[id] = val
	return id
}

func (v *VM) PushRef(id int) (value.Value, bool) {
	val, ok := v.refs[id]
	return val, ok
}

func (v *VM) RemoveRef(id int) {
	delete(v.refs, id)
}

func (v *VM) String() string {
	return fmt.Sprintf("croc.VM{threads=%d, refs=%d}", len(v.threads), len(v.refs))
}
