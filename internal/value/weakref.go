package value

// WeakRef is nulled by the collector when its target becomes unreachable
// from strong roots. The mark phase enqueues WeakRefs as
// ordinary gray objects (they are themselves GC-managed) but never
// follows the target edge — that's what makes it weak.
type WeakRef struct {
	Header
	target Value
}

// NewWeakRef creates a weak reference to target and registers itself on
// target's header so the collector can find it at sweep time without
// scanning every WeakRef in the heap.
func NewWeakRef(target Value) *WeakRef {
	w := &WeakRef{target: target}
	if target.Ref() != nil {
		target.Ref().GCHeader().AddWeakRef(w)
	}
	return w
}

func (w *WeakRef) GCHeader() *Header { return &w.Header }
func (w *WeakRef) TypeName() string  { return "weakref" }
func (w *WeakRef) ValueKind() Kind   { return KindWeakRef }

// Traverse is intentionally empty: a WeakRef's target edge is not
// followed by the mark phase.
func (w *WeakRef) Traverse(visit func(Value)) {}

// Deref returns the target, or Null if it has been nulled by a GC cycle.
func (w *WeakRef) Deref() Value { return w.target }

// clearTarget is called by the collector during sweep for every WeakRef
// registered on an object found white.
func (w *WeakRef) clearTarget() { w.target = Null }

// ClearWeakRefsOn is the collector's hook: it nulls every WeakRef
// registered on o, without checking o's color. Package gcx calls it for
// each object it finds white during sweep.
func ClearWeakRefsOn(o GCObject) {
	for _, w := range o.GCHeader().WeakRefs() {
		w.clearTarget()
	}
}

func NewWeakRefValue(w *WeakRef) Value { return fromObject(KindWeakRef, w) }
