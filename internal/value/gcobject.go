package value

// Color is the tri-color mark used by the collector in package gcx.
// value never inspects color itself; it only stores it on behalf of the
// collector so that every heap kind gets mark bookkeeping uniformly.
type Color uint8

const (
	White Color = iota // candidate for collection at sweep time
	Gray               // reachable, children not yet scanned
	Black              // reachable, children scanned
)

// Header is embedded by every heap-resident kind. It carries the fields
// the collector needs that are common to all objects: the mark color,
// the intrusive allocation-list link the allocator threads every live
// object through (so sweep can walk "everything ever allocated" without a
// separate registry), and the optional finalizer closure.
//
// NOTE: layout is relied on only by gcx via the GCObject interface below,
// never by unsafe casts — this is a plain Go object graph, not a reimplementation
// of the host's own memory manager.
type Header struct {
	color       Color
	allocNext   GCObject
	finalizer   *Value
	finalized   bool
	weakRefs    []*WeakRef // weak refs pointing at this object, nulled on sweep
}

func (h *Header) Color() Color       { return h.color }
func (h *Header) SetColor(c Color)   { h.color = c }
func (h *Header) AllocNext() GCObject    { return h.allocNext }
func (h *Header) SetAllocNext(o GCObject) { h.allocNext = o }
func (h *Header) Finalizer() *Value   { return h.finalizer }
func (h *Header) SetFinalizer(f *Value) { h.finalizer = f }
func (h *Header) Finalized() bool     { return h.finalized }
func (h *Header) SetFinalized(b bool) { h.finalized = b }
func (h *Header) AddWeakRef(w *WeakRef) {
	h.weakRefs = append(h.weakRefs, w)
}
func (h *Header) WeakRefs() []*WeakRef { return h.weakRefs }

// GCObject is implemented by every heap kind (String, Table, Array,
// Memblock, Function, FuncDef, Class, Instance, Namespace, Thread,
// NativeObj, WeakRef, and the Upvalue heap cell). The collector drives
// marking purely through this interface, so it never needs to know the
// concrete kind it is scanning.
type GCObject interface {
	GCHeader() *Header
	// Traverse calls visit once for every Value this object directly
	// references, so the mark phase can gray them. Leaf objects (String,
	// NativeObj) have empty bodies.
	Traverse(visit func(Value))
	TypeName() string
	// ValueKind reports which Kind a Value wrapping this object should
	// carry, so the collector can rebuild a Value from a bare GCObject
	// (e.g. to hand a finalizer its argument) without a type switch.
	ValueKind() Kind
}

// Of rebuilds a Value around a heap object discovered via its GCObject
// interface alone — used by package gcx's finalizer phase.
func Of(o GCObject) Value { return fromObject(o.ValueKind(), o) }
