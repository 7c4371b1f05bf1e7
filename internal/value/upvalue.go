package value

// Upvalue bridges a function that captures a variable from an enclosing
// scope. While the activation record that declared the variable is live,
// the Upvalue is "open" and aliases the live register slot directly;
// once that activation returns, the interpreter closes the Upvalue by
// copying the slot's current Value into it.
//
// Open upvalues alias a *Value inside a Thread's fixed-capacity register
// stack. The register stack never reallocates its backing array (see
// vm.Thread), so this pointer stays valid for exactly as long as the
// activation record that declared the variable remains on the stack.
type Upvalue struct {
	Header
	open    bool
	ptr     *Value
	val     Value
	slotIdx int // absolute register index ptr points at, while open
}

// NewOpenUpvalue creates an Upvalue aliasing a live register slot. slot
// must be &regs[slotIdx] in the owning Thread's register stack, so the
// Thread's open-upvalue list can order and find upvalues by slot index
// without searching regs for pointer identity.
func NewOpenUpvalue(slot *Value, slotIdx int) *Upvalue {
	return &Upvalue{open: true, ptr: slot, slotIdx: slotIdx}
}

// NewClosedUpvalue creates an already-closed Upvalue holding v directly,
// with no aliased register slot. Used when reconstructing a function's
// captured environment outside of any live Thread (graph deserialization).
func NewClosedUpvalue(v Value) *Upvalue {
	return &Upvalue{open: false, val: v}
}

func (u *Upvalue) GCHeader() *Header { return &u.Header }
func (u *Upvalue) TypeName() string  { return "upvalue" }
func (u *Upvalue) ValueKind() Kind   { return kindUpvalue }

func (u *Upvalue) Traverse(visit func(Value)) { visit(u.Get()) }

func (u *Upvalue) IsOpen() bool { return u.open }

// Slot exposes the aliased register pointer, used by the thread's
// open-upvalue list to compare against a returning activation's base.
func (u *Upvalue) Slot() *Value { return u.ptr }

// SlotIndex returns the absolute register index ptr points at, valid
// only while IsOpen(); it is the index passed to NewOpenUpvalue.
func (u *Upvalue) SlotIndex() int { return u.slotIdx }

func (u *Upvalue) Get() Value {
	if u.open {
		return *u.ptr
	}
	return u.val
}

func (u *Upvalue) Set(v Value) {
	if u.open {
		*u.ptr = v
		return
	}
	u.val = v
}

// newUpvalueValue wraps u as a Value purely so the generic GC traversal
// (which only knows how to walk Values) can reach and mark it; script
// code and the embedding API never see a Value of this kind.
func newUpvalueValue(u *Upvalue) Value { return fromObject(kindUpvalue, u) }

// Close copies the current slot value into the Upvalue and detaches it
// from the register stack, per the interpreter's return-time upvalue
// closing mechanism.
func (u *Upvalue) Close() {
	if !u.open {
		return
	}
	u.val = *u.ptr
	u.open = false
	u.ptr = nil
	u.slotIdx = -1
}
