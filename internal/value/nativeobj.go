package value

// NativeObj wraps an opaque host pointer for GC visibility: the runtime
// tracks its lifetime like any other heap object (so it can carry a
// finalizer and participate in the object graph) but ownership of the
// wrapped resource remains with the host.
type NativeObj struct {
	Header
	Data any
}

func NewNativeObj(data any) *NativeObj { return &NativeObj{Data: data} }

func (n *NativeObj) GCHeader() *Header          { return &n.Header }
func (n *NativeObj) Traverse(visit func(Value)) {}
func (n *NativeObj) TypeName() string           { return "nativeobj" }
func (n *NativeObj) ValueKind() Kind             { return KindNativeObj }

func NewNativeObjValue(n *NativeObj) Value { return fromObject(KindNativeObj, n) }
