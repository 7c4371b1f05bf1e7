package value

// Namespace is a mutable String -> Value map with a parent pointer,
// forming a DAG rooted at a module namespace or nil (parent chains never
// cycle). It backs modules, globals, and class/instance field bags.
// Reads walk the parent chain; writes always act on the leaf namespace.
//
// Key order is insertion order, kept in a parallel slice the way Table
// keeps insertion order, so iteration is deterministic for hosts and
// tests.
type Namespace struct {
	Header
	Name   string
	Parent *Namespace

	index map[string]int
	keys  []string
	vals  []Value
}

func NewNamespace(name string, parent *Namespace) *Namespace {
	return &Namespace{Name: name, Parent: parent, index: make(map[string]int)}
}

func (n *Namespace) GCHeader() *Header { return &n.Header }
func (n *Namespace) TypeName() string  { return "namespace" }
func (n *Namespace) ValueKind() Kind   { return KindNamespace }

func (n *Namespace) Traverse(visit func(Value)) {
	for _, v := range n.vals {
		visit(v)
	}
	if n.Parent != nil {
		visit(NewNamespaceValue(n.Parent))
	}
}

// Lookup walks from n up through Parent, returning the first binding
// found for name.
func (n *Namespace) Lookup(name string) (Value, bool) {
	for ns := n; ns != nil; ns = ns.Parent {
		if i, ok := ns.index[name]; ok {
			return ns.vals[i], true
		}
	}
	return Null, false
}

// LocalGet/LocalSet operate only on the leaf namespace n, without
// consulting Parent — used for "does this exact namespace define X"
// checks (e.g. newGlobal's "requires absence" rule).
func (n *Namespace) LocalGet(name string) (Value, bool) {
	if i, ok := n.index[name]; ok {
		return n.vals[i], true
	}
	return Null, false
}

func (n *Namespace) Set(name string, v Value) {
	if i, ok := n.index[name]; ok {
		n.vals[i] = v
		return
	}
	n.index[name] = len(n.keys)
	n.keys = append(n.keys, name)
	n.vals = append(n.vals, v)
}

func (n *Namespace) ForEach(visit func(name string, v Value) bool) {
	for i, k := range n.keys {
		if !visit(k, n.vals[i]) {
			return
		}
	}
}

func NewNamespaceValue(n *Namespace) Value { return fromObject(KindNamespace, n) }
