package value

// Table is a mutable hash map from Value to Value. Keys may not be Null;
// setting a key's value to Null removes it. Iteration order is insertion
// order and is stable across mutations that don't touch the iterated
// keys, an explicit, testable choice where order is otherwise
// unspecified.
type Table struct {
	Header
	index map[Value]int
	keys  []Value
	vals  []Value
}

func NewTable() *Table {
	return &Table{index: make(map[Value]int)}
}

func (t *Table) GCHeader() *Header { return &t.Header }
func (t *Table) TypeName() string  { return "table" }
func (t *Table) ValueKind() Kind   { return KindTable }

func (t *Table) Traverse(visit func(Value)) {
	for i, k := range t.keys {
		visit(k)
		visit(t.vals[i])
	}
}

// Get returns the value for key, or Null if absent.
func (t *Table) Get(key Value) Value {
	if i, ok := t.index[key]; ok {
		return t.vals[i]
	}
	return Null
}

// Set installs key -> val. Setting val to Null removes the key.
func (t *Table) Set(key, val Value) error {
	if key.IsNull() {
		return errNullKey
	}
	if val.IsNull() {
		t.remove(key)
		return nil
	}
	if i, ok := t.index[key]; ok {
		t.vals[i] = val
		return nil
	}
	t.index[key] = len(t.keys)
	t.keys = append(t.keys, key)
	t.vals = append(t.vals, val)
	return nil
}

// Remove deletes key if present; absent keys are a no-op.
func (t *Table) Remove(key Value) { t.remove(key) }

func (t *Table) remove(key Value) {
	i, ok := t.index[key]
	if !ok {
		return
	}
	last := len(t.keys) - 1
	if i != last {
		t.keys[i] = t.keys[last]
		t.vals[i] = t.vals[last]
		t.index[t.keys[i]] = i
	}
	t.keys = t.keys[:last]
	t.vals = t.vals[:last]
	delete(t.index, key)
}

func (t *Table) Len() int { return len(t.keys) }

func (t *Table) Clear() {
	t.index = make(map[Value]int)
	t.keys = nil
	t.vals = nil
}

// ForEach visits entries in insertion order. Mutating the table from
// within visit is not supported.
func (t *Table) ForEach(visit func(key, val Value) bool) {
	for i, k := range t.keys {
		if !visit(k, t.vals[i]) {
			return
		}
	}
}

var errNullKey = tableError("table key may not be null")

type tableError string

func (e tableError) Error() string { return string(e) }

func NewTableValue(t *Table) Value { return fromObject(KindTable, t) }
