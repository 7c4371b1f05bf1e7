package value

import (
	"sync"

	"golang.org/x/crypto/blake2b"
)

// String is an immutable, interned byte sequence. Two Strings with
// identical bytes are always the same heap object — callers never
// construct a String directly; they go through an InternTable.
type String struct {
	Header
	data []byte
	hash [32]byte
}

func (s *String) GCHeader() *Header      { return &s.Header }
func (s *String) Traverse(visit func(Value)) {} // strings hold no further references
func (s *String) TypeName() string       { return "string" }
func (s *String) ValueKind() Kind        { return KindString }

// Bytes returns the string's immutable byte content. Callers must not
// mutate the returned slice.
func (s *String) Bytes() []byte { return s.data }
func (s *String) Len() int      { return len(s.data) }
func (s *String) Go() string    { return string(s.data) }

// InternTable is the VM-wide hash set of live Strings, keyed by content
// hash. It is a weak root: the collector's mark phase never grays an
// entry on the table's behalf, so a String reachable only through this
// table stays white and SweepWhite below removes it once its cycle's
// mark completes. A String still referenced from elsewhere in the graph
// gets marked black through that other reference and survives, the same
// "weak for collection, strong while live" relationship go4.org/intern
// documents for its finalizer-based table, adapted here to a
// stop-the-world collector instead of per-value finalizers.
type InternTable struct {
	mu   sync.Mutex // guards buckets; VM is single-mutator but intern is also reached from host threads constructing literals
	key  [blake2b.Size256]byte
	keyed bool
	buckets map[[32]byte][]*String
	count   int
}

// NewInternTable creates an empty table. If seed is non-zero-length it is
// used as the blake2b key, giving deterministic (and hash-flood
// resistant, per-VM) hashing — primarily so tests can get reproducible
// bucket layouts. A nil or empty seed selects unkeyed blake2b-256.
func NewInternTable(seed []byte) *InternTable {
	t := &InternTable{buckets: make(map[[32]byte][]*String)}
	if len(seed) > 0 {
		var k [blake2b.Size256]byte
		copy(k[:], seed)
		t.key = k
		t.keyed = true
	}
	return t
}

func (t *InternTable) hash(data []byte) [32]byte {
	var h []byte
	if t.keyed {
		sum, err := blake2b.New256(t.key[:])
		if err != nil {
			panic(err) // key length is fixed and valid; only programmer error reaches here
		}
		sum.Write(data)
		h = sum.Sum(nil)
	} else {
		sum := blake2b.Sum256(data)
		h = sum[:]
	}
	var out [32]byte
	copy(out[:], h)
	return out
}

// Intern returns the canonical String for data, allocating a new one
// (via alloc) only if no live String with identical bytes already exists.
func (t *InternTable) Intern(data []byte, alloc func(n int) *String) *String {
	h := t.hash(data)
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.buckets[h] {
		if string(s.data) == string(data) {
			return s
		}
	}
	s := alloc(len(data))
	s.data = append(s.data[:0], data...)
	s.hash = h
	t.buckets[h] = append(t.buckets[h], s)
	t.count++
	return s
}

// Count reports the number of live interned strings.
func (t *InternTable) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// SweepWhite removes every interned String whose header is still White,
// i.e. it was not reached from any root during the mark phase that just
// completed — meaning the intern table was its only reference. Called
// once per GC cycle, after marking and before objects are freed.
func (t *InternTable) SweepWhite() (removed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for h, bucket := range t.buckets {
		kept := bucket[:0]
		for _, s := range bucket {
			if s.Color() == White {
				removed++
				t.count--
				continue
			}
			kept = append(kept, s)
		}
		if len(kept) == 0 {
			delete(t.buckets, h)
		} else {
			t.buckets[h] = kept
		}
	}
	return removed
}

// ForEach visits every live interned string. The collector does not call
// it: the table is a weak root and is never grayed during marking.
func (t *InternTable) ForEach(visit func(*String)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, bucket := range t.buckets {
		for _, s := range bucket {
			visit(s)
		}
	}
}
