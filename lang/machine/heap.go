package machine

// HeapObj is the body of one heap-allocated object: the variant set mirrors
// Object's heap-backed kinds (Str/Func/Array/Tuple/Range/Dict), grounded on
// the source's GcObject enum (Objects/src/gc.rs), generalized from its
// two-variant Str/Func union to cover every heap-backed Object kind this
// module's data model names.
type HeapObj struct {
	Kind ObjKind
	Str  string
	Func *FuncObj
	Arr  *ArrayObj
	Tup  *TupleObj
	Rng  *RangeObj
	Dict *DictObj
}

// Heap is an index-based arena with a tombstone free list, exactly the
// simple reclamation policy spec.md §1 calls out as sufficient ("the
// source keeps a simple index-based arena with tombstones").
type Heap struct {
	objects    []HeapObj
	tombstones []Handle
	strIndex   map[string]Handle // string interning table
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{strIndex: make(map[string]Handle)}
}

// InternStr returns the handle for s, allocating and interning it if this
// is the first time s has been seen. Equal strings always collapse to the
// same handle (spec.md §3, "strings are interned by value").
func (h *Heap) InternStr(s string) Handle {
	if hd, ok := h.strIndex[s]; ok {
		return hd
	}
	hd := h.alloc(HeapObj{Kind: KStr, Str: s})
	h.strIndex[s] = hd
	return hd
}

// AllocFunc allocates a function object. Functions are not interned:
// identity is by handle (equality delegates to name-handle per spec.md
// §3).
func (h *Heap) AllocFunc(f *FuncObj) Handle {
	return h.alloc(HeapObj{Kind: KFunc, Func: f})
}

// AllocArray allocates a fresh, mutable array object.
func (h *Heap) AllocArray(elems []Object) Handle {
	return h.alloc(HeapObj{Kind: KArray, Arr: &ArrayObj{Elems: elems}})
}

// AllocTuple allocates an immutable tuple object.
func (h *Heap) AllocTuple(elems []Object) Handle {
	return h.alloc(HeapObj{Kind: KTuple, Tup: &TupleObj{Elems: elems}})
}

// AllocRange allocates a range object.
func (h *Heap) AllocRange(min, max int64, closed bool) Handle {
	return h.alloc(HeapObj{Kind: KRange, Rng: &RangeObj{Min: min, Max: max, Closed: closed}})
}

// AllocDict allocates a dict object.
func (h *Heap) AllocDict(d *DictObj) Handle {
	return h.alloc(HeapObj{Kind: KDict, Dict: d})
}

// alloc reuses a tombstoned slot if one is available, else appends.
func (h *Heap) alloc(obj HeapObj) Handle {
	if n := len(h.tombstones); n > 0 {
		hd := h.tombstones[n-1]
		h.tombstones = h.tombstones[:n-1]
		h.objects[hd] = obj
		return hd
	}
	h.objects = append(h.objects, obj)
	return Handle(len(h.objects) - 1)
}

// Free releases a handle back to the tombstone list. The core never calls
// this on its own (lifecycle is "whole arena released at program exit" per
// spec.md §3), but it is exposed for an embedder that wants manual reuse.
func (h *Heap) Free(hd Handle) {
	if h.objects[hd].Kind == KStr {
		delete(h.strIndex, h.objects[hd].Str)
	}
	h.objects[hd] = HeapObj{}
	h.tombstones = append(h.tombstones, hd)
}

func (h *Heap) Get(hd Handle) *HeapObj { return &h.objects[hd] }
func (h *Heap) Str(hd Handle) string    { return h.objects[hd].Str }
func (h *Heap) Func(hd Handle) *FuncObj { return h.objects[hd].Func }
func (h *Heap) Array(hd Handle) *ArrayObj { return h.objects[hd].Arr }
func (h *Heap) Tuple(hd Handle) *TupleObj { return h.objects[hd].Tup }
func (h *Heap) Range(hd Handle) *RangeObj { return h.objects[hd].Rng }
func (h *Heap) Dict(hd Handle) *DictObj   { return h.objects[hd].Dict }
