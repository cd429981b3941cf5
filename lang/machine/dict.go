package machine

import "github.com/dolthub/swiss"

// DictObj is the heap body backing the dict literal/collection type named
// in spec.md §3 (Heap variants) and §4.2 (MakeDict family). It wraps a
// swiss-table hash map rather than a plain Go map so the closed Object key
// space gets open-addressing lookup characteristics, matching the
// dictionary implementation style used across the corpus this module was
// built from.
type DictObj struct {
	m *swiss.Map[Object, Object]
}

// NewDict allocates an empty dict with room for hint entries.
func NewDict(hint int) *DictObj {
	if hint < 8 {
		hint = 8
	}
	return &DictObj{m: swiss.NewMap[Object, Object](uint32(hint))}
}

func (d *DictObj) Get(k Object) (Object, bool) { return d.m.Get(k) }
func (d *DictObj) Put(k, v Object)              { d.m.Put(k, v) }
func (d *DictObj) Delete(k Object) bool          { return d.m.Delete(k) }
func (d *DictObj) Len() int                      { return int(d.m.Count()) }

// Each iterates entries in unspecified order, stopping early if fn returns
// false.
func (d *DictObj) Each(fn func(k, v Object) bool) {
	d.m.Iter(func(k, v Object) (stop bool) {
		return !fn(k, v)
	})
}
