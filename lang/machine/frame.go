package machine

// CallFrame is one active function invocation (spec.md §3, "Call frame").
type CallFrame struct {
	IP        int
	FuncPtr   Handle
	ReturnIdx int // stack base for this call: position of the callee on the stack
	ArgCount  int
	Upvalues  []*Cell
	Iters     []*iterState
}

// Cell is the shared storage cell behind one up-value. While open it
// aliases a live stack slot so reads/writes through GetLocal/SetLocal and
// GetUpVal/SetUpVal observe each other; CloseUpVal snapshots the value out
// of the stack once the owning scope exits, per spec.md §9's up-value
// requirement.
type Cell struct {
	ptr    *Object
	closed Object
	open   bool
}

func newOpenCell(ptr *Object) *Cell { return &Cell{ptr: ptr, open: true} }

func (c *Cell) Get() Object {
	if c.open {
		return *c.ptr
	}
	return c.closed
}

func (c *Cell) Set(v Object) {
	if c.open {
		*c.ptr = v
		return
	}
	c.closed = v
}

func (c *Cell) Close() {
	if c.open {
		c.closed = *c.ptr
		c.open = false
		c.ptr = nil
	}
}
