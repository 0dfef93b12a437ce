package eic

// Bus gives access to the controller's registers. Offsets are in bytes from
// the controller base; every access is a single aligned 32 bit word.
type Bus interface {
	Load(off uint32) uint32
	Store(off uint32, v uint32)
}

// engine performs bit exact operations on the register banks described by
// a MemoryMap. None of its methods are safe against concurrent use.
type engine struct {
	m   *MemoryMap
	bus Bus
}

// locate splits v into the word of a 32 bit per word bank and the bit within it.
func (e *engine) locate(op string, v Vector) (int, uint32) {
	if v >= Vector(e.m.Vectors) {
		violate(op, "%s outside of %d vector map %q", v, e.m.Vectors, e.m.Name)
	}
	return int(v >> 5), uint32(1) << (v & 31)
}

func (e *engine) enable(v Vector) {
	word, bit := e.locate("enable", v)
	e.bus.Store(e.m.IEC.Addr(word)+e.m.Set, bit)
}

func (e *engine) disable(v Vector) {
	word, bit := e.locate("disable", v)
	e.bus.Store(e.m.IEC.Addr(word)+e.m.Clear, bit)
}

func (e *engine) ack(v Vector) {
	word, bit := e.locate("ack", v)
	e.bus.Store(e.m.IFS.Addr(word)+e.m.Clear, bit)
}

func (e *engine) enabled(v Vector) bool {
	word, bit := e.locate("enabled", v)
	return e.bus.Load(e.m.IEC.Addr(word))&bit != 0
}

func (e *engine) pending(v Vector) bool {
	word, bit := e.locate("pending", v)
	return e.bus.Load(e.m.IFS.Addr(word))&bit != 0
}

// lane returns the IPC register and shift owning v's priority bits.
func (e *engine) lane(op string, v Vector) (uint32, uint) {
	e.locate(op, v)
	perWord := 32 / e.m.LaneBits
	word := int(uint(v) / perWord)
	shift := (uint(v) % perWord) * e.m.LaneBits
	return e.m.IPC.Addr(word), shift
}

// setPriority programs v's priority and subpriority, leaving the lanes of
// its neighbours untouched.
func (e *engine) setPriority(v Vector, priority, sub uint32) {
	reg, shift := e.lane("priority", v)
	mask := (e.m.Priority.Put(e.m.Priority.Mask()) | e.m.Subpriority.Put(e.m.Subpriority.Mask())) << shift
	val := (e.m.Priority.Put(priority) | e.m.Subpriority.Put(sub)) << shift
	e.bus.Store(reg+e.m.Clear, mask)
	if val != 0 {
		e.bus.Store(reg+e.m.Set, val)
	}
}

func (e *engine) priority(v Vector) (priority, sub uint32) {
	reg, shift := e.lane("priority", v)
	lane := e.bus.Load(reg) >> shift
	return e.m.Priority.Get(lane), e.m.Subpriority.Get(lane)
}

// reset disables every vector and clears every flag across the whole of
// both banks.
func (e *engine) reset() {
	for i := 0; i < e.m.IEC.Count; i++ {
		e.bus.Store(e.m.IEC.Addr(i)+e.m.Clear, 0xffffffff)
	}
	for i := 0; i < e.m.IFS.Count; i++ {
		e.bus.Store(e.m.IFS.Addr(i)+e.m.Clear, 0xffffffff)
	}
}

// status returns the vector reported in INTSTAT.
func (e *engine) status() Vector {
	return Vector(e.m.StatusVector.Get(e.bus.Load(e.m.INTSTAT.Addr(0))))
}
