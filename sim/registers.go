// Package sim simulates a PIC32MZ interrupt controller and the MIPS core it
// feeds, so the eic package can be driven without hardware.
package sim

import (
	"fmt"

	"github.com/davecheney/eic"
)

// Registers is the controller's register file. Writes to the clear, set and
// invert aliases of a register update the register the way the hardware
// does; reads of an alias return zero.
type Registers struct {
	m     *eic.MemoryMap
	span  uint32 // bytes covered by a register and its aliases
	words []uint32
}

// NewRegisters returns a zeroed register file laid out by m.
func NewRegisters(m *eic.MemoryMap) *Registers {
	span := m.Invert + 4
	var end uint32
	for _, b := range []eic.Bank{m.IFS, m.IEC, m.IPC, m.INTSTAT} {
		if e := b.Addr(b.Count-1) + span; e > end {
			end = e
		}
	}
	return &Registers{
		m:     m,
		span:  span,
		words: make([]uint32, end/4),
	}
}

func (r *Registers) index(off uint32) int {
	if off%4 != 0 || int(off/4) >= len(r.words) {
		panic(fmt.Sprintf("sim: access to invalid offset %#x", off))
	}
	return int(off / 4)
}

// Load reads the register at off.
func (r *Registers) Load(off uint32) uint32 {
	i := r.index(off)
	if off%r.span != 0 {
		return 0
	}
	return r.words[i]
}

// Store writes v to the register at off or applies it through an alias.
func (r *Registers) Store(off uint32, v uint32) {
	r.index(off)
	alias := off % r.span
	reg := &r.words[(off-alias)/4]
	switch alias {
	case 0:
		*reg = v
	case r.m.Clear:
		*reg &^= v
	case r.m.Set:
		*reg |= v
	case r.m.Invert:
		*reg ^= v
	default:
		panic(fmt.Sprintf("sim: write to invalid alias %#x", off))
	}
}

// Word returns word i of bank b.
func (r *Registers) Word(b eic.Bank, i int) uint32 { return r.Load(b.Addr(i)) }

// flag reports whether bit v is set in bank b.
func (r *Registers) flag(b eic.Bank, v eic.Vector) bool {
	return r.Word(b, int(v>>5))&(1<<(v&31)) != 0
}

// Raise sets v's interrupt flag, as the peripheral owning v would.
func (r *Registers) Raise(v eic.Vector) {
	r.Store(r.m.IFS.Addr(int(v>>5))+r.m.Set, 1<<(v&31))
}

// Pending reports whether v's interrupt flag is set.
func (r *Registers) Pending(v eic.Vector) bool { return r.flag(r.m.IFS, v) }

// Enabled reports whether v is enabled.
func (r *Registers) Enabled(v eic.Vector) bool { return r.flag(r.m.IEC, v) }

// Priority returns v's programmed priority.
func (r *Registers) Priority(v eic.Vector) uint32 {
	perWord := 32 / r.m.LaneBits
	lane := r.Word(r.m.IPC, int(uint(v)/perWord)) >> ((uint(v) % perWord) * r.m.LaneBits)
	return r.m.Priority.Get(lane)
}

// setStatus latches v into the vector field of INTSTAT.
func (r *Registers) setStatus(v eic.Vector) {
	r.Store(r.m.INTSTAT.Addr(0), r.m.StatusVector.Put(uint32(v)))
}
