package sim

import (
	"fmt"

	"github.com/davecheney/eic"
)

// CP0 Status bits.
const (
	StatusIE  = 1 << 0 // interrupt enable
	StatusEXL = 1 << 1 // exception level
)

// Core is the part of a MIPS32r2 core the controller talks to: the Status
// register holding the global interrupt mask and the Cause register the
// controller drives. Core implements eic.Arch.
type Core struct {
	m *eic.MemoryMap

	status uint32 // CP0 Status
	cause  uint32 // CP0 Cause

	exceptions uint64
}

// NewCore returns a core with interrupts masked.
func NewCore(m *eic.MemoryMap) *Core {
	return &Core{m: m}
}

// Enable sets Status.IE and returns the previous Status.
func (c *Core) Enable() uint32 {
	s := c.status
	c.status |= StatusIE
	return s
}

// Disable clears Status.IE and returns the previous Status.
func (c *Core) Disable() uint32 {
	s := c.status
	c.status &^= StatusIE
	return s
}

// Restore sets Status.IE to its value in state.
func (c *Core) Restore(state uint32) {
	if state&StatusIE != 0 {
		c.status |= StatusIE
	} else {
		c.status &^= StatusIE
	}
}

// InInterrupt reports whether the core is at exception level.
func (c *Core) InInterrupt() bool { return c.status&StatusEXL != 0 }

// Cause returns CP0 Cause.
func (c *Core) Cause() uint32 { return c.cause }

// Status returns CP0 Status.
func (c *Core) Status() uint32 { return c.status }

// Exceptions returns the number of interrupt exceptions taken.
func (c *Core) Exceptions() uint64 { return c.exceptions }

// setCause drives the timer bit and requested level the controller presents.
func (c *Core) setCause(timer bool, ripl uint32) {
	cause := c.cause &^ (1<<c.m.CauseTimer | c.m.CauseRIPL.Put(c.m.CauseRIPL.Mask()))
	if timer {
		cause |= 1 << c.m.CauseTimer
	}
	cause |= c.m.CauseRIPL.Put(ripl)
	c.cause = cause
}

// interruptible reports whether an interrupt would be taken now.
func (c *Core) interruptible() bool {
	return c.status&(StatusIE|StatusEXL) == StatusIE
}

// exception enters exception level, runs entry and returns from it.
// Further interrupts are held off until entry returns.
func (c *Core) exception(entry func()) {
	c.status |= StatusEXL
	c.exceptions++
	entry()
	c.status &^= StatusEXL
}

func (c *Core) String() string {
	ie, exl := " ", " "
	if c.status&StatusIE != 0 {
		ie = "I"
	}
	if c.status&StatusEXL != 0 {
		exl = "X"
	}
	return fmt.Sprintf("[%s%s] status %08x cause %08x", ie, exl, c.status, c.cause)
}
