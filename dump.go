package eic

import (
	"fmt"
	"io"
)

// reg names one word of a bank.
type reg struct {
	name string
	off  uint32
}

// registers lists every word the engine can touch, in address order.
func (m *MemoryMap) registers() []reg {
	var regs []reg
	for _, b := range []struct {
		name string
		bank Bank
	}{
		{"INTSTAT", m.INTSTAT},
		{"IFS", m.IFS},
		{"IEC", m.IEC},
		{"IPC", m.IPC},
	} {
		if b.bank.Count == 1 {
			regs = append(regs, reg{b.name, b.bank.Addr(0)})
			continue
		}
		for i := 0; i < b.bank.Count; i++ {
			regs = append(regs, reg{fmt.Sprintf("%s%d", b.name, i), b.bank.Addr(i)})
		}
	}
	return regs
}

// Dump writes the register layout of m to w, with the current value of
// each register when bus is not nil.
func Dump(w io.Writer, m *MemoryMap, bus Bus) error {
	if _, err := fmt.Fprintf(w, "%s v%s base %#08x vectors %d\n", m.Name, m.Version, m.Base, m.Vectors); err != nil {
		return err
	}
	for _, r := range m.registers() {
		var err error
		if bus == nil {
			_, err = fmt.Fprintf(w, "%-8s %04x clr %04x set %04x inv %04x\n", r.name, r.off, r.off+m.Clear, r.off+m.Set, r.off+m.Invert)
		} else {
			_, err = fmt.Fprintf(w, "%-8s %04x %08x\n", r.name, r.off, bus.Load(r.off))
		}
		if err != nil {
			return err
		}
	}
	return nil
}
