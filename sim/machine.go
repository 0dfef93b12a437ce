package sim

import "github.com/davecheney/eic"

// Machine couples a register file, a core, the core timer and any number
// of peripheral sources. It is single threaded: the foreground program and
// exceptions interleave only at Step boundaries, as on a single core.
type Machine struct {
	m *eic.MemoryMap

	Regs  *Registers
	Core  *Core
	Timer *Timer

	sources []Source
	entry   func()
	steps   uint64
}

// NewMachine returns a machine laid out by m whose core timer fires every
// timerPeriod steps.
func NewMachine(m *eic.MemoryMap, timerPeriod uint64) *Machine {
	return &Machine{
		m:     m,
		Regs:  NewRegisters(m),
		Core:  NewCore(m),
		Timer: NewTimer(timerPeriod),
	}
}

// Attach installs the shared interrupt entry point, normally
// (*eic.Controller).Dispatch.
func (mc *Machine) Attach(entry func()) { mc.entry = entry }

// AddSource adds a peripheral raising s.Vector every s.Period steps.
func (mc *Machine) AddSource(s Source) {
	if s.Period == 0 || s.Vector >= eic.Vector(mc.m.Vectors) {
		return
	}
	mc.sources = append(mc.sources, s)
}

// Steps returns the number of steps taken.
func (mc *Machine) Steps() uint64 { return mc.steps }

// Step advances time by one tick, then takes an interrupt exception if the
// controller requests one and the core accepts it.
func (mc *Machine) Step() {
	mc.steps++
	mc.Timer.tick(mc.Regs, mc.m.CoreTimerVector)
	for _, s := range mc.sources {
		if mc.steps%s.Period == 0 {
			mc.Regs.Raise(s.Vector)
		}
	}
	mc.Interrupt()
}

// Interrupt takes an interrupt exception if one is requested and the core
// accepts it. It returns whether an exception was taken.
func (mc *Machine) Interrupt() bool {
	timer, ripl := mc.update()
	if mc.entry == nil || !mc.Core.interruptible() || (!timer && ripl == 0) {
		return false
	}
	mc.Core.exception(mc.entry)
	mc.update()
	return true
}

// Run takes n steps.
func (mc *Machine) Run(n int) {
	for i := 0; i < n; i++ {
		mc.Step()
	}
}

// update recomputes Cause and INTSTAT from the flag, enable and priority
// banks. The highest priority pending and enabled vector wins; ties go to
// the lowest vector number. Vectors at priority 0 never interrupt.
func (mc *Machine) update() (timer bool, ripl uint32) {
	ct := mc.m.CoreTimerVector
	timer = mc.Regs.Pending(ct) && mc.Regs.Enabled(ct)

	var best eic.Vector
	words := (mc.m.Vectors + 31) / 32
	for w := 0; w < words; w++ {
		active := mc.Regs.Word(mc.m.IFS, w) & mc.Regs.Word(mc.m.IEC, w)
		for bit := 0; active != 0 && bit < 32; bit++ {
			if active&(1<<bit) == 0 {
				continue
			}
			active &^= 1 << bit
			v := eic.Vector(w*32 + bit)
			if v >= eic.Vector(mc.m.Vectors) {
				break
			}
			if p := mc.Regs.Priority(v); p > ripl {
				ripl, best = p, v
			}
		}
	}
	if ripl == 0 {
		best = 0
	}
	mc.Regs.setStatus(best)
	mc.Core.setCause(timer, ripl)
	return timer, ripl
}
