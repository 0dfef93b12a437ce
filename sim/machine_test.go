package sim

import (
	"testing"

	"github.com/davecheney/eic"
	"github.com/matryer/is"
)

func boot(t *testing.T, period uint64) (*Machine, *eic.Controller) {
	t.Helper()
	m := eic.PIC32MZ()
	mc := NewMachine(m, period)
	c := eic.New(m, mc.Regs, mc.Core)
	c.Initialise()
	mc.Attach(c.Dispatch)
	mc.Core.Enable()
	return mc, c
}

func TestMachineCoreTimer(t *testing.T) {
	is := is.New(t)
	mc, c := boot(t, 10)

	ticks := 0
	c.Route(eic.CoreTimer, eic.SupportedPriority, eic.HandlerFunc(func(v eic.Vector) {
		is.True(mc.Core.InInterrupt())
		ticks++
	}))
	mc.Run(100)

	is.Equal(ticks, 10)
	is.Equal(mc.Timer.Fired(), uint64(10))
	is.Equal(c.Spurious(), uint64(0))
	is.True(!mc.Core.InInterrupt())
}

func TestMachineUnroutedTimer(t *testing.T) {
	is := is.New(t)
	mc, c := boot(t, 5)

	// Initialise arms the core timer before anything handles it.
	mc.Run(20)
	is.Equal(c.Spurious(), uint64(4))
	is.True(!mc.Regs.Pending(0))
}

func TestMachineSources(t *testing.T) {
	is := is.New(t)
	mc, c := boot(t, 0)

	counts := map[eic.Vector]int{}
	count := eic.HandlerFunc(func(v eic.Vector) { counts[v]++ })
	c.Route(40, eic.SupportedPriority, count)
	c.Route(200, eic.SupportedPriority, count)
	mc.AddSource(Source{Vector: 40, Period: 4})
	mc.AddSource(Source{Vector: 200, Period: 4})

	// both fire on the same step; one is taken per step, lowest vector first
	mc.Run(1)
	is.Equal(len(counts), 0)
	mc.Run(3)
	is.Equal(counts[40], 1)
	is.Equal(counts[200], 0)
	mc.Run(1)
	is.Equal(counts[200], 1)
	is.Equal(mc.Core.Exceptions(), uint64(2))
}

func TestMachineMasked(t *testing.T) {
	is := is.New(t)
	mc, c := boot(t, 0)

	n := 0
	c.Route(12, eic.SupportedPriority, eic.HandlerFunc(func(eic.Vector) { n++ }))

	s := mc.Core.Disable()
	mc.Regs.Raise(12)
	mc.Run(3)
	is.Equal(n, 0)
	is.True(mc.Regs.Pending(12))

	mc.Core.Restore(s)
	is.True(mc.Interrupt())
	is.Equal(n, 1)
	is.True(!mc.Interrupt())
}

func TestMachineDisabledVector(t *testing.T) {
	is := is.New(t)
	mc, c := boot(t, 0)

	n := 0
	c.Route(12, eic.SupportedPriority, eic.HandlerFunc(func(eic.Vector) { n++ }))
	c.Disable(12)
	mc.Regs.Raise(12)
	is.True(!mc.Interrupt())

	c.Enable(12)
	is.True(mc.Interrupt())
	is.Equal(n, 1)
}

func TestMachineNoNesting(t *testing.T) {
	is := is.New(t)
	mc, c := boot(t, 0)

	var order []eic.Vector
	c.Route(12, eic.SupportedPriority, eic.HandlerFunc(func(v eic.Vector) {
		order = append(order, v)
		mc.Regs.Raise(13)
		// still at exception level, nothing else is taken
		is.True(!mc.Interrupt())
	}))
	c.Route(13, eic.SupportedPriority, eic.HandlerFunc(func(v eic.Vector) {
		order = append(order, v)
	}))

	mc.Regs.Raise(12)
	is.True(mc.Interrupt())
	is.True(mc.Interrupt())
	is.Equal(order, []eic.Vector{12, 13})
}

func TestMachineHighestPriorityWins(t *testing.T) {
	is := is.New(t)
	mc, c := boot(t, 0)

	c.Route(10, eic.SupportedPriority, eic.HandlerFunc(func(eic.Vector) {}))
	c.Enable(90)
	c.SetPriority(90, 5, 0)
	mc.Regs.Raise(10)
	mc.Regs.Raise(90)

	// 90 outranks 10 but has no handler
	is.True(mc.Interrupt())
	is.Equal(c.Spurious(), uint64(1))
	is.True(!mc.Regs.Pending(90))
	is.True(mc.Regs.Pending(10))
}

func BenchmarkMachineStep(b *testing.B) {
	m := eic.PIC32MZ()
	mc := NewMachine(m, 2)
	c := eic.New(m, mc.Regs, mc.Core)
	c.Initialise()
	c.Route(eic.CoreTimer, eic.SupportedPriority, eic.HandlerFunc(func(eic.Vector) {}))
	mc.Attach(c.Dispatch)
	mc.Core.Enable()

	for i := 0; i < b.N; i++ {
		mc.Step()
	}
}

func TestAddSourceOutOfRange(t *testing.T) {
	is := is.New(t)
	mc := NewMachine(eic.PIC32MZ(), 0)
	mc.AddSource(Source{Vector: 256, Period: 1})
	mc.AddSource(Source{Vector: 0x80000000, Period: 1})
	mc.AddSource(Source{Vector: 0xfffffff9, Period: 1})
	mc.AddSource(Source{Vector: 40, Period: 0})
	is.Equal(len(mc.sources), 0)
	mc.AddSource(Source{Vector: 255, Period: 1})
	is.Equal(len(mc.sources), 1)
}
