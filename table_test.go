package eic

import (
	"testing"

	"github.com/matryer/is"
)

// bus records every store.
type bus struct {
	words  map[uint32]uint32
	stores []store
}

type store struct{ off, v uint32 }

func (b *bus) Load(off uint32) uint32 { return b.words[off] }

func (b *bus) Store(off uint32, v uint32) {
	if b.words == nil {
		b.words = make(map[uint32]uint32)
	}
	b.words[off] = v
	b.stores = append(b.stores, store{off, v})
}

func TestTableReplacesInPlace(t *testing.T) {
	is := is.New(t)
	var tab table
	tab.reset()

	var got string
	h1 := HandlerFunc(func(Vector) { got = "h1" })
	h2 := HandlerFunc(func(Vector) { got = "h2" })

	tab.set(1, 40, h1)
	e := tab[1][40]
	tab.set(1, 40, h2)

	is.Equal(tab.len(1), 1)
	is.True(tab[1][40] == e) // same entry, new handler
	is.Equal(e.vector, Vector(40))
	tab.lookup(1, 40).Handle(40)
	is.Equal(got, "h2")

	is.Equal(tab.len(0), 0)
	is.True(tab.lookup(0, 40) == nil)
}

func TestEngineAliases(t *testing.T) {
	is := is.New(t)
	m := PIC32MZ()
	b := new(bus)
	e := engine{m: m, bus: b}

	e.enable(100)
	e.disable(32)
	e.ack(63)
	is.Equal(b.stores, []store{
		{0x0C0 + 3*0x10 + 0x8, 1 << 4},  // IEC3SET
		{0x0C0 + 1*0x10 + 0x4, 1 << 0},  // IEC1CLR
		{0x040 + 1*0x10 + 0x4, 1 << 31}, // IFS1CLR
	})
}

func TestEnginePriorityLane(t *testing.T) {
	is := is.New(t)
	m := PIC32MZ()
	b := new(bus)
	e := engine{m: m, bus: b}

	e.setPriority(6, 1, 0)
	is.Equal(b.stores, []store{
		{0x140 + 1*0x10 + 0x4, 0x1f << 16}, // IPC1CLR
		{0x140 + 1*0x10 + 0x8, 1 << 18},    // IPC1SET
	})

	b.stores = nil
	e.setPriority(6, 0, 0)
	is.Equal(len(b.stores), 1) // nothing to set
}

func TestRouteOrder(t *testing.T) {
	is := is.New(t)
	m := PIC32MZ()
	b := new(bus)
	a := &orderArch{b: b}
	c := New(m, b, a)

	c.Route(33, SupportedPriority, HandlerFunc(func(Vector) {}))

	// masked, disarmed, reprioritised, rearmed, unmasked
	is.Equal(a.events, []string{"disable", "restore"})
	is.Equal(a.storesAtRestore, 4)
	is.Equal(b.stores[0], store{0x0C0 + 0x10 + 0x4, 1 << 1})
	is.Equal(b.stores[3], store{0x0C0 + 0x10 + 0x8, 1 << 1})
}

type orderArch struct {
	b               *bus
	events          []string
	storesAtRestore int
}

func (a *orderArch) Enable() uint32 { return 0 }

func (a *orderArch) Disable() uint32 {
	a.events = append(a.events, "disable")
	a.b.stores = nil
	return 1
}

func (a *orderArch) Restore(uint32) {
	a.events = append(a.events, "restore")
	a.storesAtRestore = len(a.b.stores)
}

func (a *orderArch) InInterrupt() bool { return false }
func (a *orderArch) Cause() uint32     { return 0 }
