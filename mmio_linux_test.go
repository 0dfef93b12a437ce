//go:build linux

package eic_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/davecheney/eic"
	"github.com/matryer/is"
)

// devmem returns a zeroed file standing in for the memory device, one page
// long.
func devmem(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mem")
	if err := os.WriteFile(path, make([]byte, os.Getpagesize()), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMMIOAliases(t *testing.T) {
	is := is.New(t)
	path := devmem(t)
	m := eic.PIC32MZ()
	m.Base = 0

	bus, err := eic.OpenMMIO(path, m)
	is.NoErr(err)
	c := eic.New(m, bus, &arch{})

	c.Enable(100)
	c.Ack(100)
	c.Disable(33)
	is.Equal(bus.Load(m.IEC.Addr(3)+m.Set), uint32(0x10))
	is.Equal(bus.Load(m.IFS.Addr(3)+m.Clear), uint32(0x10))
	is.Equal(bus.Load(m.IEC.Addr(1)+m.Clear), uint32(0x2))
	is.Equal(bus.Load(m.IEC.Addr(3)), uint32(0)) // plain memory, no alias logic

	bus.Store(m.IPC.Addr(63), 0xdeadbeef)
	is.NoErr(bus.Close())

	// stores land in the mapped device
	buf, err := os.ReadFile(path)
	is.NoErr(err)
	is.Equal(binary.NativeEndian.Uint32(buf[m.IEC.Addr(3)+m.Set:]), uint32(0x10))
	is.Equal(binary.NativeEndian.Uint32(buf[m.IPC.Addr(63):]), uint32(0xdeadbeef))
}

func TestMMIOOutsideMapping(t *testing.T) {
	is := is.New(t)
	m := eic.PIC32MZ()
	m.Base = 0
	bus, err := eic.OpenMMIO(devmem(t), m)
	is.NoErr(err)
	defer bus.Close()

	end := uint32(os.Getpagesize())
	violation(t, func() { bus.Store(end, 1) })
	violation(t, func() { bus.Load(end - 2) })
	violation(t, func() { bus.Store(2, 1) })
	violation(t, func() { bus.Load(0xffffffff) })
}

func TestMMIOUnalignedBase(t *testing.T) {
	is := is.New(t)
	m := eic.PIC32MZ()
	m.Base = 0x20
	_, err := eic.OpenMMIO(devmem(t), m)
	is.True(err != nil)
}

func TestMMIOInvalidMap(t *testing.T) {
	is := is.New(t)
	m := eic.PIC32MZ()
	m.Base = 0
	m.Vectors = 0
	_, err := eic.OpenMMIO(devmem(t), m)
	is.True(err != nil)

	_, err = eic.OpenMMIO(filepath.Join(t.TempDir(), "missing"), eic.PIC32MZ())
	is.True(err != nil)
}

func TestMMIOCloseTwice(t *testing.T) {
	is := is.New(t)
	m := eic.PIC32MZ()
	m.Base = 0
	bus, err := eic.OpenMMIO(devmem(t), m)
	is.NoErr(err)
	is.NoErr(bus.Close())
	is.NoErr(bus.Close())
	violation(t, func() { bus.Load(0) }) // unmapped
}
