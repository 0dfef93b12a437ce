//go:build linux

package eic

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MMIO is a Bus backed by the controller's registers mapped from a memory
// device such as /dev/mem or a UIO node.
type MMIO struct {
	mem []byte
}

// OpenMMIO maps the register block described by m from path. The mapping
// covers every bank in m, starting at m.Base.
func OpenMMIO(path string, m *MemoryMap) (*MMIO, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pagesize := uint64(unix.Getpagesize())
	if m.Base%pagesize != 0 {
		return nil, fmt.Errorf("mmio: base %#x is not page aligned", m.Base)
	}
	size := mapSpan(m)
	size = (size + pagesize - 1) &^ (pagesize - 1)
	mem, err := unix.Mmap(int(f.Fd()), int64(m.Base), int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmio: map %s at %#x: %w", path, m.Base, err)
	}
	return &MMIO{mem: mem}, nil
}

// mapSpan returns the number of bytes from the base to the end of the last
// alias of the highest register in m.
func mapSpan(m *MemoryMap) uint64 {
	var end uint32
	for _, b := range []Bank{m.IFS, m.IEC, m.IPC, m.INTSTAT} {
		if e := b.Addr(b.Count-1) + m.Invert + 4; e > end {
			end = e
		}
	}
	return uint64(end)
}

func (r *MMIO) word(off uint32) *uint32 {
	if off%4 != 0 || uint64(off)+4 > uint64(len(r.mem)) {
		violate("mmio", "offset %#x outside of %d byte mapping", off, len(r.mem))
	}
	return (*uint32)(unsafe.Pointer(&r.mem[off]))
}

// Load reads the register at off.
func (r *MMIO) Load(off uint32) uint32 { return atomic.LoadUint32(r.word(off)) }

// Store writes v to the register at off.
func (r *MMIO) Store(off uint32, v uint32) { atomic.StoreUint32(r.word(off), v) }

// Close unmaps the registers.
func (r *MMIO) Close() error {
	if r.mem == nil {
		return nil
	}
	err := unix.Munmap(r.mem)
	r.mem = nil
	return err
}
