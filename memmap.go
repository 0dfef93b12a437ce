package eic

import "fmt"

// Bank describes a run of 32 bit registers. Word i of the bank lives at
// Offset + i*Stride bytes from the controller base.
type Bank struct {
	Offset uint32 `json:"offset"`
	Stride uint32 `json:"stride"`
	Count  int    `json:"count"`
}

// Addr returns the byte offset of word i of the bank.
func (b Bank) Addr(i int) uint32 { return b.Offset + uint32(i)*b.Stride }

// Field is a bit field inside a 32 bit register.
type Field struct {
	Shift uint `json:"shift"`
	Width uint `json:"width"`
}

// Mask returns the unshifted mask of the field.
func (f Field) Mask() uint32 { return uint32(1)<<f.Width - 1 }

// Get extracts the field from v.
func (f Field) Get(v uint32) uint32 { return (v >> f.Shift) & f.Mask() }

// Put returns x positioned in the field.
func (f Field) Put(x uint32) uint32 { return (x & f.Mask()) << f.Shift }

// MemoryMap is a versioned description of the controller's register layout.
// The register engine only ever addresses hardware through it.
type MemoryMap struct {
	Name    string `json:"name"`
	Version string `json:"version"`

	// Base is the physical address of the controller block.
	Base uint64 `json:"base"`

	// Vectors is the size of the physical vector space.
	Vectors int `json:"vectors"`

	IFS     Bank `json:"ifs"`
	IEC     Bank `json:"iec"`
	IPC     Bank `json:"ipc"`
	INTSTAT Bank `json:"intstat"`

	// Offsets of the write-only clear, set and invert aliases that follow
	// every register.
	Clear  uint32 `json:"clear"`
	Set    uint32 `json:"set"`
	Invert uint32 `json:"invert"`

	// LaneBits is the number of IPC bits owned by each vector.
	LaneBits    uint  `json:"lane_bits"`
	Priority    Field `json:"priority"`
	Subpriority Field `json:"subpriority"`

	// StatusVector is the SIRQ field of INTSTAT.
	StatusVector Field `json:"status_vector"`

	// CauseRIPL and CauseTimer locate the requested interrupt priority
	// level and the timer interrupt bit in the CP0 Cause register.
	CauseRIPL  Field `json:"cause_ripl"`
	CauseTimer uint  `json:"cause_timer"`

	CoreTimerVector          Vector `json:"core_timer_vector"`
	FastDebugChannelVector   Vector `json:"fast_debug_channel_vector"`
	PerformanceCounterVector Vector `json:"performance_counter_vector"`

	Checksum string `json:"checksum,omitempty"`
}

// PIC32MZ returns the memory map of the PIC32MZ EC/EF family.
func PIC32MZ() *MemoryMap {
	return &MemoryMap{
		Name:    "pic32mz",
		Version: "1",
		Base:    0x1F810000,
		Vectors: 256,

		IFS:     Bank{Offset: 0x040, Stride: 0x10, Count: 8},
		IEC:     Bank{Offset: 0x0C0, Stride: 0x10, Count: 8},
		IPC:     Bank{Offset: 0x140, Stride: 0x10, Count: 64},
		INTSTAT: Bank{Offset: 0x020, Stride: 0x10, Count: 1},

		Clear:  0x4,
		Set:    0x8,
		Invert: 0xC,

		LaneBits:    8,
		Priority:    Field{Shift: 2, Width: 3},
		Subpriority: Field{Shift: 0, Width: 2},

		StatusVector: Field{Shift: 0, Width: 8},

		CauseRIPL:  Field{Shift: 10, Width: 6},
		CauseTimer: 30,

		CoreTimerVector:          0,
		PerformanceCounterVector: 182,
		FastDebugChannelVector:   183,
	}
}

// Validate checks that the map is internally consistent. A map that fails
// validation cannot be used to address hardware.
func (m *MemoryMap) Validate() error {
	if m.Vectors <= 0 {
		return fmt.Errorf("memory map %q: no vectors", m.Name)
	}
	words := (m.Vectors + 31) / 32
	for _, b := range []struct {
		name string
		bank Bank
		need int
	}{
		{"ifs", m.IFS, words},
		{"iec", m.IEC, words},
		{"ipc", m.IPC, (m.Vectors*int(m.LaneBits) + 31) / 32},
		{"intstat", m.INTSTAT, 1},
	} {
		if b.bank.Count < b.need {
			return fmt.Errorf("memory map %q: bank %s has %d words, need %d", m.Name, b.name, b.bank.Count, b.need)
		}
		if b.bank.Offset%4 != 0 || b.bank.Stride%4 != 0 {
			return fmt.Errorf("memory map %q: bank %s is not word aligned", m.Name, b.name)
		}
	}
	if m.LaneBits == 0 || 32%m.LaneBits != 0 {
		return fmt.Errorf("memory map %q: lane of %d bits does not divide a word", m.Name, m.LaneBits)
	}
	for name, f := range map[string]Field{
		"priority":      m.Priority,
		"subpriority":   m.Subpriority,
		"status_vector": m.StatusVector,
		"cause_ripl":    m.CauseRIPL,
	} {
		if f.Width == 0 || f.Shift+f.Width > 32 {
			return fmt.Errorf("memory map %q: field %s does not fit a word", m.Name, name)
		}
	}
	if m.Priority.Shift+m.Priority.Width > m.LaneBits || m.Subpriority.Shift+m.Subpriority.Width > m.LaneBits {
		return fmt.Errorf("memory map %q: priority fields overflow their lane", m.Name)
	}
	if m.Priority.Mask() < MaxPriority-1 {
		return fmt.Errorf("memory map %q: priority field cannot hold %d levels", m.Name, MaxPriority)
	}
	if m.CauseTimer > 31 {
		return fmt.Errorf("memory map %q: cause timer bit %d", m.Name, m.CauseTimer)
	}
	for _, v := range []Vector{m.CoreTimerVector, m.FastDebugChannelVector, m.PerformanceCounterVector} {
		if v >= Vector(m.Vectors) {
			return fmt.Errorf("memory map %q: core %s out of range", m.Name, v)
		}
	}
	return nil
}
