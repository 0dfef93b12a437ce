package sim

import "github.com/davecheney/eic"

// Timer is the MIPS core timer. Count advances once per step and when it
// reaches Compare the timer raises its interrupt flag and starts over.
type Timer struct {
	count   uint64
	compare uint64
	fired   uint64
}

// NewTimer returns a timer firing every period steps. A zero period never
// fires.
func NewTimer(period uint64) *Timer {
	return &Timer{compare: period}
}

// tick advances the timer and raises v on regs when it expires.
func (t *Timer) tick(regs *Registers, v eic.Vector) {
	if t.compare == 0 {
		return
	}
	t.count++
	if t.count >= t.compare {
		t.count = 0
		t.fired++
		regs.Raise(v)
	}
}

// Fired returns how many times the timer has expired.
func (t *Timer) Fired() uint64 { return t.fired }

// Source is a peripheral raising Vector every Period steps.
type Source struct {
	Vector eic.Vector
	Period uint64
}
