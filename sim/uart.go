package sim

import (
	"io"

	"github.com/davecheney/eic"
)

// UART vectors of UART4 on the PIC32MZ, the debug console on the chipKIT
// Wi-FIRE.
const (
	UART4RX eic.Vector = 171
	UART4TX eic.Vector = 172
)

// UART is a byte at a time serial port. Receiving a byte raises RX;
// transmitting one writes it to Out and raises TX.
type UART struct {
	RX, TX eic.Vector
	Out    io.Writer

	regs  *Registers
	rbuf  byte
	ready bool
	lost  int
}

// NewUART returns a UART raising its interrupts on mc.
func NewUART(mc *Machine, rx, tx eic.Vector, out io.Writer) *UART {
	return &UART{RX: rx, TX: tx, Out: out, regs: mc.Regs}
}

// Receive latches c as if it arrived on the wire. A byte that arrives
// before the previous one was read overruns it.
func (u *UART) Receive(c byte) {
	if u.ready {
		u.lost++
	}
	u.rbuf = c
	u.ready = true
	u.regs.Raise(u.RX)
}

// Read returns the received byte, if any.
func (u *UART) Read() (byte, bool) {
	if !u.ready {
		return 0, false
	}
	u.ready = false
	return u.rbuf, true
}

// Write transmits c.
func (u *UART) Write(c byte) error {
	if c != '\r' {
		if _, err := u.Out.Write([]byte{c}); err != nil {
			return err
		}
	}
	u.regs.Raise(u.TX)
	return nil
}

// Overruns returns the number of received bytes lost to overrun.
func (u *UART) Overruns() int { return u.lost }
