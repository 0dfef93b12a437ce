// Package eic drives a PIC32 interrupt controller in non-vectored External
// Interrupt Controller mode.
//
// Every interrupt source is delivered through one shared entry point,
// Controller.Dispatch, which decodes the firing vector in software and calls
// the Handler routed to it.
package eic

import "fmt"

// IRQ is a portable interrupt id. Negative values name interrupts generated
// inside the MIPS core; non-negative values are SoC vectors.
type IRQ int

// Core generated interrupts. In EIC mode these leave the core, enter the
// controller and come back at whatever level the controller assigns them.
const (
	CoreTimer          IRQ = -1
	FastDebugChannel   IRQ = -2
	PerformanceCounter IRQ = -3
)

func (i IRQ) String() string {
	switch i {
	case CoreTimer:
		return "irq: core timer"
	case FastDebugChannel:
		return "irq: fast debug channel"
	case PerformanceCounter:
		return "irq: performance counter"
	}
	return fmt.Sprintf("irq: %d", int(i))
}

// Vector is a physical vector number, an index into the controller's
// register banks.
type Vector uint32

func (v Vector) String() string {
	return fmt.Sprintf("vector: %03d", uint32(v))
}

// Priority levels. Handlers can only be routed at SupportedPriority.
const (
	SupportedPriority = 1
	MaxPriority       = 8
)

// Violation is the panic value raised when a caller breaks the controller's
// contract. Continuing after one risks silently misrouting interrupts, so
// it is never returned as an error.
type Violation struct {
	Op  string
	Msg string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("eic: %s: %s", v.Op, v.Msg)
}

func violate(op, format string, args ...interface{}) {
	panic(&Violation{Op: op, Msg: fmt.Sprintf(format, args...)})
}
