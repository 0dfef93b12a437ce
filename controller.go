package eic

import (
	"log/slog"
	"sync/atomic"
)

// Arch is the processor level global interrupt mask, plus the CP0 Cause
// register the dispatcher decodes.
type Arch interface {
	// Enable unmasks interrupts and returns the previous state.
	Enable() uint32

	// Disable masks interrupts and returns the previous state.
	Disable() uint32

	// Restore returns the mask to a state returned by Enable or Disable.
	Restore(state uint32)

	// InInterrupt reports whether the caller runs in exception context.
	InInterrupt() bool

	Cause() uint32
}

// Controller is a PIC32 interrupt controller in non-vectored EIC mode.
//
// Route, Enable, Disable and Ack are foreground operations and must not run
// concurrently with each other. Dispatch is the exception entry point.
type Controller struct {
	engine
	arch Arch
	log  *slog.Logger

	table    table
	spurious atomic.Uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used on foreground paths. Dispatch never logs.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// New returns a Controller addressing bus through m. It panics if m is not
// valid. Call Initialise before routing any handler.
func New(m *MemoryMap, bus Bus, arch Arch, opts ...Option) *Controller {
	if err := m.Validate(); err != nil {
		violate("new", "%v", err)
	}
	c := &Controller{
		engine: engine{m: m, bus: bus},
		arch:   arch,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.table.reset()
	return c
}

// Map returns the controller's memory map.
func (c *Controller) Map() *MemoryMap { return c.m }

// Initialise disables every vector, forgets every handler, resets the
// spurious counter and arms the core timer at priority 1.
func (c *Controller) Initialise() {
	if c.arch.InInterrupt() {
		violate("initialise", "called from exception context")
	}
	state := c.arch.Disable()
	c.engine.reset()
	c.table.reset()
	c.spurious.Store(0)
	c.ConfigureCoreTimer()
	c.arch.Restore(state)
	c.log.Debug("eic: initialised", "map", c.m.Name, "version", c.m.Version, "vectors", c.m.Vectors)
}

// ConfigureCoreTimer enables the core timer vector at priority 1,
// subpriority 0. The controller depends on it unconditionally.
func (c *Controller) ConfigureCoreTimer() {
	v := c.m.CoreTimerVector
	c.engine.setPriority(v, SupportedPriority, 0)
	c.engine.enable(v)
}

// Route installs h as the handler for id and enables it. The vector is
// disabled while its entry changes so it is never armed without a handler.
// Routing at any priority other than SupportedPriority is a contract
// violation.
func (c *Controller) Route(id IRQ, priority int, h Handler) {
	v := c.m.Translate(id)
	if priority < 0 || priority >= MaxPriority {
		violate("route", "%s: priority %d outside [0, %d)", id, priority, MaxPriority)
	}
	if priority != SupportedPriority {
		violate("route", "%s: priority %d unsupported, only %d can be routed", id, priority, SupportedPriority)
	}
	if h == nil {
		violate("route", "%s: nil handler", id)
	}
	c.engine.locate("route", v)

	state := c.arch.Disable()
	c.engine.disable(v)
	c.table.set(priority, v, h)
	c.engine.setPriority(v, uint32(priority), 0)
	c.engine.enable(v)
	c.arch.Restore(state)

	c.log.Debug("eic: route", "irq", int(id), "vector", uint32(v), "priority", priority)
}

// Routed reports whether a handler has ever been routed to id.
func (c *Controller) Routed(id IRQ) bool {
	return c.table.lookup(SupportedPriority, c.m.Translate(id)) != nil
}

// Enable arms id.
func (c *Controller) Enable(id IRQ) { c.engine.enable(c.m.Translate(id)) }

// Disable disarms id. A dispatch already in progress is not cancelled and
// the handler entry is kept.
func (c *Controller) Disable(id IRQ) { c.engine.disable(c.m.Translate(id)) }

// Ack clears id's interrupt flag.
func (c *Controller) Ack(id IRQ) { c.engine.ack(c.m.Translate(id)) }

// Enabled reports whether id is armed.
func (c *Controller) Enabled(id IRQ) bool { return c.engine.enabled(c.m.Translate(id)) }

// Pending reports whether id's interrupt flag is set.
func (c *Controller) Pending(id IRQ) bool { return c.engine.pending(c.m.Translate(id)) }

// SetPriority programs id's priority and subpriority fields.
func (c *Controller) SetPriority(id IRQ, priority, sub int) {
	if priority < 0 || priority >= MaxPriority {
		violate("priority", "%s: priority %d outside [0, %d)", id, priority, MaxPriority)
	}
	if sub < 0 || uint32(sub) > c.m.Subpriority.Mask() {
		violate("priority", "%s: subpriority %d out of range", id, sub)
	}
	c.engine.setPriority(c.m.Translate(id), uint32(priority), uint32(sub))
}

// Priority returns id's programmed priority and subpriority.
func (c *Controller) Priority(id IRQ) (priority, sub int) {
	p, s := c.engine.priority(c.m.Translate(id))
	return int(p), int(s)
}

// Spurious returns the number of dispatches that found no handler or could
// not decode a cause since the last Initialise.
func (c *Controller) Spurious() uint64 { return c.spurious.Load() }
