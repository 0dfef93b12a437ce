package eic

// Dispatch is the shared entry point for every interrupt in non-vectored
// mode. It decodes the firing vector from Cause and INTSTAT, calls the
// routed handler and acknowledges the vector.
//
// Dispatch runs in exception context with the firing vector masked. It does
// not block, allocate or log.
func (c *Controller) Dispatch() {
	cause := c.arch.Cause()

	var v Vector
	switch {
	case cause&(1<<c.m.CauseTimer) != 0:
		v = c.m.CoreTimerVector
	case c.m.CauseRIPL.Get(cause) != 0:
		v = c.engine.status()
		if v >= Vector(c.m.Vectors) {
			c.spurious.Add(1)
			return
		}
	default:
		// nothing requested
		c.spurious.Add(1)
		return
	}

	if h := c.table.lookup(SupportedPriority, v); h != nil {
		h.Handle(v)
	} else {
		c.spurious.Add(1)
	}
	c.engine.ack(v)
}
