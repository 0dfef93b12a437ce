package eic

// Translate maps a virtual IRQ to its physical vector. SoC vectors pass
// through unchanged, as does any negative id the map does not know about.
// The register engine rejects such a vector as out of range.
func (m *MemoryMap) Translate(id IRQ) Vector {
	switch id {
	case CoreTimer:
		return m.CoreTimerVector
	case FastDebugChannel:
		return m.FastDebugChannelVector
	case PerformanceCounter:
		return m.PerformanceCounterVector
	}
	return Vector(id)
}
