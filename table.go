package eic

// Handler responds to an interrupt on vector v. Handlers run in exception
// context with v masked by hardware; they must not block.
type Handler interface {
	Handle(v Vector)
}

// HandlerFunc adapts an ordinary function to a Handler.
type HandlerFunc func(v Vector)

// Handle calls f(v).
func (f HandlerFunc) Handle(v Vector) { f(v) }

type entry struct {
	vector  Vector
	handler Handler
}

// table holds one handler per (priority group, vector). Entries are created
// on first route and replaced in place afterwards; they are never removed.
// Insertions must happen with the global interrupt mask held.
type table [MaxPriority]map[Vector]*entry

func (t *table) reset() {
	for i := range t {
		t[i] = make(map[Vector]*entry)
	}
}

// set installs h for v in group, creating the entry if needed.
func (t *table) set(group int, v Vector, h Handler) {
	e, ok := t[group][v]
	if !ok {
		e = &entry{vector: v}
		t[group][v] = e
	}
	e.handler = h
}

func (t *table) lookup(group int, v Vector) Handler {
	e, ok := t[group][v]
	if !ok {
		return nil
	}
	return e.handler
}

func (t *table) len(group int) int { return len(t[group]) }
