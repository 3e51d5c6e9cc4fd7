package ui

import "sync"

// Handler receives event arguments. Returning false vetoes the event.
type Handler func(args ...any) bool

// Arg returns args[i] as a T, reporting false when it is missing or of
// another type.
func Arg[T any](args []any, i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(args) {
		return zero, false
	}
	v, ok := args[i].(T)
	return v, ok
}

// Observable is a component that emits named events.
type Observable interface {
	AddEvents(names ...string)
	EnableBubble(names ...string)
	On(name string, h Handler) (off func())
	Fire(name string, args ...any) bool
}

type listener struct {
	id int
	fn Handler
}

type event struct {
	declared  bool
	bubble    bool
	listeners []listener
}

// events is an embeddable event table.
type events struct {
	mu     sync.Mutex
	table  map[string]*event
	nextID int
}

func (e *events) entryLocked(name string) *event {
	if e.table == nil {
		e.table = make(map[string]*event)
	}
	ev, ok := e.table[name]
	if !ok {
		ev = &event{}
		e.table[name] = ev
	}
	return ev
}

// AddEvents declares event names.
func (e *events) AddEvents(names ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, name := range names {
		e.entryLocked(name).declared = true
	}
}

// EnableBubble marks events that continue to ancestors after local handlers.
func (e *events) EnableBubble(names ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, name := range names {
		e.entryLocked(name).bubble = true
	}
}

// Declared reports whether name was declared with AddEvents.
func (e *events) Declared(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ev, ok := e.table[name]
	return ok && ev.declared
}

// Bubbles reports whether name bubbles.
func (e *events) Bubbles(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ev, ok := e.table[name]
	return ok && ev.bubble
}

// On subscribes h to name and returns a function removing it.
func (e *events) On(name string, h Handler) func() {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	ev := e.entryLocked(name)
	ev.listeners = append(ev.listeners, listener{id: id, fn: h})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			ev := e.table[name]
			for i, l := range ev.listeners {
				if l.id == id {
					ev.listeners = append(ev.listeners[:i:i], ev.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// ListenerCount returns the number of handlers subscribed to name.
func (e *events) ListenerCount(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ev, ok := e.table[name]; ok {
		return len(ev.listeners)
	}
	return 0
}

// fireLocal runs the local handlers in subscription order and stops at the
// first veto.
func (e *events) fireLocal(name string, args []any) bool {
	e.mu.Lock()
	ev, ok := e.table[name]
	var snapshot []listener
	if ok {
		snapshot = append(snapshot, ev.listeners...)
	}
	e.mu.Unlock()

	for _, l := range snapshot {
		if !l.fn(args...) {
			return false
		}
	}
	return true
}

type localFirer interface {
	fireLocal(name string, args []any) bool
}
