package scroll

import (
	"slices"
	"sync"
)

// Latest is a single-slot broadcast that replays its current value.
//
// Set publishes a value to every subscriber; Subscribe delivers the current
// value immediately and then every later one. Nothing is queued beyond the
// latest value.
type Latest[T any] struct {
	mu          sync.Mutex
	value       T
	subscribers map[int]func(T)
	nextID      int
}

// NewLatest creates a Latest holding initial.
func NewLatest[T any](initial T) *Latest[T] {
	return &Latest[T]{
		value:       initial,
		subscribers: make(map[int]func(T)),
	}
}

// Get returns the most recently published value.
func (l *Latest[T]) Get() T {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.value
}

// Set publishes v to all current subscribers. Subscribers run outside the lock
// in registration order.
func (l *Latest[T]) Set(v T) {
	l.mu.Lock()
	l.value = v
	subs := l.snapshot()
	l.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Subscribe registers fn, calls it with the current value and returns a
// function that unregisters it. The returned function is idempotent.
func (l *Latest[T]) Subscribe(fn func(T)) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subscribers[id] = fn
	current := l.value
	l.mu.Unlock()

	fn(current)

	return func() {
		l.mu.Lock()
		delete(l.subscribers, id)
		l.mu.Unlock()
	}
}

// snapshot must be called with mu held.
func (l *Latest[T]) snapshot() []func(T) {
	ids := make([]int, 0, len(l.subscribers))
	for id := range l.subscribers {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	subs := make([]func(T), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, l.subscribers[id])
	}
	return subs
}

// Emitter is an unbuffered fan-out of events without replay.
type Emitter[T any] struct {
	mu          sync.Mutex
	subscribers map[int]func(T)
	nextID      int
}

// NewEmitter creates an Emitter with no subscribers.
func NewEmitter[T any]() *Emitter[T] {
	return &Emitter[T]{subscribers: make(map[int]func(T))}
}

// Emit delivers v synchronously to the subscribers registered at call time.
func (e *Emitter[T]) Emit(v T) {
	e.mu.Lock()
	ids := make([]int, 0, len(e.subscribers))
	for id := range e.subscribers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	subs := make([]func(T), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, e.subscribers[id])
	}
	e.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Subscribe registers fn and returns a function that unregisters it.
func (e *Emitter[T]) Subscribe(fn func(T)) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.subscribers[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subscribers, id)
		e.mu.Unlock()
	}
}

// Len reports the number of registered subscribers.
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.subscribers)
}

// EventSource is anything that can notify listeners without a payload, such
// as a window resize feed.
type EventSource interface {
	Subscribe(fn func()) (remove func())
}

// Notifier is a payload-free Emitter that satisfies EventSource.
type Notifier struct {
	e *Emitter[struct{}]
}

// NewNotifier creates a Notifier with no listeners.
func NewNotifier() *Notifier {
	return &Notifier{e: NewEmitter[struct{}]()}
}

// Notify calls every registered listener.
func (n *Notifier) Notify() {
	n.e.Emit(struct{}{})
}

// Subscribe registers fn and returns a function that unregisters it.
func (n *Notifier) Subscribe(fn func()) func() {
	return n.e.Subscribe(func(struct{}) { fn() })
}

// Len reports the number of registered listeners.
func (n *Notifier) Len() int {
	return n.e.Len()
}
