package fsm

import "sync"

type hookEntry[T any] struct {
	fn T
}

// hookList is an append-ordered callback list supporting removal by handle.
// Registration may happen from any goroutine; the stepping algorithm only reads it.
type hookList[T any] struct {
	mu      sync.Mutex
	entries []*hookEntry[T]
}

func (l *hookList[T]) add(fn T) func() {
	e := &hookEntry[T]{fn: fn}
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
	return func() { l.remove(e) }
}

func (l *hookList[T]) remove(e *hookEntry[T]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := make([]*hookEntry[T], 0, len(l.entries))
	for _, x := range l.entries {
		if x != e {
			kept = append(kept, x)
		}
	}
	l.entries = kept
}

func (l *hookList[T]) list() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	fns := make([]T, len(l.entries))
	for i, e := range l.entries {
		fns[i] = e.fn
	}
	return fns
}
