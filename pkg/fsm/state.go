package fsm

import (
	"context"
	"fmt"

	"github.com/aretw0/nest/pkg/domain"
)

// Handler is a lifecycle callback (enter or exit) of a State.
type Handler func(ctx context.Context, s *State) error

// DumpHandler fills (on dump) or reads (on restore) the saved data of a State.
type DumpHandler func(ctx context.Context, s *State, data map[string]any) error

// ErrorHandler observes failures of the handlers registered on a State.
type ErrorHandler func(ctx context.Context, s *State, err error)

// State is one level of the live stack.
//
// The parent pointer is a back-reference only: the Process owns the leaf and
// the chain above it is reachable through it, never the other way round.
type State struct {
	process    *Process
	key        string
	parent     *State
	descriptor *Descriptor

	enter     []Handler
	exit      []Handler
	observers []ErrorHandler
	dumps     []DumpHandler
	restores  []DumpHandler

	data map[string]any
}

func newState(p *Process, parent *State, key string, d *Descriptor) *State {
	return &State{
		process:    p,
		key:        key,
		parent:     parent,
		descriptor: d,
		data:       make(map[string]any),
	}
}

// Key returns the state key.
func (s *State) Key() string { return s.key }

// Parent returns the enclosing state, or nil for the root.
func (s *State) Parent() *State { return s.parent }

// Descriptor returns the compiled table of this state, or nil for a placeholder leaf.
func (s *State) Descriptor() *Descriptor { return s.descriptor }

// Process returns the process the state belongs to.
func (s *State) Process() *Process { return s.process }

// Depth returns the number of ancestors.
func (s *State) Depth() int {
	depth := 0
	for p := s.parent; p != nil; p = p.parent {
		depth++
	}
	return depth
}

// Path returns the keys from the root down to this state.
func (s *State) Path() []string {
	var path []string
	for st := s; st != nil; st = st.parent {
		path = append(path, st.key)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// OnEnter registers a handler run when the state is entered.
// Enter handlers run in registration order.
func (s *State) OnEnter(h Handler) {
	s.enter = append(s.enter, h)
}

// OnExit registers a handler run when the state is left.
// Exit handlers run in reverse registration order, so resources acquired in
// enter handlers are released last-in first-out.
func (s *State) OnExit(h Handler) {
	s.exit = append([]Handler{h}, s.exit...)
}

// OnError registers an observer for failures of this state's handlers.
func (s *State) OnError(h ErrorHandler) {
	s.observers = append(s.observers, h)
}

// OnDump registers a handler contributing to the state's snapshot data.
func (s *State) OnDump(h DumpHandler) {
	s.dumps = append(s.dumps, h)
}

// OnRestore registers a handler receiving the state's saved snapshot data.
func (s *State) OnRestore(h DumpHandler) {
	s.restores = append(s.restores, h)
}

// SetData stores a value in the state's local data bag.
func (s *State) SetData(key string, value any) {
	s.data[key] = value
}

// GetData returns the value for key, falling back to the ancestors when the
// key is not set locally.
func (s *State) GetData(key string) (any, bool) {
	for st := s; st != nil; st = st.parent {
		if v, ok := st.data[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// LocalData returns the value for key from this state's own bag only.
func (s *State) LocalData(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// DeleteData removes a key from the local data bag.
func (s *State) DeleteData(key string) {
	delete(s.data, key)
}

func (s *State) runEnter(ctx context.Context) {
	s.runHandlers(ctx, append([]Handler(nil), s.enter...))
}

func (s *State) runExit(ctx context.Context) {
	s.runHandlers(ctx, append([]Handler(nil), s.exit...))
}

func (s *State) runHandlers(ctx context.Context, handlers []Handler) {
	for _, h := range handlers {
		if err := safeCall(func() error { return h(ctx, s) }); err != nil {
			s.handleError(ctx, err)
		}
	}
}

func (s *State) runDumpHandlers(ctx context.Context, handlers []DumpHandler, data map[string]any) {
	for _, h := range handlers {
		if err := safeCall(func() error { return h(ctx, s, data) }); err != nil {
			s.handleError(ctx, err)
		}
	}
}

func (s *State) handleError(ctx context.Context, err error) {
	for _, h := range append([]ErrorHandler(nil), s.observers...) {
		if perr := safeCall(func() error { h(ctx, s, err); return nil }); perr != nil {
			s.process.logger.Error("state error handler failed", "state", s.key, "err", perr)
		}
	}
	s.process.reportError(ctx, s, err)
}

func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", domain.ErrHandlerPanic, r)
		}
	}()
	return fn()
}
