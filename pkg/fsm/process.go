package fsm

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aretw0/nest/internal/logging"
	"github.com/aretw0/nest/pkg/domain"
)

// CreateHook is called synchronously whenever a State is materialized, before
// its enter handlers run. It is the seam used to attach per-state behavior.
type CreateHook func(s *State)

// Process drives the live stack of a state tree.
type Process struct {
	config  domain.StateConfig
	root    *Descriptor
	current *State
	event   string
	phase   domain.Phase

	createHooks hookList[CreateHook]
	errorHooks  hookList[ErrorHandler]

	logger *slog.Logger
}

// Option configures a Process.
type Option func(*Process)

// WithLogger sets the logger used to report handler failures and dispatch traces.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Process) {
		p.logger = logger
	}
}

// WithDescriptor reuses an already compiled descriptor instead of compiling cfg.
// The descriptor must have been built from the same configuration.
func WithDescriptor(d *Descriptor) Option {
	return func(p *Process) {
		p.root = d
	}
}

// New creates a process for the given state tree. Nothing is entered until the
// first Dispatch.
func New(cfg domain.StateConfig, opts ...Option) *Process {
	p := &Process{
		config: cfg,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.root == nil {
		p.root = Build(cfg)
	}
	return p
}

// Config returns the configuration the process was built from.
func (p *Process) Config() domain.StateConfig { return p.config }

// Descriptor returns the compiled root descriptor.
func (p *Process) Descriptor() *Descriptor { return p.root }

// Current returns the active leaf-most state, or nil.
func (p *Process) Current() *State { return p.current }

// Event returns the last dispatched event.
func (p *Process) Event() string { return p.event }

// Phase returns the phase reached by the last tick.
func (p *Process) Phase() domain.Phase { return p.phase }

// Finished reports whether the stack has been fully unwound.
func (p *Process) Finished() bool { return p.phase == domain.PhaseFinished }

// Path returns the keys of the active stack, root first.
func (p *Process) Path() []string {
	if p.current == nil {
		return nil
	}
	return p.current.Path()
}

// OnStateCreate registers a hook fired for every materialized state.
// The returned function unregisters it.
func (p *Process) OnStateCreate(h CreateHook) func() {
	return p.createHooks.add(h)
}

// OnStateError registers a process-wide observer of handler failures.
// The returned function unregisters it.
func (p *Process) OnStateError(h ErrorHandler) func() {
	return p.errorHooks.add(h)
}

// Dispatch applies event until a leaf is reached. It returns false once the
// process has finished.
func (p *Process) Dispatch(ctx context.Context, event string) bool {
	return p.DispatchUntil(ctx, event, domain.StopAtLeaf)
}

// DispatchUntil applies event tick after tick until stop matches the phase
// reached, or the stack empties (returns false). The same event is seen by
// every tick, so one call can enter a whole chain of default substates.
func (p *Process) DispatchUntil(ctx context.Context, event string, stop domain.StopCondition) bool {
	if stop == nil {
		stop = domain.StopAtLeaf
	}
	p.event = event
	for {
		if p.phase.Exiting() && p.current != nil {
			p.current.runExit(ctx)
		}
		if !p.step() {
			p.logger.Debug("process finished", "event", event)
			return false
		}
		if p.phase.Entering() {
			p.current.runEnter(ctx)
		}
		if stop(p.phase) {
			p.logger.Debug("dispatch stopped",
				"event", event,
				"phase", p.phase.String(),
				"path", strings.Join(p.Path(), "/"),
			)
			return true
		}
	}
}

// Shutdown leaves every active state, leaf first, ignoring the transition
// table, and marks the process finished. Exit handlers observe PhaseFinished.
func (p *Process) Shutdown(ctx context.Context, event string) {
	p.event = event
	p.phase = domain.PhaseFinished
	for p.current != nil {
		p.current.runExit(ctx)
		p.current = p.current.parent
	}
}

// step performs the node-selection part of one tick.
func (p *Process) step() bool {
	if p.phase == domain.PhaseFinished {
		return false
	}
	if p.phase != domain.PhaseNone && p.current == nil {
		p.phase = domain.PhaseFinished
		return false
	}

	var next *State
	switch {
	case p.phase == domain.PhaseNone:
		next = p.newState(nil, p.config.Key, p.root)
	case p.phase.Entering():
		next = p.substate(p.current, domain.InitialState)
	default:
		next = p.substate(p.current.parent, p.current.key)
	}

	exiting := p.phase.Exiting()
	if next != nil {
		p.current = next
		if exiting {
			p.phase = domain.PhaseNext
		} else {
			p.phase = domain.PhaseFirst
		}
	} else {
		if exiting {
			p.current = p.current.parent
			p.phase = domain.PhaseLast
		} else {
			p.phase = domain.PhaseLeaf
		}
		if p.current == nil {
			p.phase = domain.PhaseFinished
		}
	}
	return p.phase != domain.PhaseFinished
}

// substate resolves the key that follows prevKey under parent for the current
// event and materializes it.
func (p *Process) substate(parent *State, prevKey string) *State {
	if parent == nil {
		return nil
	}
	to := parent.descriptor.Resolve(prevKey, p.event)
	if to == domain.FinalState {
		return nil
	}
	return p.newSubstate(parent, to)
}

// newSubstate creates key under parent, taking the descriptor from the nearest
// ancestor (starting at parent) that declares key.
func (p *Process) newSubstate(parent *State, key string) *State {
	var d *Descriptor
	for st := parent; st != nil; st = st.parent {
		if child, ok := st.descriptor.Child(key); ok {
			d = child
			break
		}
	}
	return p.newState(parent, key, d)
}

func (p *Process) newState(parent *State, key string, d *Descriptor) *State {
	s := newState(p, parent, key, d)
	for _, h := range p.createHooks.list() {
		if err := safeCall(func() error { h(s); return nil }); err != nil {
			p.reportError(context.Background(), s, err)
		}
	}
	return s
}

func (p *Process) reportError(ctx context.Context, s *State, err error) {
	for _, h := range p.errorHooks.list() {
		if perr := safeCall(func() error { h(ctx, s, err); return nil }); perr != nil {
			p.logger.Error("process error hook failed", "state", s.key, "err", perr)
		}
	}
	p.logger.Error("state handler failed",
		"state", s.key,
		"path", strings.Join(s.Path(), "/"),
		"event", p.event,
		"err", err,
	)
}
