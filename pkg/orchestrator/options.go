package orchestrator

import (
	"log/slog"

	"github.com/aretw0/nest/internal/logging"
	"github.com/aretw0/nest/pkg/fsm"
)

// DefaultStartEvent is dispatched to every process when it starts.
const DefaultStartEvent = "start"

type options struct {
	logger     *slog.Logger
	startEvent string
	hooks      []func(name string, p *fsm.Process)
}

func newOptions(opts []Option) options {
	o := options{
		logger:     logging.NewNop(),
		startEvent: DefaultStartEvent,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures instances and launchers.
type Option func(*options)

// WithLogger sets the logger for processes and their triggers.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStartEvent overrides DefaultStartEvent.
func WithStartEvent(event string) Option {
	return func(o *options) {
		o.startEvent = event
	}
}

// WithProcessHook runs fn on every process before its start event, typically
// to attach tracers or metrics.
func WithProcessHook(fn func(name string, p *fsm.Process)) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, fn)
	}
}
