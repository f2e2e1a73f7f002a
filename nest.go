package nest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/nest/internal/logging"
	"github.com/aretw0/nest/pkg/adapters/memory"
	"github.com/aretw0/nest/pkg/domain"
	"github.com/aretw0/nest/pkg/fsm"
	"github.com/aretw0/nest/pkg/observability"
	"github.com/aretw0/nest/pkg/ports"
	"github.com/aretw0/nest/pkg/session"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultStartEvent is dispatched when a session starts.
const DefaultStartEvent = "start"

// Dispatch outcomes reported to metrics.
const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// Engine serves one state tree as persistent sessions. No process is kept in
// memory between calls: each call locks the session, restores a fresh process
// from its snapshot, acts on it and saves the result.
type Engine struct {
	config     domain.StateConfig
	descriptor *fsm.Descriptor

	store      ports.SnapshotStore
	locker     ports.DistributedLocker
	lockTTL    time.Duration
	sessions   *session.Manager
	logger     *slog.Logger
	metrics    *observability.Metrics
	tracer     trace.Tracer
	hooks      []func(p *fsm.Process)
	startEvent string
}

var _ ports.SessionEngine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets where session snapshots are kept (default: in memory).
func WithStore(store ports.SnapshotStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables distributed locking of sessions.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockTTL = ttl
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics records state and dispatch metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithTracerProvider emits one span per Start or Dispatch call.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		e.tracer = tp.Tracer("github.com/aretw0/nest")
	}
}

// WithProcessHook runs fn on every process the engine creates, before it is
// restored or dispatched. The process is discarded when the call returns, so
// hooks must not expect states to be exited later (observability.Spans would
// leave spans open); use WithTracerProvider for per-call spans.
func WithProcessHook(fn func(p *fsm.Process)) Option {
	return func(e *Engine) {
		e.hooks = append(e.hooks, fn)
	}
}

// WithStartEvent overrides DefaultStartEvent.
func WithStartEvent(event string) Option {
	return func(e *Engine) {
		e.startEvent = event
	}
}

// New creates an engine for cfg.
func New(cfg domain.StateConfig, opts ...Option) (*Engine, error) {
	if cfg.Key == "" {
		return nil, fmt.Errorf("%w: root state has no key", domain.ErrInvalidConfig)
	}
	e := &Engine{
		config:     cfg,
		descriptor: fsm.Build(cfg),
		lockTTL:    session.DefaultLockTTL,
		startEvent: DefaultStartEvent,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	e.logger = e.logger.With("machine", cfg.Key)
	if e.store == nil {
		e.store = memory.NewStore()
	}

	sessionOpts := []session.Option{
		session.WithLogger(e.logger),
		session.WithLockTTL(e.lockTTL),
	}
	if e.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(e.locker))
	}
	e.sessions = session.NewManager(e.store, sessionOpts...)
	return e, nil
}

// NewProcess creates a process for the engine's tree with the engine's
// logging, metrics and hooks attached.
func (e *Engine) NewProcess() *fsm.Process {
	p := fsm.New(e.config, fsm.WithDescriptor(e.descriptor), fsm.WithLogger(e.logger))
	observability.LogHooks(p, e.logger)
	if e.metrics != nil {
		e.metrics.Instrument(p)
	}
	for _, hook := range e.hooks {
		hook(p)
	}
	return p
}

// Start creates a session and enters the tree with the start event. An empty
// id generates one.
func (e *Engine) Start(ctx context.Context, id string) (*domain.SessionInfo, error) {
	if id == "" {
		id = uuid.NewString()
	}
	var info *domain.SessionInfo
	err := e.observe(ctx, "nest.start", id, e.startEvent, func(ctx context.Context) error {
		return e.sessions.WithLock(ctx, id, func(ctx context.Context) error {
			p := e.NewProcess()
			found, err := e.sessions.Resume(ctx, id, p)
			if err != nil {
				return err
			}
			if found {
				return fmt.Errorf("%w: %s", domain.ErrSessionExists, id)
			}
			p.Dispatch(ctx, e.startEvent)
			snap, err := e.sessions.Checkpoint(ctx, id, p)
			if err != nil {
				return err
			}
			info = domain.NewSessionInfo(id, snap)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("session started", "session_id", id, "path", strings.Join(info.Path, "/"))
	return info, nil
}

// Dispatch applies event to a stored session. It fails with
// domain.ErrEventNotEnabled, leaving the session untouched, when no enabled
// transition accepts the event.
func (e *Engine) Dispatch(ctx context.Context, id, event string) (*domain.SessionInfo, error) {
	var info *domain.SessionInfo
	err := e.observe(ctx, "nest.dispatch", id, event, func(ctx context.Context) error {
		return e.sessions.WithLock(ctx, id, func(ctx context.Context) error {
			p, err := e.resume(ctx, id)
			if err != nil {
				return err
			}
			if p.Finished() {
				return fmt.Errorf("%w: %s", domain.ErrProcessTerminated, id)
			}
			if !fsm.CanDispatch(p, event) {
				return fmt.Errorf("%w: %q at %s", domain.ErrEventNotEnabled, event, strings.Join(p.Path(), "/"))
			}
			p.Dispatch(ctx, event)
			snap, err := e.sessions.Checkpoint(ctx, id, p)
			if err != nil {
				return err
			}
			info = domain.NewSessionInfo(id, snap)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	e.logger.Debug("event dispatched", "session_id", id, "event", event, "path", strings.Join(info.Path, "/"))
	return info, nil
}

// Snapshot returns the stored view of a session.
func (e *Engine) Snapshot(ctx context.Context, id string) (*domain.SessionInfo, error) {
	snap, err := e.sessions.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.NewSessionInfo(id, snap), nil
}

// Transitions lists the rules enabled from the session's active path.
func (e *Engine) Transitions(ctx context.Context, id string) ([]domain.Transition, error) {
	var out []domain.Transition
	err := e.sessions.WithLock(ctx, id, func(ctx context.Context) error {
		p, err := e.resume(ctx, id)
		if err != nil {
			return err
		}
		out = fsm.EnabledTransitions(p)
		return nil
	})
	return out, err
}

// Terminate runs the exit handlers of every active state and deletes the session.
func (e *Engine) Terminate(ctx context.Context, id string) error {
	err := e.sessions.WithLock(ctx, id, func(ctx context.Context) error {
		p, err := e.resume(ctx, id)
		if err != nil {
			return err
		}
		p.Shutdown(ctx, "")
		return e.store.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	e.logger.Info("session terminated", "session_id", id)
	return nil
}

// List returns the IDs of the stored sessions.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// Inspect returns the state tree served by the engine.
func (e *Engine) Inspect() domain.StateConfig {
	return e.config
}

// Sessions returns the session manager backing the engine.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

func (e *Engine) resume(ctx context.Context, id string) (*fsm.Process, error) {
	p := e.NewProcess()
	found, err := e.sessions.Resume(ctx, id, p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", domain.ErrSnapshotNotFound, id)
	}
	return p, nil
}

// observe runs fn inside a span and records its duration by outcome.
func (e *Engine) observe(ctx context.Context, name, id, event string, fn func(context.Context) error) error {
	var span trace.Span
	if e.tracer != nil {
		ctx, span = e.tracer.Start(ctx, name, trace.WithAttributes(
			attribute.String("nest.session_id", id),
			attribute.String("nest.event", event),
		))
		defer span.End()
	}

	started := time.Now()
	err := fn(ctx)

	outcome := outcomeOK
	switch {
	case errors.Is(err, domain.ErrEventNotEnabled), errors.Is(err, domain.ErrProcessTerminated):
		outcome = outcomeRejected
	case err != nil:
		outcome = outcomeError
	}
	if e.metrics != nil {
		e.metrics.ObserveDispatch(outcome, time.Since(started))
	}
	if span != nil {
		span.SetAttributes(attribute.String("nest.outcome", outcome))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
	return err
}
