package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/nest/pkg/domain"
	"github.com/aretw0/nest/pkg/fsm"
)

type workerKey struct{}

type request struct {
	event string
	force bool
	reply chan error
}

// Instance is a running process. Every dispatch happens on its own worker
// goroutine.
type Instance struct {
	name    string
	ctx     *Context
	process *fsm.Process
	stages  StageLoader
	logger  *slog.Logger

	mu         sync.Mutex
	queue      []request
	terminated bool
	wake       chan struct{}
	done       chan struct{}

	base     context.Context
	cancel   context.CancelFunc
	triggers sync.WaitGroup
}

// Start binds a new process for cfg to c, dispatches the start event and
// returns once it has been applied. The start event bypasses the enabled
// transition check.
func Start(ctx context.Context, c *Context, cfg domain.StateConfig, stages StageLoader, opts ...Option) (*Instance, error) {
	o := newOptions(opts)
	logger := o.logger.With("process", c.Name())

	base, cancel := context.WithCancel(context.WithoutCancel(ctx))
	i := &Instance{
		name:    c.Name(),
		ctx:     c,
		process: fsm.New(cfg, fsm.WithLogger(logger)),
		stages:  stages,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		base:    base,
		cancel:  cancel,
	}
	if i.stages == nil {
		i.stages = func(string, string) []Stage { return nil }
	}
	i.process.OnStateCreate(i.attach)
	for _, hook := range o.hooks {
		hook(c.Name(), i.process)
	}
	c.bind(i)

	go i.run()

	reply := make(chan error, 1)
	if !i.enqueue(request{event: o.startEvent, force: true, reply: reply}) {
		return nil, domain.ErrProcessTerminated
	}
	if err := i.wait(ctx, reply); err != nil {
		// The worker may still be applying the start event; unwind it so
		// no process outlives the failed call.
		_ = i.Terminate(context.WithoutCancel(ctx))
		c.bind(nil)
		return nil, err
	}
	logger.Info("process started", "path", strings.Join(c.States(), "/"))
	return i, nil
}

// Name returns the process name.
func (i *Instance) Name() string { return i.name }

// Context returns the Context bound to the process.
func (i *Instance) Context() *Context { return i.ctx }

// Done is closed once the process has finished or been terminated.
func (i *Instance) Done() <-chan struct{} { return i.done }

// Post queues event without waiting. Events that no enabled transition
// accepts are dropped.
func (i *Instance) Post(event string) {
	if !i.enqueue(request{event: event}) {
		i.logger.Debug("event ignored by terminated process", "event", event)
	}
}

// Dispatch sends event and waits until it has been applied. It returns
// domain.ErrEventNotEnabled when no enabled transition accepts the event and
// domain.ErrProcessTerminated once the process is gone. Called with the
// context handed to a stage, it only queues the event.
func (i *Instance) Dispatch(ctx context.Context, event string) error {
	if i.onWorker(ctx) {
		i.Post(event)
		return nil
	}
	reply := make(chan error, 1)
	if !i.enqueue(request{event: event, reply: reply}) {
		return domain.ErrProcessTerminated
	}
	return i.wait(ctx, reply)
}

// Terminate leaves every active state and stops the worker. Pending events
// are discarded.
func (i *Instance) Terminate(ctx context.Context) error {
	i.mu.Lock()
	i.terminated = true
	i.mu.Unlock()
	i.signal()
	if i.onWorker(ctx) {
		return nil
	}
	select {
	case <-i.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every trigger goroutine has returned.
func (i *Instance) Wait() {
	i.triggers.Wait()
}

func (i *Instance) onWorker(ctx context.Context) bool {
	return ctx != nil && ctx.Value(workerKey{}) == i
}

func (i *Instance) enqueue(req request) bool {
	i.mu.Lock()
	if i.terminated {
		i.mu.Unlock()
		return false
	}
	i.queue = append(i.queue, req)
	i.mu.Unlock()
	i.signal()
	return true
}

func (i *Instance) signal() {
	select {
	case i.wake <- struct{}{}:
	default:
	}
}

func (i *Instance) wait(ctx context.Context, reply <-chan error) error {
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-i.done:
		select {
		case err := <-reply:
			return err
		default:
			return domain.ErrProcessTerminated
		}
	}
}

// next pops the next request. stop is true once the instance was terminated.
func (i *Instance) next() (req request, ok, stop bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.terminated {
		return request{}, false, true
	}
	if len(i.queue) == 0 {
		return request{}, false, false
	}
	req = i.queue[0]
	i.queue = i.queue[1:]
	return req, true, false
}

func (i *Instance) run() {
	defer close(i.done)
	wctx := context.WithValue(i.base, workerKey{}, i)
	for range i.wake {
		for {
			req, ok, stop := i.next()
			if stop {
				i.process.Shutdown(wctx, "")
				i.logger.Info("process terminated")
				i.close()
				return
			}
			if !ok {
				break
			}
			i.apply(wctx, req)
			if i.process.Finished() {
				i.logger.Info("process finished", "event", req.event)
				i.close()
				return
			}
		}
	}
}

func (i *Instance) apply(ctx context.Context, req request) {
	var err error
	if !req.force && !fsm.CanDispatch(i.process, req.event) {
		err = fmt.Errorf("%w: %q at %s", domain.ErrEventNotEnabled, req.event, strings.Join(i.process.Path(), "/"))
		if req.reply == nil {
			i.logger.Debug("event dropped", "event", req.event, "path", strings.Join(i.process.Path(), "/"))
		}
	} else {
		i.process.Dispatch(ctx, req.event)
	}
	if req.reply != nil {
		req.reply <- err
	}
}

// close marks the instance terminated and fails whatever is still queued.
func (i *Instance) close() {
	i.mu.Lock()
	i.terminated = true
	pending := i.queue
	i.queue = nil
	i.mu.Unlock()
	for _, req := range pending {
		if req.reply != nil {
			req.reply <- domain.ErrProcessTerminated
		}
	}
	i.cancel()
}

// attach wires the Context and the registered stages to a new state.
func (i *Instance) attach(s *fsm.State) {
	s.OnEnter(func(ctx context.Context, s *fsm.State) error {
		i.ctx.setActive(s.Path(), i.process.Event())
		return i.runStages(ctx, s)
	})
	s.OnExit(func(ctx context.Context, s *fsm.State) error {
		var path []string
		if parent := s.Parent(); parent != nil {
			path = parent.Path()
		}
		i.ctx.setActive(path, i.process.Event())
		return nil
	})
}

func (i *Instance) runStages(ctx context.Context, s *fsm.State) error {
	var errs []error
	for _, stage := range i.stages(s.Key(), i.process.Event()) {
		if stage.Handle != nil {
			cleanup, err := stage.Handle(ctx, i.ctx)
			if err != nil {
				errs = append(errs, err)
			}
			if cleanup != nil {
				s.OnExit(func(ctx context.Context, _ *fsm.State) error {
					return cleanup(ctx)
				})
			}
		}
		if stage.Trigger != nil {
			i.startTrigger(s, stage.Trigger)
		}
	}
	return errors.Join(errs...)
}

func (i *Instance) startTrigger(s *fsm.State, trigger func(context.Context, *Context, chan<- string) error) {
	tctx, cancel := context.WithCancel(i.base)
	s.OnExit(func(context.Context, *fsm.State) error {
		cancel()
		return nil
	})

	key := s.Key()
	events := make(chan string)
	i.triggers.Add(2)
	go func() {
		defer i.triggers.Done()
		defer close(events)
		defer func() {
			if r := recover(); r != nil {
				i.logger.Error("trigger panicked", "state", key, "err", fmt.Errorf("%w: %v", domain.ErrHandlerPanic, r))
			}
		}()
		if err := trigger(tctx, i.ctx, events); err != nil && !errors.Is(err, context.Canceled) {
			i.logger.Warn("trigger failed", "state", key, "err", err)
		}
	}()
	go func() {
		defer i.triggers.Done()
		for event := range events {
			if tctx.Err() != nil {
				continue
			}
			i.Post(event)
		}
	}()
}
