package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/nest/pkg/adapters/memory"
	"github.com/aretw0/nest/pkg/loader"
)

// Launcher starts processes registered in a Registry.
type Launcher struct {
	registry *Registry
	opts     []Option
	root     *Context

	mu        sync.Mutex
	instances []*Instance
}

// NewLauncher creates a launcher over reg. Options are passed to every instance.
func NewLauncher(reg *Registry, opts ...Option) *Launcher {
	l := &Launcher{
		registry: reg,
		opts:     opts,
		root:     NewContext("", nil),
	}
	l.root.launch = l.Launch
	return l
}

// Registry returns the registry processes are resolved from.
func (l *Launcher) Registry() *Registry { return l.registry }

// Context returns the root Context shared by every launched process.
func (l *Launcher) Context() *Context { return l.root }

// Launch starts the named process with a Context child of parent, or of the
// root Context when parent is nil.
func (l *Launcher) Launch(ctx context.Context, name string, parent *Context) (*Instance, error) {
	if parent == nil {
		parent = l.root
	}
	c := NewContext(name, parent)
	inst, err := Start(ctx, c, l.registry.ProcessConfig(name), l.registry.Loader(name), l.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to launch %q: %w", name, err)
	}
	l.mu.Lock()
	l.instances = append(l.instances, inst)
	l.mu.Unlock()
	return inst, nil
}

// Run registers the trees of m and launches its start list under a Context
// holding m.Context. The returned function terminates everything launched
// and unregisters the trees of m.
func (l *Launcher) Run(ctx context.Context, m *loader.Manifest) (func(context.Context) error, error) {
	undo, err := l.registry.Import(memory.NewLoader(m.Configs()))
	if err != nil {
		return nil, err
	}
	shutdown := func(ctx context.Context) error {
		defer undo()
		return l.Shutdown(ctx)
	}
	shared := NewContext("", l.root)
	for k, v := range m.Context {
		shared.Set(k, v)
	}
	for _, name := range m.Start {
		if _, err := l.Launch(ctx, name, shared); err != nil {
			return nil, errors.Join(err, shutdown(context.WithoutCancel(ctx)))
		}
	}
	return shutdown, nil
}

// Instances returns the processes launched so far, in launch order.
func (l *Launcher) Instances() []*Instance {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Instance(nil), l.instances...)
}

// Shutdown terminates every launched process, most recent first.
func (l *Launcher) Shutdown(ctx context.Context) error {
	l.mu.Lock()
	instances := l.instances
	l.instances = nil
	l.mu.Unlock()

	var errs []error
	for idx := len(instances) - 1; idx >= 0; idx-- {
		if err := instances[idx].Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to terminate %q: %w", instances[idx].Name(), err))
		}
	}
	return errors.Join(errs...)
}
