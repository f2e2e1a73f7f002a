package orchestrator

import (
	"context"
	"errors"
	"sync"
)

// LaunchFunc starts a named process whose Context is a child of parent.
type LaunchFunc func(ctx context.Context, name string, parent *Context) (*Instance, error)

// Context is the per-process view handed to stages. Values fall back to the
// parent Context, so processes started by the same launcher share its values.
type Context struct {
	name   string
	parent *Context
	launch LaunchFunc

	mu       sync.RWMutex
	values   map[string]any
	states   []string
	event    string
	instance *Instance
}

// NewContext creates a Context named after the process it will serve.
func NewContext(name string, parent *Context) *Context {
	return &Context{
		name:   name,
		parent: parent,
		values: make(map[string]any),
	}
}

// Name returns the process name.
func (c *Context) Name() string { return c.name }

// Parent returns the enclosing Context, or nil.
func (c *Context) Parent() *Context { return c.parent }

// Set stores a value in this Context.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Get looks key up in this Context, then in its parents.
func (c *Context) Get(key string) (any, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		v, ok := cur.values[key]
		cur.mu.RUnlock()
		if ok {
			return v, true
		}
	}
	return nil, false
}

// States returns the keys of the active stack, root first.
func (c *Context) States() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.states...)
}

// Event returns the event that caused the last transition.
func (c *Context) Event() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.event
}

// Instance returns the process bound to this Context, or nil.
func (c *Context) Instance() *Instance {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.instance
}

// Post queues event for the bound process without waiting.
func (c *Context) Post(event string) {
	if inst := c.Instance(); inst != nil {
		inst.Post(event)
	}
}

// Dispatch sends event to the bound process and waits for it to be applied.
// Called from a stage of the same process, it only queues the event.
func (c *Context) Dispatch(ctx context.Context, event string) error {
	inst := c.Instance()
	if inst == nil {
		return errors.New("context is not bound to a process")
	}
	return inst.Dispatch(ctx, event)
}

// Terminate stops the bound process.
func (c *Context) Terminate(ctx context.Context) error {
	inst := c.Instance()
	if inst == nil {
		return nil
	}
	return inst.Terminate(ctx)
}

// Launch starts another process as a child of this Context.
func (c *Context) Launch(ctx context.Context, name string) (*Instance, error) {
	for cur := c; cur != nil; cur = cur.parent {
		if cur.launch != nil {
			return cur.launch(ctx, name, c)
		}
	}
	return nil, errors.New("no launcher available")
}

func (c *Context) bind(inst *Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instance = inst
}

func (c *Context) setActive(states []string, event string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states = states
	c.event = event
}
