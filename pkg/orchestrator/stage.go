package orchestrator

import "context"

// Cleanup releases what a Handle stage acquired. It runs when the state exits.
type Cleanup func(ctx context.Context) error

// Stage is one unit of business logic attached to a state.
type Stage struct {
	// Handle runs when the state is entered.
	Handle func(ctx context.Context, c *Context) (Cleanup, error)

	// Trigger runs in its own goroutine while the state is active and sends
	// events on the channel. Its context is cancelled when the state exits;
	// the channel is closed after Trigger returns.
	Trigger func(ctx context.Context, c *Context, events chan<- string) error
}

// Handle builds a stage from an enter handler without cleanup.
func Handle(fn func(ctx context.Context, c *Context) error) Stage {
	return Stage{Handle: func(ctx context.Context, c *Context) (Cleanup, error) {
		return nil, fn(ctx, c)
	}}
}

// HandleWithCleanup builds a stage from an enter handler returning its cleanup.
func HandleWithCleanup(fn func(ctx context.Context, c *Context) (Cleanup, error)) Stage {
	return Stage{Handle: fn}
}

// Trigger builds a stage from an event source.
func Trigger(fn func(ctx context.Context, c *Context, events chan<- string) error) Stage {
	return Stage{Trigger: fn}
}

// Module maps handler names to stages. Stages under AnyName apply to every state.
type Module map[string][]Stage

// AnyName is the Module key of stages applied to every state of a process.
const AnyName = "*"

// DefaultName is the Module key of stages applied to the root state only.
const DefaultName = "default"

// handlerSuffixes are appended to a state key to build the names looked up in modules.
var handlerSuffixes = []string{
	"",
	"Controller",
	"StateController",
	"View",
	"StateView",
	"Trigger",
	"StateTrigger",
	"Test",
	"StateTest",
}

// HandlerNames returns the module names consulted for stateKey, in order.
func HandlerNames(stateKey string, root bool) []string {
	names := make([]string, 0, len(handlerSuffixes)+1)
	if root {
		names = append(names, DefaultName)
	}
	for _, suffix := range handlerSuffixes {
		names = append(names, stateKey+suffix)
	}
	return names
}
