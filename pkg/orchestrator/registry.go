package orchestrator

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/nest/pkg/domain"
	"github.com/aretw0/nest/pkg/ports"
)

// DefaultRootKey is the root key of a process registered without configuration.
const DefaultRootKey = "Main"

// StageLoader returns the stages to run when stateKey is entered on event.
type StageLoader func(stateKey, event string) []Stage

type moduleSet struct {
	modules []Module
}

// Registry holds named process configurations and handler modules.
// It implements ports.ConfigLoader. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	configs  map[string]domain.StateConfig
	handlers map[string][]*moduleSet
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		configs:  make(map[string]domain.StateConfig),
		handlers: make(map[string][]*moduleSet),
	}
}

// RegisterConfig sets the state tree of a process. The returned function removes it.
func (r *Registry) RegisterConfig(name string, cfg domain.StateConfig) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[name] = cfg
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.configs, name)
	}
}

// Import registers every tree served by loader. The returned function removes them.
func (r *Registry) Import(loader ports.ConfigLoader) (func(), error) {
	var removers []func()
	undo := func() {
		for _, remove := range removers {
			remove()
		}
	}
	for _, name := range loader.Names() {
		cfg, err := loader.Config(name)
		if err != nil {
			undo()
			return nil, fmt.Errorf("failed to import %q: %w", name, err)
		}
		removers = append(removers, r.RegisterConfig(name, cfg))
	}
	return undo, nil
}

// RegisterHandlers appends handler modules to a process. The returned function
// removes exactly these modules.
func (r *Registry) RegisterHandlers(name string, modules ...Module) func() {
	set := &moduleSet{modules: modules}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = append(r.handlers[name], set)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		list := r.handlers[name]
		for i, s := range list {
			if s == set {
				list = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(list) == 0 {
			delete(r.handlers, name)
		} else {
			r.handlers[name] = list
		}
	}
}

// Config returns the state tree registered under name.
func (r *Registry) Config(name string) (domain.StateConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[name]
	if !ok {
		return domain.StateConfig{}, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, name)
	}
	return cfg, nil
}

// ProcessConfig is like Config but falls back to a bare root state, so that a
// process made only of handlers can still run.
func (r *Registry) ProcessConfig(name string) domain.StateConfig {
	cfg, err := r.Config(name)
	if err != nil {
		return domain.StateConfig{Key: DefaultRootKey}
	}
	return cfg
}

// Names lists the registered configurations, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stages resolves the stages of stateKey in process. Modules are visited in
// registration order; within a module, AnyName stages come first, then the
// names of HandlerNames in order.
func (r *Registry) Stages(process, stateKey string) []Stage {
	root := r.ProcessConfig(process).Key
	names := HandlerNames(stateKey, stateKey == root)

	r.mu.RLock()
	defer r.mu.RUnlock()
	var stages []Stage
	for _, set := range r.handlers[process] {
		for _, m := range set.modules {
			stages = append(stages, m[AnyName]...)
			for _, name := range names {
				stages = append(stages, m[name]...)
			}
		}
	}
	return stages
}

// Loader returns a StageLoader bound to process.
func (r *Registry) Loader(process string) StageLoader {
	return func(stateKey, event string) []Stage {
		return r.Stages(process, stateKey)
	}
}
