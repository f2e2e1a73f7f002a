package memory

import (
	"fmt"
	"sort"

	"github.com/aretw0/nest/pkg/domain"
)

// Loader implements ports.ConfigLoader using an in-memory map.
type Loader struct {
	configs map[string]domain.StateConfig
}

// NewLoader creates a loader serving the given trees by name.
func NewLoader(configs map[string]domain.StateConfig) *Loader {
	copied := make(map[string]domain.StateConfig, len(configs))
	for k, v := range configs {
		copied[k] = v
	}
	return &Loader{configs: copied}
}

// Config returns the tree registered under name.
func (l *Loader) Config(name string) (domain.StateConfig, error) {
	cfg, ok := l.configs[name]
	if !ok {
		return domain.StateConfig{}, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, name)
	}
	return cfg, nil
}

// Names returns all available tree names.
func (l *Loader) Names() []string {
	keys := make([]string, 0, len(l.configs))
	for k := range l.configs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys
}
