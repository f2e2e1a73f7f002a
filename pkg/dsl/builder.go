package dsl

import (
	"fmt"

	"github.com/aretw0/nest/pkg/domain"
)

// Builder manages the construction of one level of a state tree.
type Builder struct {
	key         string
	transitions []domain.Transition
	states      []*Builder
	index       map[string]*Builder
	errs        []error
}

// New creates a builder for a state tree rooted at key.
func New(key string) *Builder {
	return &Builder{
		key:   key,
		index: make(map[string]*Builder),
	}
}

// On adds the rule from --event--> to.
func (b *Builder) On(from, event, to string) *Builder {
	b.transitions = append(b.transitions, domain.T(from, event, to))
	return b
}

// State declares a nested state table under key and lets configure populate it.
// Calling State again with the same key extends the existing declaration.
func (b *Builder) State(key string, configure func(b *Builder)) *Builder {
	child, ok := b.index[key]
	if !ok {
		if key == domain.InitialState {
			b.errs = append(b.errs, fmt.Errorf("state under %q: empty key", b.key))
			return b
		}
		child = New(key)
		b.index[key] = child
		b.states = append(b.states, child)
	}
	if configure != nil {
		configure(child)
	}
	return b
}

// Build compiles the builder into a StateConfig.
func (b *Builder) Build() (domain.StateConfig, error) {
	if b.key == "" {
		return domain.StateConfig{}, fmt.Errorf("root state has an empty key")
	}
	return b.build()
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() domain.StateConfig {
	cfg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (b *Builder) build() (domain.StateConfig, error) {
	if len(b.errs) > 0 {
		return domain.StateConfig{}, b.errs[0]
	}
	cfg := domain.StateConfig{
		Key:         b.key,
		Transitions: append([]domain.Transition(nil), b.transitions...),
	}
	for _, child := range b.states {
		sub, err := child.build()
		if err != nil {
			return domain.StateConfig{}, fmt.Errorf("failed to build state %q: %w", b.key, err)
		}
		cfg.States = append(cfg.States, sub)
	}
	return cfg, nil
}
