package fsm

import (
	"sort"

	"github.com/aretw0/nest/pkg/domain"
)

// Descriptor is the compiled, immutable lookup table of one configuration node.
type Descriptor struct {
	transitions map[string]map[string]string
	children    map[string]*Descriptor
}

// Build compiles a configuration tree. Later rules for the same (from, event)
// pair overwrite earlier ones.
func Build(cfg domain.StateConfig) *Descriptor {
	d := &Descriptor{
		transitions: make(map[string]map[string]string),
		children:    make(map[string]*Descriptor, len(cfg.States)),
	}
	for _, t := range cfg.Transitions {
		index, ok := d.transitions[t.From]
		if !ok {
			index = make(map[string]string)
			d.transitions[t.From] = index
		}
		index[t.Event] = t.To
	}
	for _, child := range cfg.States {
		d.children[child.Key] = Build(child)
	}
	return d
}

// Resolve returns the target of the first matching rule, trying the exact pair,
// then any-state, then any-event, then the catch-all. It returns
// domain.FinalState when nothing matches. A nil descriptor matches nothing.
func (d *Descriptor) Resolve(from, event string) string {
	if d == nil {
		return domain.FinalState
	}
	candidates := [4][2]string{
		{from, event},
		{domain.AnyState, event},
		{from, domain.AnyEvent},
		{domain.AnyState, domain.AnyEvent},
	}
	for _, c := range candidates {
		if to, ok := d.transitions[c[0]][c[1]]; ok {
			return to
		}
	}
	return domain.FinalState
}

// Child returns the descriptor declared for a nested state key.
func (d *Descriptor) Child(key string) (*Descriptor, bool) {
	if d == nil {
		return nil, false
	}
	child, ok := d.children[key]
	return child, ok
}

// Events returns the rules declared for a from-key as sorted (event, target) pairs.
func (d *Descriptor) Events(from string) []domain.Transition {
	if d == nil {
		return nil
	}
	index := d.transitions[from]
	events := make([]string, 0, len(index))
	for ev := range index {
		events = append(events, ev)
	}
	sort.Strings(events)
	rules := make([]domain.Transition, 0, len(events))
	for _, ev := range events {
		rules = append(rules, domain.T(from, ev, index[ev]))
	}
	return rules
}
