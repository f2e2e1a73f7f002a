package domain

// StateConfig is one node of the declared state tree. It is treated as
// immutable once handed to the engine.
type StateConfig struct {
	// Key identifies the state among its siblings.
	Key string `json:"key" yaml:"key"`

	// Transitions is the ordered rule list of this level. When two rules share
	// the same (from, event) pair the later one wins.
	Transitions []Transition `json:"transitions,omitempty" yaml:"transitions,omitempty"`

	// States are the nested states declared at this level. A child declared here
	// is also visible to every descendant that does not redeclare it.
	States []StateConfig `json:"states,omitempty" yaml:"states,omitempty"`
}

// Find returns the first direct child with the given key.
func (c StateConfig) Find(key string) (StateConfig, bool) {
	for _, s := range c.States {
		if s.Key == key {
			return s, true
		}
	}
	return StateConfig{}, false
}

// Walk visits the tree depth-first, parents before children. The path holds the
// keys from the root down to (and including) the visited node.
func (c StateConfig) Walk(fn func(path []string, cfg StateConfig)) {
	var walk func(path []string, cfg StateConfig)
	walk = func(path []string, cfg StateConfig) {
		path = append(path[:len(path):len(path)], cfg.Key)
		fn(path, cfg)
		for _, child := range cfg.States {
			walk(path, child)
		}
	}
	walk(nil, c)
}
