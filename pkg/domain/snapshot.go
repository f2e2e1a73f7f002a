package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// StateDump is the saved form of one live node.
type StateDump struct {
	Key  string         `json:"key" yaml:"key"`
	Data map[string]any `json:"data" yaml:"data"`
}

// Decode copies the dumped data bag into out (a pointer to a struct or map).
// Field names match case-insensitively, or through `json` tags.
// Numeric values that went through JSON are converted to the target type.
func (d StateDump) Decode(out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(d.Data); err != nil {
		return fmt.Errorf("failed to decode data of state %q: %w", d.Key, err)
	}
	return nil
}

// Snapshot captures the live stack of a process, root first.
type Snapshot struct {
	Status Phase       `json:"status" yaml:"status"`
	Event  string      `json:"event,omitempty" yaml:"event,omitempty"`
	Stack  []StateDump `json:"stack" yaml:"stack"`
}

// Path returns the keys of the saved stack, root first.
func (s *Snapshot) Path() []string {
	path := make([]string, 0, len(s.Stack))
	for _, d := range s.Stack {
		path = append(path, d.Key)
	}
	return path
}

// Clone returns a copy that does not share the stack or the top level of each data bag.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{Status: s.Status, Event: s.Event, Stack: make([]StateDump, len(s.Stack))}
	for i, d := range s.Stack {
		data := make(map[string]any, len(d.Data))
		for k, v := range d.Data {
			data[k] = v
		}
		c.Stack[i] = StateDump{Key: d.Key, Data: data}
	}
	return c
}
