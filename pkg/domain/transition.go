package domain

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Transition is a single rule of a state's transition table.
// On the wire it is the three-element array [from, event, to].
type Transition struct {
	From  string
	Event string
	To    string
}

// T is shorthand for building a Transition.
func T(from, event, to string) Transition {
	return Transition{From: from, Event: event, To: to}
}

func (t Transition) String() string {
	return fmt.Sprintf("[%q, %q, %q]", t.From, t.Event, t.To)
}

// MarshalJSON encodes the rule as [from, event, to].
func (t Transition) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]string{t.From, t.Event, t.To})
}

// UnmarshalJSON decodes a [from, event, to] array.
func (t *Transition) UnmarshalJSON(data []byte) error {
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("transition must be an array of strings: %w", err)
	}
	return t.fromParts(parts)
}

// MarshalYAML encodes the rule as a flow sequence.
func (t Transition) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, part := range []string{t.From, t.Event, t.To} {
		node.Content = append(node.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: part,
			Style: yaml.DoubleQuotedStyle,
		})
	}
	return node, nil
}

// UnmarshalYAML decodes a [from, event, to] sequence.
func (t *Transition) UnmarshalYAML(value *yaml.Node) error {
	var parts []string
	if err := value.Decode(&parts); err != nil {
		return fmt.Errorf("line %d: transition must be a sequence of strings: %w", value.Line, err)
	}
	return t.fromParts(parts)
}

func (t *Transition) fromParts(parts []string) error {
	if len(parts) != 3 {
		return fmt.Errorf("%w: expected [from, event, to], got %d elements", ErrInvalidTransition, len(parts))
	}
	t.From, t.Event, t.To = parts[0], parts[1], parts[2]
	return nil
}
