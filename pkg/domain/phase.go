package domain

import (
	"fmt"
	"strings"
)

// Phase reports where the stepping algorithm stands after a tick.
//
// The numeric values are the snapshot wire format and match the historical
// status bitmask, but the engine never relies on bit arithmetic: use Entering,
// Exiting and StopCondition instead.
type Phase int

const (
	// PhaseNone means the process has not started.
	PhaseNone Phase = 0
	// PhaseFirst means a substate was just entered one level deeper.
	PhaseFirst Phase = 1
	// PhaseNext means the current node was just replaced by a sibling.
	PhaseNext Phase = 2
	// PhaseLeaf means drilling stopped: no deeper substate for the event.
	PhaseLeaf Phase = 4
	// PhaseLast means a level was popped and the event bubbles up.
	PhaseLast Phase = 8
	// PhaseFinished means the stack is empty and the process is over.
	PhaseFinished Phase = 16
)

// Entering reports whether a node was just created and must run its enter handlers.
func (p Phase) Entering() bool {
	switch p {
	case PhaseFirst, PhaseNext:
		return true
	}
	return false
}

// Exiting reports whether the current node is about to be abandoned.
func (p Phase) Exiting() bool {
	switch p {
	case PhaseLeaf, PhaseLast:
		return true
	}
	return false
}

func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "none"
	case PhaseFirst:
		return "first"
	case PhaseNext:
		return "next"
	case PhaseLeaf:
		return "leaf"
	case PhaseLast:
		return "last"
	case PhaseFinished:
		return "finished"
	}
	return "unknown"
}

// StopCondition decides whether a dispatch returns control after a tick.
type StopCondition func(Phase) bool

// StopAt builds a StopCondition matching any of the given phases.
func StopAt(phases ...Phase) StopCondition {
	set := make(map[Phase]struct{}, len(phases))
	for _, p := range phases {
		set[p] = struct{}{}
	}
	return func(p Phase) bool {
		_, ok := set[p]
		return ok
	}
}

// StopAtLeaf is the default dispatch stop condition.
var StopAtLeaf = StopAt(PhaseLeaf)

// StopOnEnter returns control after every node entry.
var StopOnEnter = StopAt(PhaseFirst, PhaseNext)

// ParsePhases parses a comma separated list of phase names ("leaf,next").
// "enter" stands for first and next, "exit" for leaf and last. Unknown or
// missing names are an error so a typo never yields an empty stop set.
func ParsePhases(s string) ([]Phase, error) {
	var phases []Phase
	for _, name := range strings.Split(s, ",") {
		switch n := strings.TrimSpace(strings.ToLower(name)); n {
		case "first":
			phases = append(phases, PhaseFirst)
		case "next":
			phases = append(phases, PhaseNext)
		case "leaf":
			phases = append(phases, PhaseLeaf)
		case "last":
			phases = append(phases, PhaseLast)
		case "enter":
			phases = append(phases, PhaseFirst, PhaseNext)
		case "exit":
			phases = append(phases, PhaseLeaf, PhaseLast)
		case "":
			return nil, fmt.Errorf("empty phase name in %q", s)
		default:
			return nil, fmt.Errorf("unknown phase %q (want first, next, leaf, last, enter or exit)", n)
		}
	}
	return phases, nil
}
