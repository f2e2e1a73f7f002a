package fsm

import "github.com/aretw0/nest/pkg/domain"

// EnabledTransitions lists the rules that can fire from the active path.
//
// Levels are scanned from the innermost enclosing table outwards, looking at
// rules for the active key and for AnyState. Once an event has a rule with a
// non-final target at an inner level, outer rules for the same event are
// shadowed. The result is ordered outermost level first.
func EnabledTransitions(p *Process) []domain.Transition {
	s := p.Current()
	if s == nil {
		return nil
	}
	var levels [][]domain.Transition
	shadowed := make(map[string]bool)
	prevKey := s.key
	for parent := s.parent; parent != nil; parent = parent.parent {
		if parent.descriptor != nil {
			levels = append(levels, levelTransitions(parent.descriptor, prevKey, shadowed))
		}
		prevKey = parent.key
	}
	var result []domain.Transition
	for i := len(levels) - 1; i >= 0; i-- {
		result = append(result, levels[i]...)
	}
	return result
}

func levelTransitions(d *Descriptor, prevKey string, shadowed map[string]bool) []domain.Transition {
	var rules []domain.Transition
	for _, from := range []string{prevKey, domain.AnyState} {
		for _, rule := range d.Events(from) {
			if shadowed[rule.Event] {
				continue
			}
			if rule.To != domain.FinalState {
				shadowed[rule.Event] = true
			}
			rules = append(rules, domain.T(prevKey, rule.Event, rule.To))
		}
	}
	return rules
}

// CanDispatch reports whether event is named by an enabled rule, either
// explicitly or through an AnyEvent rule.
func CanDispatch(p *Process, event string) bool {
	for _, t := range EnabledTransitions(p) {
		if t.Event == event || t.Event == domain.AnyEvent {
			return true
		}
	}
	return false
}
