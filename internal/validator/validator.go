package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/nest/pkg/domain"
)

// Kind classifies a finding.
type Kind string

const (
	// DuplicateRule: two rules share (from, event); the last one wins.
	DuplicateRule Kind = "duplicate-rule"
	// DuplicateState: two children share a key; the last one wins.
	DuplicateState Kind = "duplicate-state"
	// UndeclaredTarget: a target is not declared by the state or any ancestor
	// and will be entered as a bare leaf.
	UndeclaredTarget Kind = "undeclared-target"
	// UnreachableState: a declared child is never the target of any rule.
	UnreachableState Kind = "unreachable-state"
	// MissingInitial: a composite state has no rule leaving its initial position.
	MissingInitial Kind = "missing-initial"
	// ReservedKey: a state uses a key with special meaning in rules.
	ReservedKey Kind = "reserved-key"
)

// Issue is one finding, located by the path of the state that owns it.
type Issue struct {
	Path    []string
	Kind    Kind
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", strings.Join(i.Path, "/"), i.Kind, i.Message)
}

// Validate walks the tree and reports suspicious declarations. None of them
// prevents the tree from running.
func Validate(cfg domain.StateConfig) []Issue {
	targets := make(map[string]bool)
	collectTargets(cfg, targets)

	var issues []Issue
	walk(cfg, nil, nil, targets, &issues)
	return issues
}

// ValidateGraph returns an error wrapping domain.ErrInvalidConfig when
// Validate reports anything.
func ValidateGraph(cfg domain.StateConfig) error {
	issues := Validate(cfg)
	if len(issues) == 0 {
		return nil
	}
	lines := make([]string, len(issues))
	for i, issue := range issues {
		lines[i] = issue.String()
	}
	return fmt.Errorf("%w: found %d issues:\n- %s", domain.ErrInvalidConfig, len(issues), strings.Join(lines, "\n- "))
}

func collectTargets(cfg domain.StateConfig, targets map[string]bool) {
	for _, t := range cfg.Transitions {
		if t.To != domain.FinalState {
			targets[t.To] = true
		}
	}
	for _, child := range cfg.States {
		collectTargets(child, targets)
	}
}

// walk visits cfg; scope holds the children declared by each ancestor.
func walk(cfg domain.StateConfig, parent []string, scope []map[string]bool, targets map[string]bool, issues *[]Issue) {
	path := append(append([]string(nil), parent...), cfg.Key)
	report := func(kind Kind, format string, args ...any) {
		*issues = append(*issues, Issue{Path: path, Kind: kind, Message: fmt.Sprintf(format, args...)})
	}

	if cfg.Key == domain.AnyState || cfg.Key == domain.AnyEvent {
		report(ReservedKey, "key %q is the wildcard", cfg.Key)
	}

	declared := make(map[string]bool, len(cfg.States))
	for _, child := range cfg.States {
		if declared[child.Key] {
			report(DuplicateState, "child %q declared twice; the last declaration wins", child.Key)
		}
		declared[child.Key] = true
	}
	scope = append(scope, declared)

	seen := make(map[[2]string]bool, len(cfg.Transitions))
	initial := false
	for _, t := range cfg.Transitions {
		pair := [2]string{t.From, t.Event}
		if seen[pair] {
			report(DuplicateRule, "rule (%q, %q) is declared more than once", t.From, t.Event)
		}
		seen[pair] = true

		if t.From == domain.InitialState || t.From == domain.AnyState {
			initial = true
		}
		if t.To != domain.FinalState && !inScope(scope, t.To) {
			report(UndeclaredTarget, "target %q is not declared", t.To)
		}
	}

	if len(cfg.States) > 0 && !initial {
		report(MissingInitial, "children are declared but no rule starts from %q or %q", domain.InitialState, domain.AnyState)
	}
	for _, child := range cfg.States {
		if !targets[child.Key] {
			*issues = append(*issues, Issue{
				Path:    append(append([]string(nil), path...), child.Key),
				Kind:    UnreachableState,
				Message: "no rule targets this state",
			})
		}
	}
	for _, child := range cfg.States {
		walk(child, path, scope, targets, issues)
	}
}

func inScope(scope []map[string]bool, key string) bool {
	for i := len(scope) - 1; i >= 0; i-- {
		if scope[i][key] {
			return true
		}
	}
	return false
}
