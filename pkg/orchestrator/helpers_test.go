package orchestrator_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/nest/pkg/domain"
	"github.com/aretw0/nest/pkg/orchestrator"
)

var T = domain.T

func selectionConfig() domain.StateConfig {
	return domain.StateConfig{
		Key: "Selection",
		Transitions: []domain.Transition{
			T("*", "exit", ""),
			T("*", "*", "Wait"),
			T("Wait", "select", "Selected"),
			T("*", "error", "HandleError"),
			T("HandleError", "ok", "Wait"),
		},
		States: []domain.StateConfig{{
			Key: "Selected",
			Transitions: []domain.Transition{
				T("", "*", "Wait"),
				T("Wait", "select", "UpdateSelection"),
				T("UpdateSelection", "error", ""),
				T("UpdateSelection", "select", "Wait"),
			},
		}},
	}
}

// stepsConfig walks A -> B -> "" on "next".
func stepsConfig() domain.StateConfig {
	return domain.StateConfig{
		Key: "ROOT",
		Transitions: []domain.Transition{
			T("", "*", "A"),
			T("A", "next", "B"),
			T("B", "next", ""),
		},
	}
}

// recorder renders enter/exit traces indented by stack depth.
type recorder struct {
	mu     sync.Mutex
	traces []string
}

func (r *recorder) stage() orchestrator.Stage {
	return orchestrator.HandleWithCleanup(func(ctx context.Context, c *orchestrator.Context) (orchestrator.Cleanup, error) {
		states := c.States()
		state := states[len(states)-1]
		prefix := strings.Repeat("  ", len(states)-1)
		r.add(fmt.Sprintf("%s<%s event=%q>", prefix, state, c.Event()))
		return func(context.Context) error {
			r.add(fmt.Sprintf("%s</%s>", prefix, state))
			return nil
		}, nil
	})
}

func (r *recorder) add(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.traces = append(r.traces, line)
}

func (r *recorder) lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.traces...)
}

// everyState applies the same stages to every state.
func everyState(stages ...orchestrator.Stage) orchestrator.StageLoader {
	return func(string, string) []orchestrator.Stage { return stages }
}
