package nest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/nest/pkg/domain"
	"github.com/aretw0/nest/pkg/fsm"
)

// Runner feeds events to a process from a line-oriented input and reports the
// active path after each one. This allows for easy testing and integration
// with different frontends.
type Runner struct {
	Input  io.Reader
	Output io.Writer

	// Interactive prints a prompt before reading each event.
	Interactive bool

	// Strict rejects events that no enabled transition accepts instead of
	// dispatching them.
	Strict bool

	// Stop ends each dispatch early, e.g. after every entry. The phase reached
	// is printed next to the path. Nil dispatches down to a leaf.
	Stop domain.StopCondition
}

// Run dispatches start, then every non-empty input line that does not start
// with '#', until the input ends, ctx is done or the process finishes.
func (r *Runner) Run(ctx context.Context, p *fsm.Process, start string) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if !r.step(ctx, p, start, false) {
		return nil
	}

	scanner := bufio.NewScanner(r.Input)
	for {
		if r.Interactive {
			fmt.Fprint(r.output(), "> ")
		}
		if !scanner.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		event := strings.TrimSpace(scanner.Text())
		if event == "" || strings.HasPrefix(event, "#") {
			continue
		}
		if !r.step(ctx, p, event, r.Strict) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}
	return ctx.Err()
}

// RunEvents is like Run with a fixed list of events after start.
func (r *Runner) RunEvents(ctx context.Context, p *fsm.Process, start string, events []string) error {
	if !r.step(ctx, p, start, false) {
		return nil
	}
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.step(ctx, p, event, r.Strict) {
			return nil
		}
	}
	return nil
}

// step applies one event and reports whether the process is still running.
func (r *Runner) step(ctx context.Context, p *fsm.Process, event string, strict bool) bool {
	w := r.output()
	if strict && !fsm.CanDispatch(p, event) {
		fmt.Fprintf(w, "! event %q is not enabled at %s\n", event, strings.Join(p.Path(), "/"))
		return true
	}
	if !p.DispatchUntil(ctx, event, r.Stop) {
		fmt.Fprintln(w, "= finished")
		return false
	}
	if r.Stop != nil {
		fmt.Fprintf(w, "= %s [%s]\n", strings.Join(p.Path(), "/"), p.Phase())
		return true
	}
	fmt.Fprintf(w, "= %s\n", strings.Join(p.Path(), "/"))
	return true
}

func (r *Runner) output() io.Writer {
	if r.Output == nil {
		return io.Discard
	}
	return r.Output
}
