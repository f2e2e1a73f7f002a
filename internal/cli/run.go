package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/nest"
	"github.com/aretw0/nest/internal/presentation/tui"
	"github.com/aretw0/nest/pkg/domain"
	"github.com/aretw0/nest/pkg/loader"
	"github.com/aretw0/nest/pkg/observability"
	"github.com/muesli/termenv"
)

// InterruptEvent is the event recorded when a run is cut short.
const InterruptEvent = "interrupt"

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	ConfigPath string
	StartEvent string

	// Events are dispatched in order instead of reading Input.
	Events []string
	Input  io.Reader
	Output io.Writer

	// Stop is a comma separated list of phases ending each dispatch
	// ("enter", "leaf,last"); empty dispatches down to a leaf.
	Stop string

	Interactive bool
	Strict      bool
	Trace       bool
	Color       bool
	Logger      *slog.Logger
}

// Run drives a fresh process over the configured events. The process is shut
// down when the input is exhausted so exit hooks always run.
func Run(ctx context.Context, opts RunOptions) error {
	var stop domain.StopCondition
	if opts.Stop != "" {
		phases, err := domain.ParsePhases(opts.Stop)
		if err != nil {
			return fmt.Errorf("invalid --stop: %w", err)
		}
		stop = domain.StopAt(phases...)
	}

	cfg, err := loader.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	var engineOpts []nest.Option
	if opts.Logger != nil {
		engineOpts = append(engineOpts, nest.WithLogger(opts.Logger))
	}
	engine, err := nest.New(cfg, engineOpts...)
	if err != nil {
		return err
	}

	p := engine.NewProcess()
	if opts.Trace {
		var tracerOpts []observability.TracerOption
		if opts.Color {
			tracerOpts = append(tracerOpts, observability.WithStyle(tui.TraceStyle(termenv.NewOutput(opts.Output))))
		}
		observability.NewTracer(opts.Output, tracerOpts...).Attach(p)
	}

	start := opts.StartEvent
	if start == "" {
		start = nest.DefaultStartEvent
	}
	r := &nest.Runner{
		Input:       opts.Input,
		Output:      opts.Output,
		Interactive: opts.Interactive,
		Strict:      opts.Strict,
		Stop:        stop,
	}
	if len(opts.Events) > 0 {
		err = r.RunEvents(ctx, p, start, opts.Events)
	} else {
		r.Input = NewInterruptibleReader(opts.Input, ctx.Done())
		err = r.Run(ctx, p, start)
	}

	if !p.Finished() {
		// Use a fresh context so exit hooks still run after an interrupt.
		p.Shutdown(context.WithoutCancel(ctx), InterruptEvent)
	}
	return handleExecutionError(err)
}

var errInterrupted = errors.New("interrupted")

// InterruptibleReader wraps an io.Reader (like os.Stdin) and checks for a cancellation signal.
type InterruptibleReader struct {
	base   io.Reader
	cancel <-chan struct{}
}

func NewInterruptibleReader(base io.Reader, cancel <-chan struct{}) *InterruptibleReader {
	return &InterruptibleReader{
		base:   base,
		cancel: cancel,
	}
}

func (r *InterruptibleReader) Read(p []byte) (n int, err error) {
	if r.base == nil {
		return 0, fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	// Check before blocking
	select {
	case <-r.cancel:
		return 0, errInterrupted
	default:
	}

	// Read (This blocks!)
	n, err = r.base.Read(p)

	// Check after returning
	select {
	case <-r.cancel:
		return 0, errInterrupted
	default:
	}
	return n, err
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, errInterrupted)
}

func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}
