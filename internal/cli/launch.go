package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/nest/internal/presentation/tui"
	"github.com/aretw0/nest/pkg/fsm"
	"github.com/aretw0/nest/pkg/loader"
	"github.com/aretw0/nest/pkg/observability"
	"github.com/aretw0/nest/pkg/orchestrator"
	"github.com/muesli/termenv"
)

// LaunchOptions contains the configuration for the launch command.
type LaunchOptions struct {
	ManifestPath string
	Input        io.Reader
	Output       io.Writer
	Trace        bool
	Color        bool
	Logger       *slog.Logger
}

// Launch starts the processes of a manifest and routes input lines of the
// form "<process> <event>" to them. A line with a single word goes to the
// first process of the start list. Everything is terminated when the input
// ends or ctx is done.
func Launch(ctx context.Context, opts LaunchOptions) error {
	m, err := loader.LoadManifest(opts.ManifestPath)
	if err != nil {
		return err
	}
	if len(m.Start) == 0 {
		return fmt.Errorf("manifest %s starts no process", opts.ManifestPath)
	}

	var launchOpts []orchestrator.Option
	if opts.Logger != nil {
		launchOpts = append(launchOpts, orchestrator.WithLogger(opts.Logger))
	}
	if opts.Trace {
		var style observability.Styler
		if opts.Color {
			style = tui.TraceStyle(termenv.NewOutput(opts.Output))
		}
		launchOpts = append(launchOpts, orchestrator.WithProcessHook(func(name string, p *fsm.Process) {
			tracerOpts := []observability.TracerOption{observability.WithPrefix("[" + name + "] ")}
			if style != nil {
				tracerOpts = append(tracerOpts, observability.WithStyle(style))
			}
			observability.NewTracer(opts.Output, tracerOpts...).Attach(p)
		}))
	}

	launcher := orchestrator.NewLauncher(orchestrator.NewRegistry(), launchOpts...)
	shutdown, err := launcher.Run(ctx, m)
	if err != nil {
		return err
	}
	defer func() {
		_ = shutdown(context.WithoutCancel(ctx))
	}()

	scanner := bufio.NewScanner(NewInterruptibleReader(opts.Input, ctx.Done()))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, event := m.Start[0], line
		if fields := strings.Fields(line); len(fields) == 2 {
			name, event = fields[0], fields[1]
		}
		inst := find(launcher.Instances(), name)
		if inst == nil {
			fmt.Fprintf(opts.Output, "! process %q is not running\n", name)
			continue
		}
		if err := inst.Dispatch(ctx, event); err != nil {
			fmt.Fprintf(opts.Output, "! %s: %v\n", name, err)
			continue
		}
		fmt.Fprintf(opts.Output, "= %s: %s\n", name, strings.Join(inst.Context().States(), "/"))
	}
	return handleExecutionError(scanner.Err())
}

func find(instances []*orchestrator.Instance, name string) *orchestrator.Instance {
	for _, inst := range instances {
		if inst.Name() == name {
			return inst
		}
	}
	return nil
}
