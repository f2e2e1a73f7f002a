package main

import (
	"fmt"
	"os"

	"github.com/aretw0/nest/internal/cli"
	"github.com/aretw0/nest/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run [events...]",
	Short: "Drive a state tree from the terminal",
	Long: `Starts a fresh process and dispatches the given events in order.
Without events, one event per line is read from Stdin; blank lines and lines starting with '#' are skipped.
The active path is printed after every event.`,
	Run: func(cmd *cobra.Command, args []string) {
		strict, _ := cmd.Flags().GetBool("strict")
		trace, _ := cmd.Flags().GetBool("trace")
		noColor, _ := cmd.Flags().GetBool("no-color")
		start, _ := cmd.Flags().GetString("start")
		stop, _ := cmd.Flags().GetString("stop")
		path, _ := cmd.Flags().GetString("config")

		interactive := len(args) == 0 && term.IsTerminal(int(os.Stdin.Fd()))
		if interactive {
			tui.PrintBanner(os.Stdout)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		err := cli.Run(ctx, cli.RunOptions{
			ConfigPath:  path,
			StartEvent:  start,
			Stop:        stop,
			Events:      args,
			Input:       os.Stdin,
			Output:      os.Stdout,
			Interactive: interactive,
			Strict:      strict,
			Trace:       trace,
			Color:       !noColor && term.IsTerminal(int(os.Stdout.Fd())),
			Logger:      commandLogger(cmd),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if sig := ctx.Signal(); sig != nil {
			fmt.Fprintf(os.Stderr, "\nInterrupted (%v)\n", sig)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("strict", false, "Skip events that no enabled transition accepts")
	runCmd.Flags().Bool("trace", false, "Print enter and exit of every state")
	runCmd.Flags().Bool("no-color", false, "Disable colored traces")
	runCmd.Flags().String("start", "start", "Event dispatched when the process starts")
	runCmd.Flags().String("stop", "", "Phases ending each dispatch: first, next, leaf, last, enter, exit (default leaf)")
}
