package main

import (
	"fmt"
	"os"

	"github.com/aretw0/nest/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var launchCmd = &cobra.Command{
	Use:   "launch <manifest>",
	Short: "Run the processes of a manifest side by side",
	Long: `Loads a manifest of named state trees and launches its start list with a shared context.
Each Stdin line is "<process> <event>"; a line with a single event goes to the first started process.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		trace, _ := cmd.Flags().GetBool("trace")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		err := cli.Launch(ctx, cli.LaunchOptions{
			ManifestPath: args[0],
			Input:        os.Stdin,
			Output:       os.Stdout,
			Trace:        trace,
			Color:        term.IsTerminal(int(os.Stdout.Fd())),
			Logger:       commandLogger(cmd),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(launchCmd)
	launchCmd.Flags().Bool("trace", false, "Print enter and exit of every state, prefixed by process")
}
