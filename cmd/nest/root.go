package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/nest/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nest",
	Short: "Nest is a hierarchical state machine engine",
	Long: `Nest drives nested state trees declared in YAML or JSON.
Run them from the terminal, inspect them as diagrams or serve them as sessions over HTTP and MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "nest.yaml", "State tree file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); empty disables logging")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
}

// commandLogger builds the logger selected by the persistent flags. Logs go
// to Stderr so Stdout stays clean.
func commandLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("log-json")
	logger, err := cli.NewLogger(os.Stderr, level, jsonLogs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return logger
}
