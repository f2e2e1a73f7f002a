package main

import (
	"fmt"
	"os"

	"github.com/aretw0/nest/internal/presentation/tui"
	"github.com/aretw0/nest/pkg/loader"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var describeCmd = &cobra.Command{
	Use:   "describe [file]",
	Short: "Print the states and transition tables",
	Long:  `Renders every state of the tree with its transition table as Markdown. The output is styled when Stdout is a terminal.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loader.LoadConfig(configPath(cmd, args))
		if err != nil {
			fmt.Printf("Error loading state tree: %v\n", err)
			os.Exit(1)
		}

		doc := tui.Describe(cfg)
		raw, _ := cmd.Flags().GetBool("raw")
		if raw || !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Print(doc)
			return
		}

		style, _ := cmd.Flags().GetString("style")
		render, err := tui.NewRenderer(style)
		if err != nil {
			fmt.Printf("Error creating renderer: %v\n", err)
			os.Exit(1)
		}
		out, err := render(doc)
		if err != nil {
			fmt.Printf("Error rendering: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("raw", false, "Print plain Markdown")
	describeCmd.Flags().String("style", "", "Glamour style (dark, light, notty); detected when empty")
}
