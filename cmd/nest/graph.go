package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/nest/internal/presentation/graph"
	"github.com/aretw0/nest/pkg/loader"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [file]",
	Short: "Export the state tree visualization",
	Long: `Outputs a Mermaid diagram (stateDiagram-v2) of the state tree.
Use --active to highlight a path such as App/Main/Home.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loader.LoadConfig(configPath(cmd, args))
		if err != nil {
			fmt.Printf("Error loading state tree: %v\n", err)
			os.Exit(1)
		}

		var overlay *graph.Overlay
		if active, _ := cmd.Flags().GetString("active"); active != "" {
			overlay = &graph.Overlay{Path: strings.Split(active, "/")}
		}
		fmt.Print(graph.GenerateMermaid(cfg, overlay))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("active", "", "Slash separated path of states to highlight")
}
