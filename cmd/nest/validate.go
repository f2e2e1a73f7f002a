package main

import (
	"fmt"
	"os"

	"github.com/aretw0/nest/internal/validator"
	"github.com/aretw0/nest/pkg/loader"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check the state tree for consistency",
	Long: `Walks the state tree and reports duplicate rules and states, undeclared targets,
unreachable children, composites without an initial rule and reserved keys.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := configPath(cmd, args)
		cfg, err := loader.LoadConfig(path)
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		if err := validator.ValidateGraph(cfg); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("State tree is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// configPath returns the positional file argument, or --config.
func configPath(cmd *cobra.Command, args []string) string {
	path, _ := cmd.Flags().GetString("config")
	if !cmd.Flags().Changed("config") && len(args) > 0 {
		path = args[0]
	}
	return path
}
