package main

import (
	"fmt"

	"github.com/aretw0/nest"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of nest",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nest version %s\n", nest.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
