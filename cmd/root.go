package cmd

import (
	"fmt"
	"os"

	"sono/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sono_server",
	Short: "SONO is a mood-driven music recommendation chat service.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
