package cmd

import (
	"sono/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the SONO server",
	Long:  `Start the SONO HTTP server: streaming chat, mood extraction and Spotify recommendations.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
