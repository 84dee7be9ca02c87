// Package cmd provides the command-line interface for Cascade.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "cascade",
	Short: "Cascade CLI tool can exercise and inspect the typed " +
		"event-dispatch engine.",
	Long: `Cascade CLI tool can exercise and inspect the typed ` +
		`event-dispatch engine. Currently, it supports running a demo ` +
		`simulation with optional live monitoring and trace recording.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
