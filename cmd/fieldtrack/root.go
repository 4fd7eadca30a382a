package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fieldtrack",
	Short: "Background location tracking for field surveys",
	Long:  "fieldtrack keeps recording GPS fixes in an isolated worker, relays them to live consumers, and persists the last fix across restarts.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(lastFixCmd)
}
