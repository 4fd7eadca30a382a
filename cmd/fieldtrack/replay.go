package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fieldtrack/internal/sink"
)

var (
	replayInput string
	replaySpeed float64
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded fix log",
	Long:  "replay feeds a JSONL fix log back through a writer, reproducing the original timing.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		return sink.ReplayFile(replayInput, &sink.StdoutWriter{}, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to fix log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
}
