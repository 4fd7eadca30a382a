package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fieldtrack/internal/config"
)

var (
	lastFixConfigPath string
	lastFixSchemaPath string
)

var lastFixCmd = &cobra.Command{
	Use:   "last-fix",
	Short: "Print the persisted last fix",
	Long:  "last-fix reads the last-fix store configured for this device and prints the record, if any.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(lastFixConfigPath, lastFixSchemaPath)
		if err != nil {
			return err
		}
		ctx := context.Background()
		st, closeStore, err := newStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		rec, ok, err := st.Load(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "no fix recorded")
			return nil
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	lastFixCmd.Flags().StringVar(&lastFixConfigPath, "config", "config/tracker.yaml", "Path to tracker configuration YAML")
	lastFixCmd.Flags().StringVar(&lastFixSchemaPath, "schema", "schemas/tracker.cue", "Path to CUE schema file")
}
