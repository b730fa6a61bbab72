package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Export metrics once and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, _, flush, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer flush()

		snap, err := b.Run(cmd.Context())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}
