package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tally/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print a starter configuration",
	Long: "Prints an example configuration with one importer of each type,\n" +
		"ready to adjust and save as tally.yaml.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprint(cmd.OutOrStdout(), config.Example())
		return err
	},
}
