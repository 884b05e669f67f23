package main

import (
	"github.com/spf13/cobra"

	"tally/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	config    string
	logLevel  string
	logFormat string
	cache     string
}

var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "Import financial statement downloads into a plain-text ledger",
	Long: "Tally matches downloaded statements against configured importers,\n" +
		"extracts ledger entries from them, archives the documents into an\n" +
		"account tree and checks importers against recorded golden files.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := logging.ParseLevel(rootFlags.logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, rootFlags.logFormat, cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.config, "config", "tally.yaml", "configuration file (YAML or JSON)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "log format: text or json")
	pf.StringVar(&rootFlags.cache, "cache", "", "conversion cache database (overrides config)")

	rootCmd.AddCommand(identifyCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.Version = version
}
