package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tally/internal/format"
	"tally/pkg/ingest"
	"tally/pkg/ingest/cache"
)

var identifyFlags struct {
	format string
}

var identifyCmd = &cobra.Command{
	Use:   "identify <path>...",
	Short: "Show which importer claims each file",
	Long: `Matches every file under the given paths against the configured
importers and prints a table of claims. Files no importer recognizes are
listed with a dash.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIdentify,
}

func init() {
	identifyCmd.Flags().StringVar(&identifyFlags.format, "format", "ascii", "table format: ascii or markdown")
}

func runIdentify(cmd *cobra.Command, args []string) error {
	_, importers, err := loadConfig()
	if err != nil {
		return err
	}
	files, err := walkInputs(args)
	if err != nil {
		return err
	}

	tbl := format.NewTable(format.ModeFromString(identifyFlags.format))
	tbl.Header("File", "Size", "Importer", "Account", "Extract", "Date", "Name")
	matched := 0
	for _, path := range files {
		size := "-"
		if info, err := os.Stat(path); err == nil {
			size = format.FmtSize(info.Size())
		}

		f := cache.New(path)
		matches, err := ingest.IdentifyFile(f, importers)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			tbl.Row(path, size, "-", "-")
			continue
		}
		matched++

		account, err := matches[0].Account(f)
		if err != nil {
			return fmt.Errorf("account for %s: %w", path, err)
		}
		names := make([]string, len(matches))
		for i, imp := range matches {
			names[i] = imp.Name()
		}
		caps := ingest.CapabilitiesOf(matches[0])
		tbl.Row(path, size, strings.Join(names, ", "), string(account),
			format.BoolMark(caps.Extract), format.BoolMark(caps.FileDate), format.BoolMark(caps.FileName))
	}
	tbl.Footer("", "", "matched", fmt.Sprintf("%d/%d", matched, len(files)))
	tbl.Columns(format.ColumnConfig{Number: 2, Align: format.AlignRight})

	fmt.Fprintln(cmd.OutOrStdout(), tbl.String())
	return nil
}
