package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"tally/internal/format"
	"tally/internal/logging"
	"tally/pkg/regtest"
)

var testFlags struct {
	importer string
	format   string
}

var testCmd = &cobra.Command{
	Use:   "test <samples-dir>",
	Short: "Check an importer against recorded golden files",
	Long: `Runs every ability the importer declares over the sample files in a
directory and compares the results with the golden files recorded next
to them. A missing golden file is generated from the current output and
the case is skipped; run again to compare. Exits non-zero when any case
fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runTest,
}

func init() {
	f := testCmd.Flags()
	f.StringVar(&testFlags.importer, "importer", "", "importer name from the config (default: sole importer)")
	f.StringVar(&testFlags.format, "format", "ascii", "table format: ascii or markdown")
}

func runTest(cmd *cobra.Command, args []string) error {
	cfg, importers, err := loadConfig()
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	imp, err := pickImporter(importers, testFlags.importer)
	if err != nil {
		return err
	}
	runner := &regtest.Runner{Importer: imp, Store: store, Log: logging.New("regtest")}

	tbl := format.NewTable(format.ModeFromString(testFlags.format))
	tbl.Header("File", "Check", "Verdict", "Detail")

	start := time.Now()
	counts := map[regtest.Verdict]int{}
	total := 0
	var diffs []string
	for res := range runner.RunDir(args[0]) {
		total++
		counts[res.Verdict]++
		tbl.Row(filepath.Base(res.Case.File), string(res.Case.Op), string(res.Verdict),
			format.Truncate(res.Reason, 60))
		if res.Diff != "" {
			diffs = append(diffs, fmt.Sprintf("%s (-recorded +current):\n%s", res.Case.Name(), res.Diff))
		}
	}
	tbl.Footer("", "", fmt.Sprintf("%d case(s) in %s", total, format.FmtDuration(time.Since(start))),
		fmt.Sprintf("%d pass, %d skip, %d fail, %d error",
			counts[regtest.Pass], counts[regtest.Skip], counts[regtest.Fail], counts[regtest.Error]))

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, tbl.String())
	for _, d := range diffs {
		fmt.Fprintf(out, "\n%s", d)
	}

	if failing := counts[regtest.Fail] + counts[regtest.Error]; failing > 0 {
		return fmt.Errorf("%d failing case(s) for %s", failing, imp.Name())
	}
	return nil
}
