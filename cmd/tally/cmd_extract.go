package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tally/internal/logging"
	"tally/pkg/ingest"
	"tally/pkg/ingest/cache"
	"tally/pkg/ledger"
)

var extractFlags struct {
	output   string
	parallel int
}

var extractCmd = &cobra.Command{
	Use:   "extract <path>...",
	Short: "Extract ledger entries from downloads",
	Long: `Extracts entries from every file a configured importer claims, in
input order with one section per source file. Entries that repeat an
entry extracted earlier in the same run are written commented out.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.StringVarP(&extractFlags.output, "output", "o", "", "write entries to this file instead of stdout")
	f.IntVar(&extractFlags.parallel, "parallel", runtime.GOMAXPROCS(0), "number of files extracted concurrently")
}

// outputHeader opens the extract output so editors fold the per-file
// sections.
const outputHeader = ";; -*- mode: org -*-\n"

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, importers, err := loadConfig()
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	files, err := walkInputs(args)
	if err != nil {
		return err
	}
	log := logging.New("extract")

	type job struct {
		path string
		imp  ingest.Importer
	}
	var jobs []job
	for _, path := range files {
		f := cache.NewWithStore(path, store)
		matches, err := ingest.IdentifyFile(f, importers)
		if err != nil {
			return err
		}
		claimed := false
		for _, imp := range matches {
			if ingest.CapabilitiesOf(imp).Extract {
				jobs = append(jobs, job{path: path, imp: imp})
				claimed = true
			}
		}
		if !claimed {
			log.Debug("no extracting importer", "file", path)
		}
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no extractable files among %d input(s)", len(files))
	}

	// Extraction runs concurrently; results keep the input order.
	entries := make([][]ledger.Directive, len(jobs))
	errs := make([]error, len(jobs))
	var g errgroup.Group
	if extractFlags.parallel > 0 {
		g.SetLimit(extractFlags.parallel)
	}
	for i, j := range jobs {
		g.Go(func() error {
			f := cache.NewWithStore(j.path, store)
			entries[i], _, errs[i] = ingest.ExtractFromFile(f, j.imp, nil)
			return nil
		})
	}
	_ = g.Wait()

	// Flag entries already extracted from an earlier file in this run.
	idx := ingest.NewDedupIndex()
	total, dupes := 0, 0
	for i := range jobs {
		if errs[i] != nil {
			return errs[i]
		}
		total += len(entries[i])
		dupes += idx.MarkDuplicates(entries[i])
		idx.AddEntries(entries[i])
	}

	var out io.Writer = cmd.OutOrStdout()
	var file *os.File
	if extractFlags.output != "" {
		file, err = os.Create(extractFlags.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		out = file
	}
	w := bufio.NewWriter(out)
	fmt.Fprint(w, outputHeader)
	for i, j := range jobs {
		fmt.Fprintf(w, "\n**** %s\n\n", j.path)
		if err := ingest.PrintExtracted(w, entries[i]); err != nil {
			return fmt.Errorf("print entries: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if file != nil {
		if err := file.Close(); err != nil {
			return fmt.Errorf("close output: %w", err)
		}
	}

	log.Info("extracted", "files", len(jobs), "entries", total, "duplicates", dupes)
	return nil
}
