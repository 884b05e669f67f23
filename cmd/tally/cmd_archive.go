package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tally/internal/archive"
	"tally/internal/logging"
	"tally/pkg/ingest"
	"tally/pkg/ingest/cache"
)

var archiveFlags struct {
	dest   string
	move   bool
	dryRun bool
}

var archiveCmd = &cobra.Command{
	Use:   "archive <path>...",
	Short: "File downloads into the documents tree",
	Long: `Files every claimed download under the archive root, in a directory
tree mirroring its account and named after its statement date. A
destination that already holds the same content is skipped; one holding
different content is an error.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runArchive,
}

func init() {
	f := archiveCmd.Flags()
	f.StringVar(&archiveFlags.dest, "dest", "", "archive root (default: config archive)")
	f.BoolVar(&archiveFlags.move, "move", false, "move files instead of copying")
	f.BoolVar(&archiveFlags.dryRun, "dry-run", false, "plan only, touch nothing")
}

func runArchive(cmd *cobra.Command, args []string) error {
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

	root := archiveFlags.dest
	if root == "" {
		root = cfg.Archive
	}
	filer := &archive.Filer{
		Root:   root,
		Move:   archiveFlags.move,
		DryRun: archiveFlags.dryRun,
		Log:    logging.New("archive"),
	}

	out := cmd.OutOrStdout()
	var errs []error
	filed, skipped := 0, 0
	for _, path := range files {
		f := cache.NewWithStore(path, store)
		matches, err := ingest.IdentifyFile(f, importers)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			fmt.Fprintf(out, "? %s (no importer)\n", path)
			continue
		}
		act, err := filer.File(f, matches[0])
		if err != nil {
			errs = append(errs, err)
			fmt.Fprintf(out, "! %s: %v\n", path, err)
			continue
		}
		if act.Skipped {
			skipped++
			fmt.Fprintf(out, "= %s (already archived)\n", path)
			continue
		}
		filed++
		fmt.Fprintf(out, "> %s -> %s\n", path, act.Dest)
	}

	if archiveFlags.dryRun {
		fmt.Fprintf(out, "dry run: %d to file, %d already archived, %d error(s)\n", filed, skipped, len(errs))
	} else {
		fmt.Fprintf(out, "%d filed, %d already archived, %d error(s)\n", filed, skipped, len(errs))
	}
	return errors.Join(errs...)
}
