// Package archive files identified downloads into a directory tree
// mirroring the account they belong to. A statement dated 2026-03-05 for
// Assets:US:Acme:Checking lands at
//
//	<root>/Assets/US/Acme/Checking/2026-03-05.<name>
//
// where the name comes from the importer's FileName ability when it has
// one, else the file's own base name.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tally/pkg/ingest"
	"tally/pkg/ingest/cache"
	"tally/pkg/ledger"
)

// ErrConflict marks a destination that already holds different content.
var ErrConflict = errors.New("archive: destination holds different content")

// Action describes one planned or performed filing.
type Action struct {
	Source string
	Dest   string
	// Skipped is set when the destination already held identical content
	// and nothing was done.
	Skipped bool
}

// Filer files downloads under Root.
type Filer struct {
	Root string
	// Move removes the source after filing instead of leaving a copy.
	Move bool
	// DryRun plans actions without touching the filesystem.
	DryRun bool
	// Log receives one record per filed document. Defaults to
	// slog.Default.
	Log *slog.Logger
}

// Dest computes where the file would be archived, without acting.
func (fl *Filer) Dest(f *cache.File, imp ingest.Importer) (string, error) {
	account, err := imp.Account(f)
	if err != nil {
		return "", fmt.Errorf("account for %s: %w", f.Name, err)
	}
	date, err := fl.fileDate(f, imp)
	if err != nil {
		return "", err
	}
	name, err := ingest.ArchiveName(f, imp)
	if err != nil {
		return "", err
	}
	accountDir := filepath.FromSlash(strings.ReplaceAll(string(account), ledger.Sep, "/"))
	return filepath.Join(fl.Root, accountDir, date.Format(ledger.DateLayout)+"."+name), nil
}

// File archives one identified download. An existing destination with the
// same content is reported as skipped; one with different content is an
// ErrConflict.
func (fl *Filer) File(f *cache.File, imp ingest.Importer) (Action, error) {
	dest, err := fl.Dest(f, imp)
	if err != nil {
		return Action{}, err
	}
	act := Action{Source: f.Name, Dest: dest}

	if _, err := os.Stat(dest); err == nil {
		same, err := sameContents(f.Name, dest)
		if err != nil {
			return Action{}, err
		}
		if !same {
			return Action{}, fmt.Errorf("%w: %s", ErrConflict, dest)
		}
		act.Skipped = true
		fl.log().Debug("already archived", "source", f.Name, "dest", dest)
		return act, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return Action{}, fmt.Errorf("stat %s: %w", dest, err)
	}

	if fl.DryRun {
		return act, nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return Action{}, fmt.Errorf("create archive dir: %w", err)
	}
	if fl.Move {
		err = moveFile(f.Name, dest)
	} else {
		err = copyFile(f.Name, dest)
	}
	if err != nil {
		return Action{}, err
	}
	fl.log().Info("archived", "source", f.Name, "dest", dest, "move", fl.Move)
	return act, nil
}

// fileDate picks the date the file is archived under: the importer's
// statement date when it reports one, else the file's modification time.
func (fl *Filer) fileDate(f *cache.File, imp ingest.Importer) (time.Time, error) {
	if dater, ok := imp.(ingest.FileDater); ok {
		date, err := dater.FileDate(f)
		if err != nil {
			return time.Time{}, fmt.Errorf("file date for %s: %w", f.Name, err)
		}
		if !date.IsZero() {
			return date, nil
		}
	}
	info, err := os.Stat(f.Name)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %s: %w", f.Name, err)
	}
	return info.ModTime(), nil
}

func (fl *Filer) log() *slog.Logger {
	if fl.Log != nil {
		return fl.Log
	}
	return slog.Default()
}

func sameContents(a, b string) (bool, error) {
	da, err := os.ReadFile(a)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", a, err)
	}
	db, err := os.ReadFile(b)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", b, err)
	}
	return bytes.Equal(da, db), nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy to %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dest, err)
	}
	return nil
}

// moveFile renames when it can and falls back to copy-and-remove across
// filesystems.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := copyFile(src, dest); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove %s: %w", src, err)
	}
	return nil
}
