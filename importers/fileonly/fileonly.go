// Package fileonly implements an importer that identifies and files
// documents without reading anything out of them: PDF statements, scanned
// receipts, contract notes. It declares no optional abilities, so
// archiving falls back to the download's own name and date.
package fileonly

import (
	"fmt"
	"path/filepath"
	"strings"

	"tally/pkg/ingest/cache"
	"tally/pkg/ledger"
)

// Config describes one class of filed documents.
type Config struct {
	// Name identifies the importer, e.g. "acme-statements-pdf".
	Name string
	// Account is the ledger account files are archived under.
	Account ledger.Account
	// Glob, when set, must match the file's base name, e.g. "acme-*.pdf".
	Glob string
	// MimePrefix, when set, must prefix the sniffed MIME type, e.g.
	// "application/pdf".
	MimePrefix string
}

// Importer files documents it recognizes by name or content type.
type Importer struct {
	cfg Config
}

// New validates the configuration and builds the importer.
func New(cfg Config) (*Importer, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("fileonly: config needs a name")
	}
	if !cfg.Account.Valid() {
		return nil, fmt.Errorf("fileonly: %s: invalid account %q", cfg.Name, cfg.Account)
	}
	if cfg.Glob == "" && cfg.MimePrefix == "" {
		return nil, fmt.Errorf("fileonly: %s: config needs a glob or a MIME prefix", cfg.Name)
	}
	if cfg.Glob != "" {
		if _, err := filepath.Match(cfg.Glob, ""); err != nil {
			return nil, fmt.Errorf("fileonly: %s: bad glob %q: %w", cfg.Name, cfg.Glob, err)
		}
	}
	return &Importer{cfg: cfg}, nil
}

// Name implements ingest.Importer.
func (imp *Importer) Name() string { return imp.cfg.Name }

// Identify claims files matching the configured glob and MIME prefix.
func (imp *Importer) Identify(f *cache.File) (bool, error) {
	if imp.cfg.Glob != "" {
		ok, err := filepath.Match(imp.cfg.Glob, filepath.Base(f.Name))
		if err != nil || !ok {
			return false, err
		}
	}
	if imp.cfg.MimePrefix != "" {
		mt, err := f.MimeType()
		if err != nil {
			return false, err
		}
		if !strings.HasPrefix(mt, imp.cfg.MimePrefix) {
			return false, nil
		}
	}
	return true, nil
}

// Account implements ingest.Importer.
func (imp *Importer) Account(f *cache.File) (ledger.Account, error) {
	return imp.cfg.Account, nil
}
