// Package ingest defines the importer contract: how plugins identify the
// raw downloads they understand and turn them into ledger directives, dates
// and filing names. Optional abilities are declared by implementing the
// corresponding interface; CapabilitiesOf reports which ones an importer
// actually has.
package ingest

import (
	"time"

	"tally/pkg/ingest/cache"
	"tally/pkg/ledger"
)

// Importer is the minimal contract every plugin satisfies.
type Importer interface {
	// Name identifies the importer in logs and reports, unique within a
	// configuration, e.g. "acme-bank-csv".
	Name() string

	// Identify reports whether the file is one this importer understands.
	Identify(f *cache.File) (bool, error)

	// Account returns the ledger account this importer files under.
	Account(f *cache.File) (ledger.Account, error)
}

// Extractor is implemented by importers that can produce directives from a
// file. The existing entries allow extraction to detect duplicates.
type Extractor interface {
	Extract(f *cache.File, existing []ledger.Directive) ([]ledger.Directive, error)
}

// FileDater is implemented by importers that can read a statement date out
// of the file contents. A zero time means the importer found no date.
type FileDater interface {
	FileDate(f *cache.File) (time.Time, error)
}

// FileNamer is implemented by importers that rename files for archiving. A
// clean name is a bare file name: never absolute and free of path
// separators. An empty string means the importer produced no name.
type FileNamer interface {
	FileName(f *cache.File) (string, error)
}

// Capabilities describes which optional abilities an importer declares.
type Capabilities struct {
	Extract  bool
	FileDate bool
	FileName bool
}

// Count returns how many abilities are declared.
func (c Capabilities) Count() int {
	n := 0
	for _, ok := range []bool{c.Extract, c.FileDate, c.FileName} {
		if ok {
			n++
		}
	}
	return n
}

// CapabilitiesOf inspects the optional interfaces an importer implements.
func CapabilitiesOf(imp Importer) Capabilities {
	var c Capabilities
	_, c.Extract = imp.(Extractor)
	_, c.FileDate = imp.(FileDater)
	_, c.FileName = imp.(FileNamer)
	return c
}
