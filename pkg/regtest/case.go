package regtest

import (
	"iter"
	"os"
	"path/filepath"

	"tally/pkg/ingest"
)

// Op names one golden-file check run against a sample file.
type Op string

const (
	// OpExtract compares the printed directives extracted from the file.
	OpExtract Op = "extract"
	// OpFileDate compares the statement date read from the file.
	OpFileDate Op = "file_date"
	// OpFileName compares the name the file would be archived under.
	OpFileName Op = "file_name"
)

// Case pairs one sample input file with one check.
type Case struct {
	File string
	Op   Op
}

// Fixture returns the path of the golden file backing the case.
func (c Case) Fixture() string {
	return c.File + "." + string(c.Op)
}

// Name returns the subtest name for the case, "<op>/<file base name>".
func (c Case) Name() string {
	return string(c.Op) + "/" + filepath.Base(c.File)
}

// Cases yields one case per sample file under dir and per ability the
// importer declares, in scanner order. A dir naming a file selects that
// file's directory. An importer with no optional abilities yields no
// cases at all.
func Cases(imp ingest.Importer, dir string) iter.Seq[Case] {
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	caps := ingest.CapabilitiesOf(imp)
	var ops []Op
	if caps.Extract {
		ops = append(ops, OpExtract)
	}
	if caps.FileDate {
		ops = append(ops, OpFileDate)
	}
	if caps.FileName {
		ops = append(ops, OpFileName)
	}
	return func(yield func(Case) bool) {
		for file := range FindInputFiles(dir) {
			for _, op := range ops {
				if !yield(Case{File: file, Op: op}) {
					return
				}
			}
		}
	}
}
