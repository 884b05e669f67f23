package regtest

import (
	"io/fs"
	"iter"
	"path/filepath"
	"regexp"
)

// skipRe matches files that are never sample inputs: fixtures and Go
// sources living next to the samples.
var skipRe = regexp.MustCompile(`\.(extract|file_date|file_name|go)$`)

// FindInputFiles yields the sample input files under dir, walking
// subdirectories in lexical order. Fixtures and Go sources are skipped. A
// missing or unreadable directory yields nothing.
func FindInputFiles(dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if skipRe.MatchString(d.Name()) {
				return nil
			}
			if !yield(path) {
				return fs.SkipAll
			}
			return nil
		})
	}
}
