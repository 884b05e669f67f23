package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"tally/pkg/ingest/cache"
)

// CleanFileName reports whether name is a bare file name: non-empty, not
// absolute and free of path separators.
func CleanFileName(name string) bool {
	return name != "" && !filepath.IsAbs(name) && !strings.ContainsAny(name, `/\`)
}

// ArchiveName returns the name a file should be filed under: the
// importer's renamed file name when it provides one, else the file's own
// base name.
func ArchiveName(f *cache.File, imp Importer) (string, error) {
	if namer, ok := imp.(FileNamer); ok {
		name, err := namer.FileName(f)
		if err != nil {
			return "", err
		}
		if name != "" {
			if !CleanFileName(name) {
				return "", fmt.Errorf("ingest: importer %s produced unclean file name %q", imp.Name(), name)
			}
			return name, nil
		}
	}
	return filepath.Base(f.Name), nil
}
