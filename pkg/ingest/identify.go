package ingest

import (
	"fmt"

	"tally/pkg/ingest/cache"
)

// IdentifyFile returns the importers that recognize f, in the order they
// were configured.
func IdentifyFile(f *cache.File, importers []Importer) ([]Importer, error) {
	var matches []Importer
	for _, imp := range importers {
		ok, err := imp.Identify(f)
		if err != nil {
			return nil, fmt.Errorf("ingest: identify %s with %s: %w", f.Name, imp.Name(), err)
		}
		if ok {
			matches = append(matches, imp)
		}
	}
	return matches, nil
}
