package ingest

import (
	"fmt"
	"io"
	"strings"

	"tally/pkg/ingest/cache"
	"tally/pkg/ledger"
)

// DuplicateMeta marks a directive as a likely duplicate of an existing
// entry. The "__" prefix keeps it out of printed metadata.
const DuplicateMeta = "__duplicate__"

// ExtractFromFile runs the importer's extraction on f, sorts the result
// and marks entries that duplicate ones already in the ledger. It returns
// the entries and the number marked as duplicates.
func ExtractFromFile(f *cache.File, imp Importer, existing []ledger.Directive) ([]ledger.Directive, int, error) {
	ex, ok := imp.(Extractor)
	if !ok {
		return nil, 0, fmt.Errorf("ingest: importer %s does not extract", imp.Name())
	}
	entries, err := ex.Extract(f, existing)
	if err != nil {
		return nil, 0, fmt.Errorf("ingest: extract %s with %s: %w", f.Name, imp.Name(), err)
	}
	ledger.SortEntries(entries)
	dupes := IndexEntries(existing).MarkDuplicates(entries)
	return entries, dupes, nil
}

// PrintExtracted renders entries in ledger syntax. Entries marked with
// DuplicateMeta are written with every line commented out, so they stay
// visible in the output without taking effect.
func PrintExtracted(w io.Writer, entries []ledger.Directive) error {
	for i, d := range entries {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		var sb strings.Builder
		if err := ledger.PrintDirective(&sb, d); err != nil {
			return err
		}
		text := sb.String()
		if isDuplicate(d) {
			text = commentOut(text)
		}
		if _, err := io.WriteString(w, text); err != nil {
			return err
		}
	}
	return nil
}

func isDuplicate(d ledger.Directive) bool {
	return directiveMeta(d)[DuplicateMeta] != ""
}

func directiveMeta(d ledger.Directive) ledger.Meta {
	switch d := d.(type) {
	case *ledger.Transaction:
		return d.Meta
	case *ledger.Balance:
		return d.Meta
	case *ledger.Note:
		return d.Meta
	}
	return nil
}

// commentOut prefixes every non-empty line with "; ".
func commentOut(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = "; " + line
		}
	}
	return strings.Join(lines, "\n")
}
