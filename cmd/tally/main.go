// tally is the importer toolkit CLI: identify which configured importer
// claims each downloaded statement, extract ledger entries from them,
// archive the documents into an account tree and check importers against
// recorded golden files.
//
// Usage:
//
//	tally identify <path>...
//	tally extract <path>... [-o entries.ledger]
//	tally archive <path>... [--dest root] [--move] [--dry-run]
//	tally test <samples-dir> [--importer name]
//	tally config
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
