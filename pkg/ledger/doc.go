// Package ledger defines the directive model produced by importers: dated
// transactions, balance assertions and notes, with decimal amounts that
// preserve the scale they were parsed with. The printed form is stable, so
// it can be diffed against golden files.
package ledger
