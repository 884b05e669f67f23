// Package regtest checks importers against directories of sample input
// files with golden fixtures stored next to them. For a sample
// "download.csv" the fixtures are "download.csv.extract",
// "download.csv.file_date" and "download.csv.file_name", one per ability
// the importer declares.
//
// A missing fixture is generated from the importer's current output and
// the check is skipped, so dropping new samples into the directory and
// running the tests twice first primes and then enforces the fixtures.
// After a legitimate behavior change, delete the stale fixtures and re-run
// to regenerate them.
//
// The usual entry point is CompareSampleFiles, which registers one subtest
// per sample file and ability:
//
//	func TestImporter(t *testing.T) {
//		regtest.CompareSampleFiles(t, New(Config{...}), "testdata")
//	}
package regtest
