package regtest

import (
	"testing"

	"tally/pkg/ingest"
)

// CompareSampleFiles registers one subtest per sample file and declared
// ability of the importer, named "<op>/<file>". dir may also name one of
// the sample files, standing for its directory.
func CompareSampleFiles(t *testing.T, imp ingest.Importer, dir string) {
	t.Helper()
	if dir == "" {
		t.Fatal("regtest: no sample directory given")
	}
	r := &Runner{Importer: imp}
	for c := range Cases(imp, dir) {
		t.Run(c.Name(), func(t *testing.T) {
			Report(t, r.Run(c))
		})
	}
}

// Report translates a result into the outcome of the running test:
// skipped fixtures skip, mismatches fail with the full diff, and broken
// checks abort.
func Report(t *testing.T, res Result) {
	t.Helper()
	switch res.Verdict {
	case Skip:
		t.Skipf("%s", res.Reason)
	case Fail:
		if res.Diff != "" {
			t.Errorf("%s (-want +got):\n%s", res.Reason, res.Diff)
		} else {
			t.Errorf("%s", res.Reason)
		}
	case Error:
		t.Fatalf("%s", res.Reason)
	}
}
