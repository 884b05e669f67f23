package regtest

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"

	"tally/pkg/ingest"
	"tally/pkg/ingest/cache"
	"tally/pkg/ledger"
)

// Verdict is the outcome of one case.
type Verdict string

const (
	// Pass means the output matched the fixture.
	Pass Verdict = "pass"
	// Skip means the case produced no comparison: the fixture was just
	// generated, or a required external tool is missing.
	Skip Verdict = "skip"
	// Fail means the output did not match, or the importer produced an
	// unusable value.
	Fail Verdict = "fail"
	// Error means the check itself could not run.
	Error Verdict = "error"
)

// Result is the outcome of running one case.
type Result struct {
	Case    Case
	Verdict Verdict
	Reason  string
	// Diff holds the full fixture-versus-output diff on a Fail.
	Diff string
}

// Runner checks one importer against sample files and their fixtures.
type Runner struct {
	Importer ingest.Importer
	// Log receives a record when a fixture is generated. Nil means
	// slog.Default().
	Log *slog.Logger
	// Store, when set, persists file conversions across runs.
	Store cache.Store
}

// RunDir yields one result per case for the sample files under dir.
func (r *Runner) RunDir(dir string) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		for c := range Cases(r.Importer, dir) {
			if !yield(r.Run(c)) {
				return
			}
		}
	}
}

// Run executes a single case against the importer.
func (r *Runner) Run(c Case) Result {
	f := cache.NewWithStore(c.File, r.Store)
	switch c.Op {
	case OpExtract:
		return r.runExtract(c, f)
	case OpFileDate:
		return r.runFileDate(c, f)
	case OpFileName:
		return r.runFileName(c, f)
	}
	return Result{Case: c, Verdict: Error, Reason: fmt.Sprintf("unknown op %q", c.Op)}
}

func (r *Runner) runExtract(c Case, f *cache.File) Result {
	entries, _, err := ingest.ExtractFromFile(f, r.Importer, nil)
	if err != nil {
		return r.fromError(c, err)
	}
	var sb strings.Builder
	if err := ingest.PrintExtracted(&sb, entries); err != nil {
		return Result{Case: c, Verdict: Error, Reason: err.Error()}
	}
	// An extraction fixture counts as soon as it exists: an importer that
	// legitimately extracts nothing is pinned by an empty fixture.
	return r.check(c, sb.String(), false)
}

func (r *Runner) runFileDate(c Case, f *cache.File) Result {
	dater, ok := r.Importer.(ingest.FileDater)
	if !ok {
		return Result{Case: c, Verdict: Error, Reason: "importer does not produce a statement date"}
	}
	date, err := dater.FileDate(f)
	if err != nil {
		return r.fromError(c, err)
	}
	if date.IsZero() {
		return Result{Case: c, Verdict: Fail,
			Reason: "no statement date produced for " + filepath.Base(c.File)}
	}

	fixture := c.Fixture()
	usable, err := fixtureUsable(fixture, true)
	if err != nil {
		return Result{Case: c, Verdict: Error, Reason: err.Error()}
	}
	got := date.Format(ledger.DateLayout)
	if !usable {
		return r.generate(c, got+"\n")
	}
	raw, err := os.ReadFile(fixture)
	if err != nil {
		return Result{Case: c, Verdict: Error, Reason: fmt.Sprintf("read %s: %v", fixture, err)}
	}
	// The fixture stores a calendar day; parse it rather than comparing
	// bytes, so an unreadable date is an error, not a mismatch.
	want, err := time.Parse(ledger.DateLayout, strings.TrimSpace(string(raw)))
	if err != nil {
		return Result{Case: c, Verdict: Error,
			Reason: fmt.Sprintf("fixture %s does not hold a YYYY-MM-DD date: %v", filepath.Base(fixture), err)}
	}
	if sameDay(want, date) {
		return Result{Case: c, Verdict: Pass}
	}
	return Result{
		Case:    c,
		Verdict: Fail,
		Reason:  "statement date differs from " + filepath.Base(fixture),
		Diff:    cmp.Diff(want.Format(ledger.DateLayout), got),
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (r *Runner) runFileName(c Case, f *cache.File) Result {
	namer, ok := r.Importer.(ingest.FileNamer)
	if !ok {
		return Result{Case: c, Verdict: Error, Reason: "importer does not produce a file name"}
	}
	name, err := namer.FileName(f)
	if err != nil {
		return r.fromError(c, err)
	}
	if name == "" {
		return Result{Case: c, Verdict: Fail,
			Reason: "no file name produced for " + filepath.Base(c.File)}
	}
	if !ingest.CleanFileName(name) {
		return Result{Case: c, Verdict: Fail,
			Reason: fmt.Sprintf("file name %q is not a clean base name", name)}
	}
	return r.check(c, name+"\n", true)
}

// fromError maps an importer error: a missing external tool skips the
// case, anything else is an error.
func (r *Runner) fromError(c Case, err error) Result {
	if errors.Is(err, ingest.ErrToolNotInstalled) {
		return Result{Case: c, Verdict: Skip, Reason: err.Error()}
	}
	return Result{Case: c, Verdict: Error, Reason: err.Error()}
}

// check compares got against the case's fixture, generating the fixture
// and skipping when it is absent. Name fixtures pass requireNonEmpty, so
// a truncated fixture is regenerated instead of failing every run.
func (r *Runner) check(c Case, got string, requireNonEmpty bool) Result {
	fixture := c.Fixture()
	usable, err := fixtureUsable(fixture, requireNonEmpty)
	if err != nil {
		return Result{Case: c, Verdict: Error, Reason: err.Error()}
	}
	if !usable {
		return r.generate(c, got)
	}

	want, err := os.ReadFile(fixture)
	if err != nil {
		return Result{Case: c, Verdict: Error, Reason: fmt.Sprintf("read %s: %v", fixture, err)}
	}
	wantText := strings.TrimSpace(string(want))
	gotText := strings.TrimSpace(got)
	if wantText == gotText {
		return Result{Case: c, Verdict: Pass}
	}
	return Result{
		Case:    c,
		Verdict: Fail,
		Reason:  "output differs from " + filepath.Base(fixture),
		Diff:    cmp.Diff(wantText, gotText),
	}
}

// fixtureUsable reports whether the fixture at path exists and, when
// required, is non-empty.
func fixtureUsable(path string, requireNonEmpty bool) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %v", path, err)
	}
	return !requireNonEmpty || fi.Size() > 0, nil
}

// generate records the importer's current output as the fixture and
// reports the case as skipped.
func (r *Runner) generate(c Case, content string) Result {
	fixture := c.Fixture()
	if err := os.WriteFile(fixture, []byte(content), 0o644); err != nil {
		return Result{Case: c, Verdict: Error, Reason: fmt.Sprintf("write %s: %v", fixture, err)}
	}
	r.log().Info("generated fixture", "fixture", fixture)
	return Result{Case: c, Verdict: Skip,
		Reason: "expected file not present; generating " + filepath.Base(fixture)}
}

func (r *Runner) log() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}
