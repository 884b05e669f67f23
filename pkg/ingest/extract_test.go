package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tally/pkg/ingest/cache"
	"tally/pkg/ledger"
)

func txn(day int, narration, account, amount string) *ledger.Transaction {
	a := ledger.MustParseAmount(amount)
	return &ledger.Transaction{
		Date:      time.Date(2026, time.January, day, 0, 0, 0, 0, time.UTC),
		Narration: narration,
		Postings:  []ledger.Posting{{Account: ledger.Account(account), Amount: &a}},
	}
}

func TestExtractFromFileSortsAndMarksDuplicates(t *testing.T) {
	existing := []ledger.Directive{txn(5, "known", "Assets:Checking", "-4.50 USD")}
	fresh := []ledger.Directive{
		txn(7, "new", "Assets:Checking", "-10.00 USD"),
		txn(4, "rebooked", "Assets:Checking", "-4.50 USD"),
	}
	imp := &stubExtractor{stubImporter: stubImporter{name: "stub"}, entries: fresh}

	entries, dupes, err := ExtractFromFile(cache.New("download.csv"), imp, existing)
	if err != nil {
		t.Fatalf("ExtractFromFile: %v", err)
	}
	if dupes != 1 {
		t.Errorf("dupes = %d, want 1", dupes)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	first := entries[0].(*ledger.Transaction)
	if first.Narration != "rebooked" {
		t.Errorf("entries not sorted by date, first = %q", first.Narration)
	}
	if first.Meta[DuplicateMeta] == "" {
		t.Error("rebooked entry not marked as duplicate")
	}
	second := entries[1].(*ledger.Transaction)
	if second.Meta[DuplicateMeta] != "" {
		t.Error("new entry wrongly marked as duplicate")
	}
}

func TestExtractFromFileRequiresExtractor(t *testing.T) {
	imp := &stubImporter{name: "base"}
	if _, _, err := ExtractFromFile(cache.New("download.csv"), imp, nil); err == nil {
		t.Fatal("ExtractFromFile = nil error for non-extractor, want error")
	}
}

func TestPrintExtractedCommentsDuplicates(t *testing.T) {
	dup := txn(5, "rebooked", "Assets:Checking", "-4.50 USD")
	dup.Meta = ledger.Meta{DuplicateMeta: "true"}
	entries := []ledger.Directive{
		txn(4, "fresh", "Assets:Checking", "-10.00 USD"),
		dup,
	}

	var sb strings.Builder
	if err := PrintExtracted(&sb, entries); err != nil {
		t.Fatalf("PrintExtracted: %v", err)
	}
	want := `2026-01-04 * "fresh"
  Assets:Checking  -10.00 USD

; 2026-01-05 * "rebooked"
;   Assets:Checking  -4.50 USD
`
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("PrintExtracted mismatch (-want +got):\n%s", diff)
	}
}
