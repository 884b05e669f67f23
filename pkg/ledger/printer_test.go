package ledger

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func amt(t *testing.T, s string) *Amount {
	t.Helper()
	a, err := ParseAmount(s)
	if err != nil {
		t.Fatalf("ParseAmount(%q): %v", s, err)
	}
	return &a
}

func TestPrintTransaction(t *testing.T) {
	tx := &Transaction{
		Date:      time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC),
		Payee:     "Acme Coffee",
		Narration: "Morning latte",
		Meta:      Meta{"document": "statement.pdf", "__duplicate__": "true"},
		Postings: []Posting{
			{Account: "Assets:US:BofA:Checking", Amount: amt(t, "-4.50 USD")},
			{Account: "Expenses:Food:Coffee"},
		},
	}
	want := `2026-03-04 * "Acme Coffee" "Morning latte"
  document: "statement.pdf"
  Assets:US:BofA:Checking  -4.50 USD
  Expenses:Food:Coffee
`
	got := Sprint([]Directive{tx})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sprint mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintAlignsAmounts(t *testing.T) {
	tx := &Transaction{
		Date:      time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		Narration: "Rent",
		Postings: []Posting{
			{Account: "Assets:Checking", Amount: amt(t, "-120.00 USD")},
			{Account: "Expenses:Rent", Amount: amt(t, "120.00 USD")},
		},
	}
	want := `2026-03-01 * "Rent"
  Assets:Checking  -120.00 USD
  Expenses:Rent     120.00 USD
`
	got := Sprint([]Directive{tx})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sprint mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintMixedDirectives(t *testing.T) {
	entries := []Directive{
		&Balance{
			Date:    time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC),
			Account: "Assets:US:BofA:Checking",
			Amount:  *amt(t, "1234.56 USD"),
		},
		&Note{
			Date:    time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC),
			Account: "Assets:US:BofA:Checking",
			Comment: "Called the bank about the fee",
		},
	}
	want := `2026-03-05 balance Assets:US:BofA:Checking  1234.56 USD

2026-03-06 note Assets:US:BofA:Checking "Called the bank about the fee"
`
	got := Sprint(entries)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sprint mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintTags(t *testing.T) {
	tx := &Transaction{
		Date:      time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC),
		Narration: "Team dinner",
		Tags:      []string{"trip-berlin", "reimbursable"},
		Postings: []Posting{
			{Account: "Expenses:Food", Amount: amt(t, "86.00 EUR")},
		},
	}
	want := `2026-03-04 * "Team dinner" #reimbursable #trip-berlin
  Expenses:Food  86.00 EUR
`
	got := Sprint([]Directive{tx})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sprint mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintDefaultsFlag(t *testing.T) {
	tx := &Transaction{
		Date:      time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC),
		Narration: "No payee",
		Flag:      FlagWarning,
	}
	want := "2026-01-02 ! \"No payee\"\n"
	if got := Sprint([]Directive{tx}); got != want {
		t.Errorf("Sprint = %q, want %q", got, want)
	}
}
