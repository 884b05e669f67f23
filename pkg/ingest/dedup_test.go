package ingest

import (
	"testing"
	"time"

	"tally/pkg/ledger"
)

func TestMarkDuplicatesWindow(t *testing.T) {
	existing := []ledger.Directive{txn(10, "known", "Assets:Checking", "-4.50 USD")}
	idx := IndexEntries(existing)

	tests := []struct {
		name  string
		entry *ledger.Transaction
		want  bool
	}{
		{"same day", txn(10, "a", "Assets:Checking", "-4.50 USD"), true},
		{"window edge", txn(12, "b", "Assets:Checking", "-4.50 USD"), true},
		{"outside window", txn(13, "c", "Assets:Checking", "-4.50 USD"), false},
		{"different amount", txn(10, "d", "Assets:Checking", "-4.51 USD"), false},
		{"different account", txn(10, "e", "Assets:Savings", "-4.50 USD"), false},
		{"different currency", txn(10, "f", "Assets:Checking", "-4.50 EUR"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marked := idx.MarkDuplicates([]ledger.Directive{tt.entry})
			if got := marked == 1; got != tt.want {
				t.Errorf("duplicate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMarkDuplicatesIgnoresScale(t *testing.T) {
	idx := IndexEntries([]ledger.Directive{txn(10, "known", "Assets:Checking", "-4.50 USD")})
	entry := txn(10, "rescaled", "Assets:Checking", "-4.5 USD")
	if idx.MarkDuplicates([]ledger.Directive{entry}) != 1 {
		t.Error("-4.5 USD not matched against -4.50 USD")
	}
}

func TestMarkDuplicatesBalanceAndNote(t *testing.T) {
	date := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	existing := []ledger.Directive{
		&ledger.Balance{Date: date, Account: "Assets:Checking", Amount: ledger.MustParseAmount("100.00 USD")},
		&ledger.Note{Date: date, Account: "Assets:Checking", Comment: "statement"},
	}
	idx := IndexEntries(existing)

	again := []ledger.Directive{
		&ledger.Balance{Date: date, Account: "Assets:Checking", Amount: ledger.MustParseAmount("100.00 USD")},
		&ledger.Note{Date: date, Account: "Assets:Checking", Comment: "statement"},
		&ledger.Note{Date: date, Account: "Assets:Checking", Comment: "different"},
	}
	if got := idx.MarkDuplicates(again); got != 2 {
		t.Errorf("marked = %d, want 2", got)
	}
}

func TestDedupIndexEmpty(t *testing.T) {
	idx := NewDedupIndex()
	if idx.Size() != 0 {
		t.Errorf("Size = %d, want 0", idx.Size())
	}
	if idx.MarkDuplicates([]ledger.Directive{txn(1, "a", "Assets:Checking", "1.00 USD")}) != 0 {
		t.Error("empty index marked a duplicate")
	}
}
