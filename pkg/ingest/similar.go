package ingest

import (
	"time"

	"github.com/shopspring/decimal"

	"tally/pkg/ledger"
)

// Comparator decides whether two directives describe the same movement.
type Comparator struct {
	// Window is how many days apart the dates of two duplicates may be.
	Window int
	// Epsilon is the tolerated relative difference between amounts, e.g.
	// 0.05 for 5%. Zero requires exact equality.
	Epsilon decimal.Decimal
}

// DefaultComparator tolerates the couple of days by which banks shift the
// same booking between exports, and requires amounts to match exactly.
func DefaultComparator() Comparator {
	return Comparator{Window: DedupWindowDays}
}

// Similar reports whether b could be a duplicate of a. Directives of
// different kinds are never similar.
func (c Comparator) Similar(a, b ledger.Directive) bool {
	delta := a.EntryDate().Sub(b.EntryDate())
	if delta < 0 {
		delta = -delta
	}
	if delta > time.Duration(c.Window)*24*time.Hour {
		return false
	}
	switch a := a.(type) {
	case *ledger.Transaction:
		b, ok := b.(*ledger.Transaction)
		if !ok {
			return false
		}
		return c.amountsClose(amountsMap(a), amountsMap(b))
	case *ledger.Balance:
		b, ok := b.(*ledger.Balance)
		if !ok {
			return false
		}
		if a.Account != b.Account || a.Amount.Currency != b.Amount.Currency {
			return false
		}
		return c.close(a.Amount.Number, b.Amount.Number)
	case *ledger.Note:
		b, ok := b.(*ledger.Note)
		if !ok {
			return false
		}
		return a.Account == b.Account && a.Comment == b.Comment
	}
	return false
}

// amountsMap sums the posting amounts of a transaction per account and
// currency. Postings with no amount contribute nothing.
func amountsMap(t *ledger.Transaction) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal, len(t.Postings))
	for _, p := range t.Postings {
		if p.Amount == nil {
			continue
		}
		key := string(p.Account) + " " + p.Amount.Currency
		sums[key] = sums[key].Add(p.Amount.Number)
	}
	return sums
}

// amountsClose reports whether both maps cover the same accounts and every
// pair of sums is within Epsilon. A transaction with no amounts can never
// be a duplicate.
func (c Comparator) amountsClose(a, b map[string]decimal.Decimal) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	for key, na := range a {
		nb, ok := b[key]
		if !ok || !c.close(na, nb) {
			return false
		}
	}
	return true
}

func (c Comparator) close(a, b decimal.Decimal) bool {
	if a.Equal(b) {
		return true
	}
	if c.Epsilon.IsZero() {
		return false
	}
	diff := a.Sub(b).Abs()
	scale := decimal.Max(a.Abs(), b.Abs())
	return diff.LessThanOrEqual(c.Epsilon.Mul(scale))
}
