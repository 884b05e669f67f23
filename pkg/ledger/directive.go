package ledger

import (
	"sort"
	"time"
)

// Transaction flags.
const (
	FlagOK      = "*" // confirmed
	FlagWarning = "!" // needs review
)

// Meta carries free-form key/value annotations on a directive. Keys
// beginning with "__" are internal markers and are never printed.
type Meta map[string]string

// Directive is a dated ledger entry: *Transaction, *Balance or *Note.
type Directive interface {
	// EntryDate returns the date the directive takes effect.
	EntryDate() time.Time
	directive()
}

// Posting is one leg of a transaction. A nil Amount leaves the leg to be
// inferred when the transaction is balanced.
type Posting struct {
	Account Account
	Amount  *Amount
}

// Transaction is a dated movement of amounts between accounts.
type Transaction struct {
	Date      time.Time
	Flag      string
	Payee     string
	Narration string
	Tags      []string
	Meta      Meta
	Postings  []Posting
}

func (t *Transaction) EntryDate() time.Time { return t.Date }
func (t *Transaction) directive()           {}

// Balance asserts the balance of an account on a date.
type Balance struct {
	Date    time.Time
	Account Account
	Amount  Amount
	Meta    Meta
}

func (b *Balance) EntryDate() time.Time { return b.Date }
func (b *Balance) directive()           {}

// Note attaches a dated comment to an account.
type Note struct {
	Date    time.Time
	Account Account
	Comment string
	Meta    Meta
}

func (n *Note) EntryDate() time.Time { return n.Date }
func (n *Note) directive()           {}

// sortOrder ranks directives sharing a date: balance assertions describe
// the state at the open of the day and sort first.
func sortOrder(d Directive) int {
	if _, ok := d.(*Balance); ok {
		return -1
	}
	return 0
}

// sortTitle breaks ties between transactions sharing a date.
func sortTitle(d Directive) string {
	if t, ok := d.(*Transaction); ok {
		return t.Payee + "\x00" + t.Narration
	}
	return ""
}

// SortEntries orders directives by date, then by kind, then by payee and
// narration, preserving the original order of otherwise-equal entries.
func SortEntries(entries []Directive) {
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i], entries[j]
		if !di.EntryDate().Equal(dj.EntryDate()) {
			return di.EntryDate().Before(dj.EntryDate())
		}
		if oi, oj := sortOrder(di), sortOrder(dj); oi != oj {
			return oi < oj
		}
		return sortTitle(di) < sortTitle(dj)
	})
}
