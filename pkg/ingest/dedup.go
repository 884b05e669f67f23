package ingest

import (
	"time"

	"tally/pkg/ledger"
)

// DedupWindowDays is how far apart two dates may be for entries to still
// count as duplicates of each other. Banks commonly book the same movement
// a day or two apart across exports.
const DedupWindowDays = 2

// DedupIndex tracks entries already in the ledger, bucketed by date, so
// freshly extracted entries can be checked against them.
type DedupIndex struct {
	cmp    Comparator
	byDate map[time.Time][]ledger.Directive
	size   int
}

// NewDedupIndex creates an empty index with the default comparator.
func NewDedupIndex() *DedupIndex {
	return NewDedupIndexWith(DefaultComparator())
}

// NewDedupIndexWith creates an empty index judging duplicates with cmp.
func NewDedupIndexWith(cmp Comparator) *DedupIndex {
	return &DedupIndex{cmp: cmp, byDate: make(map[time.Time][]ledger.Directive)}
}

// IndexEntries builds an index over the given entries.
func IndexEntries(entries []ledger.Directive) *DedupIndex {
	idx := NewDedupIndex()
	idx.AddEntries(entries)
	return idx
}

// AddEntries indexes the given entries, so later extractions can be
// checked against them.
func (d *DedupIndex) AddEntries(entries []ledger.Directive) {
	for _, e := range entries {
		day := dateKey(e.EntryDate())
		d.byDate[day] = append(d.byDate[day], e)
		d.size++
	}
}

// Size returns the number of indexed entries.
func (d *DedupIndex) Size() int { return d.size }

// HasSimilar reports whether the index holds an entry the comparator
// considers a duplicate of e.
func (d *DedupIndex) HasSimilar(e ledger.Directive) bool {
	day := dateKey(e.EntryDate())
	for delta := -d.cmp.Window; delta <= d.cmp.Window; delta++ {
		for _, known := range d.byDate[day.AddDate(0, 0, delta)] {
			if d.cmp.Similar(known, e) {
				return true
			}
		}
	}
	return false
}

// MarkDuplicates flags every entry that has an indexed duplicate by
// setting DuplicateMeta on it, and returns how many were flagged.
func (d *DedupIndex) MarkDuplicates(entries []ledger.Directive) int {
	marked := 0
	for _, e := range entries {
		if d.HasSimilar(e) {
			setMeta(e, DuplicateMeta, "true")
			marked++
		}
	}
	return marked
}

// dateKey normalizes a date to midnight UTC for bucketing.
func dateKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func setMeta(d ledger.Directive, key, value string) {
	switch d := d.(type) {
	case *ledger.Transaction:
		if d.Meta == nil {
			d.Meta = ledger.Meta{}
		}
		d.Meta[key] = value
	case *ledger.Balance:
		if d.Meta == nil {
			d.Meta = ledger.Meta{}
		}
		d.Meta[key] = value
	case *ledger.Note:
		if d.Meta == nil {
			d.Meta = ledger.Meta{}
		}
		d.Meta[key] = value
	}
}
