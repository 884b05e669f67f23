// Package csvimp implements a configurable importer for CSV statement
// exports. A column map describes where dates, narrations and amounts
// live, so one importer type covers most bank CSV dialects.
package csvimp

import (
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tally/pkg/ingest/cache"
	"tally/pkg/ledger"
)

// Col names a role a CSV column can play.
type Col string

const (
	ColDate      Col = "date"
	ColPayee     Col = "payee"
	ColNarration Col = "narration"
	ColAmount    Col = "amount"
	// ColDebit and ColCredit are the split-amount alternative to
	// ColAmount, for statements with separate debit and credit columns.
	ColDebit   Col = "debit"
	ColCredit  Col = "credit"
	ColBalance Col = "balance"
)

// Config describes one CSV statement layout.
type Config struct {
	// Name identifies the importer, e.g. "acme-checking".
	Name string
	// Account is the ledger account postings are filed under.
	Account ledger.Account
	// Currency applies to every amount in the file.
	Currency string
	// Columns maps roles to zero-based column indexes. Date and narration
	// are required, along with either amount or debit/credit; payee and
	// balance are optional.
	Columns map[Col]int
	// Delimiter is the field separator. Defaults to ','.
	Delimiter rune
	// DateLayout parses the date column. Defaults to "2006-01-02".
	DateLayout string
	// Header drops the first row before parsing.
	Header bool
	// Match, when set, must appear in the head of the file for Identify
	// to claim it.
	Match string
	// FiledName is the name used when archiving. Defaults to Name plus
	// ".csv".
	FiledName string
	// Invert flips the sign of every amount, for statements that list
	// debits as positive numbers.
	Invert bool
}

// Importer reads transactions out of one CSV layout.
type Importer struct {
	cfg Config
}

// New validates the configuration and builds the importer.
func New(cfg Config) (*Importer, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("csvimp: config needs a name")
	}
	if !cfg.Account.Valid() {
		return nil, fmt.Errorf("csvimp: %s: invalid account %q", cfg.Name, cfg.Account)
	}
	if cfg.Currency == "" {
		return nil, fmt.Errorf("csvimp: %s: config needs a currency", cfg.Name)
	}
	for _, col := range []Col{ColDate, ColNarration} {
		if _, ok := cfg.Columns[col]; !ok {
			return nil, fmt.Errorf("csvimp: %s: column map needs %q", cfg.Name, col)
		}
	}
	_, hasAmount := cfg.Columns[ColAmount]
	_, hasDebit := cfg.Columns[ColDebit]
	_, hasCredit := cfg.Columns[ColCredit]
	switch {
	case hasAmount && (hasDebit || hasCredit):
		return nil, fmt.Errorf("csvimp: %s: column map mixes %q with debit/credit", cfg.Name, ColAmount)
	case !hasAmount && !hasDebit && !hasCredit:
		return nil, fmt.Errorf("csvimp: %s: column map needs %q or debit/credit", cfg.Name, ColAmount)
	}
	if cfg.DateLayout == "" {
		cfg.DateLayout = "2006-01-02"
	}
	if cfg.FiledName == "" {
		cfg.FiledName = cfg.Name + ".csv"
	}
	return &Importer{cfg: cfg}, nil
}

// Name implements ingest.Importer.
func (imp *Importer) Name() string { return imp.cfg.Name }

// Identify claims CSV files whose head contains the configured match.
func (imp *Importer) Identify(f *cache.File) (bool, error) {
	if !strings.EqualFold(filepath.Ext(f.Name), ".csv") {
		return false, nil
	}
	mt, err := f.MimeType()
	if err != nil {
		return false, err
	}
	if !strings.HasPrefix(mt, "text/") {
		return false, nil
	}
	if imp.cfg.Match == "" {
		return true, nil
	}
	head, err := f.Head(0)
	if err != nil {
		return false, err
	}
	return strings.Contains(head, imp.cfg.Match), nil
}

// Account implements ingest.Importer.
func (imp *Importer) Account(f *cache.File) (ledger.Account, error) {
	return imp.cfg.Account, nil
}

// Extract parses one transaction per data row, in file order. When a
// balance column is configured, the row with the latest date also yields a
// balance assertion dated the following day.
func (imp *Importer) Extract(f *cache.File, existing []ledger.Directive) ([]ledger.Directive, error) {
	rows, err := imp.rows(f)
	if err != nil {
		return nil, err
	}

	var entries []ledger.Directive
	var latest *row
	for i := range rows {
		r := &rows[i]
		amount := ledger.NewAmount(r.amount, imp.cfg.Currency)
		entries = append(entries, &ledger.Transaction{
			Date:      r.date,
			Payee:     r.payee,
			Narration: r.narration,
			Postings:  []ledger.Posting{{Account: imp.cfg.Account, Amount: &amount}},
		})
		if latest == nil || r.date.After(latest.date) {
			latest = r
		}
	}
	if latest != nil && latest.balance != nil {
		entries = append(entries, &ledger.Balance{
			Date:    latest.date.AddDate(0, 0, 1),
			Account: imp.cfg.Account,
			Amount:  ledger.NewAmount(*latest.balance, imp.cfg.Currency),
		})
	}
	return entries, nil
}

// FileDate returns the latest transaction date in the file.
func (imp *Importer) FileDate(f *cache.File) (time.Time, error) {
	rows, err := imp.rows(f)
	if err != nil {
		return time.Time{}, err
	}
	var latest time.Time
	for _, r := range rows {
		if r.date.After(latest) {
			latest = r.date
		}
	}
	return latest, nil
}

// FileName implements ingest.FileNamer.
func (imp *Importer) FileName(f *cache.File) (string, error) {
	return imp.cfg.FiledName, nil
}

// row is one parsed data row.
type row struct {
	date      time.Time
	payee     string
	narration string
	amount    decimal.Decimal
	balance   *decimal.Decimal
}

func (imp *Importer) rows(f *cache.File) ([]row, error) {
	contents, err := f.Contents()
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(strings.NewReader(contents))
	reader.TrimLeadingSpace = true
	if imp.cfg.Delimiter != 0 {
		reader.Comma = imp.cfg.Delimiter
	}
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvimp: %s: parse %s: %w", imp.cfg.Name, f.Name, err)
	}
	if imp.cfg.Header && len(records) > 0 {
		records = records[1:]
	}

	rows := make([]row, 0, len(records))
	for i, record := range records {
		r, err := imp.parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("csvimp: %s: %s row %d: %w", imp.cfg.Name, f.Name, i+1, err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func (imp *Importer) parseRow(record []string) (row, error) {
	var r row
	field := func(col Col) (string, bool, error) {
		idx, ok := imp.cfg.Columns[col]
		if !ok {
			return "", false, nil
		}
		if idx < 0 || idx >= len(record) {
			return "", false, fmt.Errorf("no column %d for %q", idx, col)
		}
		return strings.TrimSpace(record[idx]), true, nil
	}

	text, _, err := field(ColDate)
	if err != nil {
		return r, err
	}
	r.date, err = time.Parse(imp.cfg.DateLayout, text)
	if err != nil {
		return r, err
	}

	r.narration, _, err = field(ColNarration)
	if err != nil {
		return r, err
	}
	r.payee, _, err = field(ColPayee)
	if err != nil {
		return r, err
	}

	r.amount, err = imp.amount(field)
	if err != nil {
		return r, err
	}
	if imp.cfg.Invert {
		r.amount = r.amount.Neg()
	}

	if text, ok, err := field(ColBalance); err != nil {
		return r, err
	} else if ok && text != "" {
		bal, err := parseNumber(text)
		if err != nil {
			return r, err
		}
		r.balance = &bal
	}
	return r, nil
}

// amount reads the single amount column, or combines a split layout:
// credits count positive, debits negative.
func (imp *Importer) amount(field func(Col) (string, bool, error)) (decimal.Decimal, error) {
	if text, ok, err := field(ColAmount); err != nil {
		return decimal.Decimal{}, err
	} else if ok {
		return parseNumber(text)
	}
	credit, err := sideAmount(field, ColCredit)
	if err != nil {
		return decimal.Decimal{}, err
	}
	debit, err := sideAmount(field, ColDebit)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return credit.Sub(debit), nil
}

// sideAmount reads one side of a split debit/credit layout; a missing or
// empty cell counts as zero.
func sideAmount(field func(Col) (string, bool, error), col Col) (decimal.Decimal, error) {
	text, ok, err := field(col)
	if err != nil || !ok || text == "" {
		return decimal.Decimal{}, err
	}
	return parseNumber(text)
}

// parseNumber reads a decimal, tolerating thousands separators such as
// "2,000.00".
func parseNumber(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
}
