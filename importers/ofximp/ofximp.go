// Package ofximp implements an importer for OFX and QFX downloads in the
// SGML flavor banks actually serve (OFX 1.x). Tags are scanned
// tolerantly: a value runs to the end of its line and close tags are
// optional, as in real exports.
package ofximp

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tally/pkg/ingest/cache"
	"tally/pkg/ledger"
)

// Config describes one OFX source.
type Config struct {
	// Name identifies the importer, e.g. "acme-ofx".
	Name string
	// Account is the ledger account postings are filed under.
	Account ledger.Account
	// Currency is used when the statement carries no CURDEF.
	Currency string
	// AcctID, when set, restricts the importer to statements of that
	// account ID. Files for other accounts are not identified.
	AcctID string
	// FiledName is the name used when archiving. Defaults to Name plus
	// ".ofx".
	FiledName string
}

// Importer reads transactions out of OFX statements.
type Importer struct {
	cfg Config
}

// New validates the configuration and builds the importer.
func New(cfg Config) (*Importer, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("ofximp: config needs a name")
	}
	if !cfg.Account.Valid() {
		return nil, fmt.Errorf("ofximp: %s: invalid account %q", cfg.Name, cfg.Account)
	}
	if cfg.FiledName == "" {
		cfg.FiledName = cfg.Name + ".ofx"
	}
	return &Importer{cfg: cfg}, nil
}

// Name implements ingest.Importer.
func (imp *Importer) Name() string { return imp.cfg.Name }

// Identify claims .ofx and .qfx files that carry an OFX marker and, when
// an account ID is configured, mention it near the top.
func (imp *Importer) Identify(f *cache.File) (bool, error) {
	ext := strings.ToLower(filepath.Ext(f.Name))
	if ext != ".ofx" && ext != ".qfx" {
		return false, nil
	}
	head, err := f.Head(0)
	if err != nil {
		return false, err
	}
	upper := strings.ToUpper(head)
	if !strings.Contains(upper, "OFXHEADER") && !strings.Contains(upper, "<OFX>") {
		return false, nil
	}
	if imp.cfg.AcctID != "" && !strings.Contains(head, imp.cfg.AcctID) {
		return false, nil
	}
	return true, nil
}

// Account implements ingest.Importer.
func (imp *Importer) Account(f *cache.File) (ledger.Account, error) {
	return imp.cfg.Account, nil
}

// Extract converts the statement's transactions, followed by a balance
// assertion dated the day after the ledger balance when one is present.
func (imp *Importer) Extract(f *cache.File, existing []ledger.Directive) ([]ledger.Directive, error) {
	stmts, err := imp.statements(f)
	if err != nil {
		return nil, err
	}

	var entries []ledger.Directive
	for _, st := range stmts {
		currency := st.currency
		if currency == "" {
			currency = imp.cfg.Currency
		}
		if currency == "" {
			return nil, fmt.Errorf("ofximp: %s: %s: no currency in statement or config", imp.cfg.Name, f.Name)
		}
		for _, tx := range st.txns {
			amount := ledger.NewAmount(tx.amount, currency)
			entries = append(entries, &ledger.Transaction{
				Date:      tx.date,
				Narration: tx.narration(),
				Postings:  []ledger.Posting{{Account: imp.cfg.Account, Amount: &amount}},
			})
		}
		if st.balance != nil && !st.balDate.IsZero() {
			entries = append(entries, &ledger.Balance{
				Date:    st.balDate.AddDate(0, 0, 1),
				Account: imp.cfg.Account,
				Amount:  ledger.NewAmount(*st.balance, currency),
			})
		}
	}
	return entries, nil
}

// FileDate returns the ledger balance date when the statement has one,
// else the latest transaction date.
func (imp *Importer) FileDate(f *cache.File) (time.Time, error) {
	stmts, err := imp.statements(f)
	if err != nil {
		return time.Time{}, err
	}
	var latest time.Time
	for _, st := range stmts {
		if !st.balDate.IsZero() && st.balDate.After(latest) {
			latest = st.balDate
		}
	}
	if !latest.IsZero() {
		return latest, nil
	}
	for _, st := range stmts {
		for _, tx := range st.txns {
			if tx.date.After(latest) {
				latest = tx.date
			}
		}
	}
	return latest, nil
}

// FileName implements ingest.FileNamer.
func (imp *Importer) FileName(f *cache.File) (string, error) {
	return imp.cfg.FiledName, nil
}

// statements parses the file and keeps only the statements this importer
// is configured for.
func (imp *Importer) statements(f *cache.File) ([]statement, error) {
	contents, err := f.Contents()
	if err != nil {
		return nil, err
	}
	all, err := parse(contents)
	if err != nil {
		return nil, fmt.Errorf("ofximp: %s: parse %s: %w", imp.cfg.Name, f.Name, err)
	}
	if imp.cfg.AcctID == "" {
		return all, nil
	}
	var kept []statement
	for _, st := range all {
		if st.acctID == imp.cfg.AcctID {
			kept = append(kept, st)
		}
	}
	return kept, nil
}

// ofxTxn is one STMTTRN block.
type ofxTxn struct {
	date   time.Time
	amount decimal.Decimal
	name   string
	memo   string
	fitid  string
}

// narration joins NAME and MEMO when both are informative.
func (tx ofxTxn) narration() string {
	switch {
	case tx.name == "":
		return tx.memo
	case tx.memo == "" || tx.memo == tx.name:
		return tx.name
	}
	return tx.name + " / " + tx.memo
}

// statement is one STMTRS or CCSTMTRS block.
type statement struct {
	currency string
	acctID   string
	txns     []ofxTxn
	balance  *decimal.Decimal
	balDate  time.Time
}

func (st *statement) empty() bool {
	return st.currency == "" && st.acctID == "" && len(st.txns) == 0 && st.balance == nil
}

var tagRe = regexp.MustCompile(`<(/?)([A-Za-z0-9._]+)>([^<\r\n]*)`)

// parse walks the tag stream and assembles statements. Unclosed STMTTRN
// blocks are flushed when the next block or the statement ends.
func parse(contents string) ([]statement, error) {
	var (
		stmts  []statement
		st     statement
		cur    ofxTxn
		inTxn  bool
		inBal  bool
		perr   error
	)
	flushTxn := func() {
		if inTxn {
			st.txns = append(st.txns, cur)
			cur = ofxTxn{}
			inTxn = false
		}
	}
	flushStmt := func() {
		flushTxn()
		if !st.empty() {
			stmts = append(stmts, st)
		}
		st = statement{}
	}

	for _, m := range tagRe.FindAllStringSubmatch(contents, -1) {
		closing, tag, value := m[1] == "/", strings.ToUpper(m[2]), strings.TrimSpace(m[3])
		switch tag {
		case "STMTRS", "CCSTMTRS":
			if closing {
				flushStmt()
			} else if !st.empty() {
				flushStmt()
			}
			continue
		case "STMTTRN":
			flushTxn()
			inTxn = !closing
			continue
		case "LEDGERBAL":
			inBal = !closing
			continue
		case "AVAILBAL":
			// Available balance is not asserted; keep its BALAMT out.
			inBal = false
			continue
		}
		if closing {
			continue
		}
		switch {
		case inTxn:
			switch tag {
			case "DTPOSTED":
				d, err := parseDate(value)
				if err != nil {
					perr = err
				} else {
					cur.date = d
				}
			case "TRNAMT":
				n, err := decimal.NewFromString(value)
				if err != nil {
					perr = fmt.Errorf("bad TRNAMT %q: %w", value, err)
				} else {
					cur.amount = n
				}
			case "NAME":
				cur.name = value
			case "MEMO":
				cur.memo = value
			case "FITID":
				cur.fitid = value
			}
		case inBal:
			switch tag {
			case "BALAMT":
				n, err := decimal.NewFromString(value)
				if err != nil {
					perr = fmt.Errorf("bad BALAMT %q: %w", value, err)
				} else {
					st.balance = &n
				}
			case "DTASOF":
				d, err := parseDate(value)
				if err != nil {
					perr = err
				} else {
					st.balDate = d
				}
			}
		default:
			switch tag {
			case "CURDEF":
				st.currency = value
			case "ACCTID":
				st.acctID = value
			}
		}
		if perr != nil {
			return nil, perr
		}
	}
	flushStmt()
	return stmts, nil
}

// parseDate reads an OFX date, which is "YYYYMMDD" optionally followed by
// a time and timezone suffix.
func parseDate(s string) (time.Time, error) {
	if len(s) < 8 {
		return time.Time{}, fmt.Errorf("bad date %q", s)
	}
	d, err := time.Parse("20060102", s[:8])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: %w", s, err)
	}
	return d, nil
}
