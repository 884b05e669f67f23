// Package camtimp implements an importer for ISO 20022 camt.053 account
// statements, the XML format European banks serve. It extracts booked
// entries and the closing balance, and dates files by the statement's
// creation timestamp. camt files keep their download name when archived,
// so the importer deliberately has no renaming ability.
package camtimp

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/shopspring/decimal"

	"tally/pkg/ingest/cache"
	"tally/pkg/ledger"
)

// Namespace is the prefix shared by all camt.053 schema versions.
const Namespace = "urn:iso:std:iso:20022:tech:xsd:camt.053"

// Config describes one camt.053 source.
type Config struct {
	// Name identifies the importer, e.g. "volksbank-giro".
	Name string
	// Account is the ledger account postings are filed under.
	Account ledger.Account
	// IBAN, when set, restricts the importer to statements of that
	// account.
	IBAN string
}

// Importer reads booked entries out of camt.053 statements.
type Importer struct {
	cfg Config
}

// New validates the configuration and builds the importer.
func New(cfg Config) (*Importer, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("camtimp: config needs a name")
	}
	if !cfg.Account.Valid() {
		return nil, fmt.Errorf("camtimp: %s: invalid account %q", cfg.Name, cfg.Account)
	}
	return &Importer{cfg: cfg}, nil
}

// Name implements ingest.Importer.
func (imp *Importer) Name() string { return imp.cfg.Name }

// Identify claims .xml files in the camt.053 namespace and, when an IBAN
// is configured, mentioning it near the top.
func (imp *Importer) Identify(f *cache.File) (bool, error) {
	if !strings.EqualFold(filepath.Ext(f.Name), ".xml") {
		return false, nil
	}
	head, err := f.Head(0)
	if err != nil {
		return false, err
	}
	if !strings.Contains(head, Namespace) {
		return false, nil
	}
	if imp.cfg.IBAN != "" && !strings.Contains(head, imp.cfg.IBAN) {
		return false, nil
	}
	return true, nil
}

// Account implements ingest.Importer.
func (imp *Importer) Account(f *cache.File) (ledger.Account, error) {
	return imp.cfg.Account, nil
}

// Extract converts booked entries in statement order, then asserts the
// closing booked balance dated the following day.
func (imp *Importer) Extract(f *cache.File, existing []ledger.Directive) ([]ledger.Directive, error) {
	doc, err := imp.parse(f)
	if err != nil {
		return nil, err
	}

	var entries []ledger.Directive
	for _, stmt := range xmlquery.Find(doc, "//BkToCstmrStmt/Stmt") {
		if !imp.wantStatement(stmt) {
			continue
		}
		for _, ntry := range xmlquery.Find(stmt, "Ntry") {
			tx, err := imp.entry(ntry)
			if err != nil {
				return nil, fmt.Errorf("camtimp: %s: %s: %w", imp.cfg.Name, f.Name, err)
			}
			entries = append(entries, tx)
		}
		bal, err := imp.closingBalance(stmt)
		if err != nil {
			return nil, fmt.Errorf("camtimp: %s: %s: %w", imp.cfg.Name, f.Name, err)
		}
		if bal != nil {
			entries = append(entries, bal)
		}
	}
	return entries, nil
}

// FileDate returns the statement creation date.
func (imp *Importer) FileDate(f *cache.File) (time.Time, error) {
	doc, err := imp.parse(f)
	if err != nil {
		return time.Time{}, err
	}
	node := xmlquery.FindOne(doc, "//BkToCstmrStmt/GrpHdr/CreDtTm")
	if node == nil {
		node = xmlquery.FindOne(doc, "//BkToCstmrStmt/Stmt/CreDtTm")
	}
	if node == nil {
		return time.Time{}, nil
	}
	return parseDate(node.InnerText())
}

func (imp *Importer) parse(f *cache.File) (*xmlquery.Node, error) {
	contents, err := f.Contents()
	if err != nil {
		return nil, err
	}
	doc, err := xmlquery.Parse(strings.NewReader(contents))
	if err != nil {
		return nil, fmt.Errorf("camtimp: %s: parse %s: %w", imp.cfg.Name, f.Name, err)
	}
	return doc, nil
}

func (imp *Importer) wantStatement(stmt *xmlquery.Node) bool {
	if imp.cfg.IBAN == "" {
		return true
	}
	iban := xmlquery.FindOne(stmt, "Acct/Id/IBAN")
	return iban != nil && strings.TrimSpace(iban.InnerText()) == imp.cfg.IBAN
}

// entry converts one Ntry element into a transaction.
func (imp *Importer) entry(ntry *xmlquery.Node) (*ledger.Transaction, error) {
	amount, currency, err := readAmount(ntry)
	if err != nil {
		return nil, err
	}
	if ind := xmlquery.FindOne(ntry, "CdtDbtInd"); ind != nil && strings.TrimSpace(ind.InnerText()) == "DBIT" {
		amount = amount.Neg()
	}

	dateNode := xmlquery.FindOne(ntry, "BookgDt/Dt")
	if dateNode == nil {
		dateNode = xmlquery.FindOne(ntry, "BookgDt/DtTm")
	}
	if dateNode == nil {
		dateNode = xmlquery.FindOne(ntry, "ValDt/Dt")
	}
	if dateNode == nil {
		return nil, fmt.Errorf("entry without booking or value date")
	}
	date, err := parseDate(dateNode.InnerText())
	if err != nil {
		return nil, err
	}

	narration := ""
	if n := xmlquery.FindOne(ntry, "NtryDtls/TxDtls/RmtInf/Ustrd"); n != nil {
		narration = strings.TrimSpace(n.InnerText())
	} else if n := xmlquery.FindOne(ntry, "AddtlNtryInf"); n != nil {
		narration = strings.TrimSpace(n.InnerText())
	}

	a := ledger.NewAmount(amount, currency)
	return &ledger.Transaction{
		Date:      date,
		Narration: narration,
		Postings:  []ledger.Posting{{Account: imp.cfg.Account, Amount: &a}},
	}, nil
}

// closingBalance returns a balance assertion from the CLBD balance, dated
// the day after, or nil when the statement has none.
func (imp *Importer) closingBalance(stmt *xmlquery.Node) (*ledger.Balance, error) {
	for _, bal := range xmlquery.Find(stmt, "Bal") {
		cd := xmlquery.FindOne(bal, "Tp/CdOrPrtry/Cd")
		if cd == nil || strings.TrimSpace(cd.InnerText()) != "CLBD" {
			continue
		}
		amount, currency, err := readAmount(bal)
		if err != nil {
			return nil, err
		}
		if ind := xmlquery.FindOne(bal, "CdtDbtInd"); ind != nil && strings.TrimSpace(ind.InnerText()) == "DBIT" {
			amount = amount.Neg()
		}
		dateNode := xmlquery.FindOne(bal, "Dt/Dt")
		if dateNode == nil {
			dateNode = xmlquery.FindOne(bal, "Dt/DtTm")
		}
		if dateNode == nil {
			return nil, fmt.Errorf("closing balance without date")
		}
		date, err := parseDate(dateNode.InnerText())
		if err != nil {
			return nil, err
		}
		return &ledger.Balance{
			Date:    date.AddDate(0, 0, 1),
			Account: imp.cfg.Account,
			Amount:  ledger.NewAmount(amount, currency),
		}, nil
	}
	return nil, nil
}

// readAmount reads the Amt child of a node along with its Ccy attribute.
func readAmount(node *xmlquery.Node) (decimal.Decimal, string, error) {
	amt := xmlquery.FindOne(node, "Amt")
	if amt == nil {
		return decimal.Decimal{}, "", fmt.Errorf("element without Amt")
	}
	n, err := decimal.NewFromString(strings.TrimSpace(amt.InnerText()))
	if err != nil {
		return decimal.Decimal{}, "", fmt.Errorf("bad Amt %q: %w", amt.InnerText(), err)
	}
	currency := amt.SelectAttr("Ccy")
	if currency == "" {
		return decimal.Decimal{}, "", fmt.Errorf("Amt without Ccy attribute")
	}
	return n, currency, nil
}

// parseDate reads an ISO date or date-time, keeping the date part.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		s = s[:10]
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: %w", s, err)
	}
	return d, nil
}
