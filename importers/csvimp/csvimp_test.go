package csvimp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tally/pkg/ingest"
	"tally/pkg/ingest/cache"
	"tally/pkg/ledger"
	"tally/pkg/regtest"
)

const sample = `Date,Description,Amount,Balance
2026-03-02,COFFEE SHOP,-4.50,995.50
2026-03-05,PAYROLL,"2,000.00","2,995.50"
`

func config() Config {
	return Config{
		Name:     "acme-checking",
		Account:  "Assets:US:Acme:Checking",
		Currency: "USD",
		Columns: map[Col]int{
			ColDate:      0,
			ColNarration: 1,
			ColAmount:    2,
			ColBalance:   3,
		},
		Header: true,
		Match:  "Date,Description",
	}
}

func writeSample(t *testing.T, contents string) *cache.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "download.csv")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return cache.New(path)
}

func TestNewValidates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing name", func(c *Config) { c.Name = "" }},
		{"bad account", func(c *Config) { c.Account = "not an account" }},
		{"missing currency", func(c *Config) { c.Currency = "" }},
		{"missing amount column", func(c *Config) { delete(c.Columns, ColAmount) }},
		{"amount mixed with debit", func(c *Config) { c.Columns[ColDebit] = 4 }},
		{"missing date column", func(c *Config) { delete(c.Columns, ColDate) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config()
			tt.mutate(&cfg)
			if _, err := New(cfg); err == nil {
				t.Error("New = nil error, want error")
			}
		})
	}
	if _, err := New(config()); err != nil {
		t.Errorf("New with valid config: %v", err)
	}
}

func TestIdentify(t *testing.T) {
	imp, err := New(config())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ok, err := imp.Identify(writeSample(t, sample))
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if !ok {
		t.Error("Identify = false for matching sample")
	}

	other := writeSample(t, "Completely,Different,Header\n1,2,3\n")
	ok, err = imp.Identify(other)
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if ok {
		t.Error("Identify = true for foreign header")
	}
}

func TestIdentifyRejectsOtherExtensions(t *testing.T) {
	imp, err := New(config())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	path := filepath.Join(t.TempDir(), "download.pdf")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	ok, err := imp.Identify(cache.New(path))
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if ok {
		t.Error("Identify = true for .pdf file")
	}
}

func TestExtract(t *testing.T) {
	imp, err := New(config())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	entries, err := imp.Extract(writeSample(t, sample), nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := `2026-03-02 * "COFFEE SHOP"
  Assets:US:Acme:Checking  -4.50 USD

2026-03-05 * "PAYROLL"
  Assets:US:Acme:Checking  2000.00 USD

2026-03-06 balance Assets:US:Acme:Checking  2995.50 USD
`
	if diff := cmp.Diff(want, ledger.Sprint(entries)); diff != "" {
		t.Errorf("Extract mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractInvert(t *testing.T) {
	cfg := config()
	cfg.Invert = true
	imp, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	entries, err := imp.Extract(writeSample(t, sample), nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	first := entries[0].(*ledger.Transaction)
	if got := first.Postings[0].Amount.String(); got != "4.50 USD" {
		t.Errorf("inverted amount = %q, want 4.50 USD", got)
	}
}

func TestExtractSplitColumns(t *testing.T) {
	cfg := config()
	cfg.Delimiter = ';'
	cfg.Columns = map[Col]int{
		ColDate:      0,
		ColNarration: 1,
		ColDebit:     2,
		ColCredit:    3,
	}
	imp, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	split := "Date;Description;Debit;Credit\n" +
		"2026-03-02;COFFEE SHOP;4.50;\n" +
		"2026-03-05;PAYROLL;;2000.00\n"
	entries, err := imp.Extract(writeSample(t, split), nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Extract yielded %d entries, want 2", len(entries))
	}
	if got := entries[0].(*ledger.Transaction).Postings[0].Amount.String(); got != "-4.50 USD" {
		t.Errorf("debit amount = %q, want -4.50 USD", got)
	}
	if got := entries[1].(*ledger.Transaction).Postings[0].Amount.String(); got != "2000.00 USD" {
		t.Errorf("credit amount = %q, want 2000.00 USD", got)
	}
}

func TestExtractBadRow(t *testing.T) {
	imp, err := New(config())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	bad := "Date,Description,Amount,Balance\n03/02/2026,COFFEE,-4.50,995.50\n"
	_, err = imp.Extract(writeSample(t, bad), nil)
	if err == nil {
		t.Fatal("Extract = nil error for bad date")
	}
	if !strings.Contains(err.Error(), "row 1") {
		t.Errorf("error %q does not name the row", err)
	}
}

func TestFileDateAndName(t *testing.T) {
	imp, err := New(config())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f := writeSample(t, sample)
	date, err := imp.FileDate(f)
	if err != nil {
		t.Fatalf("FileDate: %v", err)
	}
	if got := date.Format(ledger.DateLayout); got != "2026-03-05" {
		t.Errorf("FileDate = %s, want 2026-03-05", got)
	}
	name, err := imp.FileName(f)
	if err != nil {
		t.Fatalf("FileName: %v", err)
	}
	if name != "acme-checking.csv" {
		t.Errorf("FileName = %q, want acme-checking.csv", name)
	}
}

func TestCapabilities(t *testing.T) {
	imp, err := New(config())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := ingest.Capabilities{Extract: true, FileDate: true, FileName: true}
	if got := ingest.CapabilitiesOf(imp); got != want {
		t.Errorf("CapabilitiesOf = %+v, want %+v", got, want)
	}
}

func TestGoldenSamples(t *testing.T) {
	imp, err := New(config())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	regtest.CompareSampleFiles(t, imp, "testdata")
}
