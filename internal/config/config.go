// Package config loads the importer registry: a YAML or JSON file
// declaring which importers run and how each one is configured, plus the
// paths the commands share (existing ledger, archive root, conversion
// cache).
package config

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"tally/importers/camtimp"
	"tally/importers/csvimp"
	"tally/importers/fileonly"
	"tally/importers/ofximp"
	"tally/pkg/ingest"
	"tally/pkg/ledger"
)

//go:embed example.yaml
var exampleFS embed.FS

// Example returns a starter configuration with one importer of each type.
func Example() string {
	data, _ := exampleFS.ReadFile("example.yaml")
	return string(data)
}

// File is the parsed configuration.
type File struct {
	// Archive is the root directory files are archived into. Defaults to
	// "documents".
	Archive string `yaml:"archive" json:"archive"`
	// Cache is the conversion cache database path. Empty disables the
	// persistent cache.
	Cache string `yaml:"cache" json:"cache"`
	// Importers declares the registry, in matching order.
	Importers []Entry `yaml:"importers" json:"importers"`
}

// Entry configures one importer. Type selects the implementation; the
// remaining fields apply where the type uses them.
type Entry struct {
	Type     string `yaml:"type" json:"type"`
	Name     string `yaml:"name" json:"name"`
	Account  string `yaml:"account" json:"account"`
	Currency string `yaml:"currency" json:"currency"`

	// CSV layout.
	Columns    map[string]int `yaml:"columns" json:"columns"`
	Delimiter  string         `yaml:"delimiter" json:"delimiter"`
	DateLayout string         `yaml:"date_layout" json:"date_layout"`
	Header     bool           `yaml:"header" json:"header"`
	Match      string         `yaml:"match" json:"match"`
	Invert     bool           `yaml:"invert" json:"invert"`

	// Archive naming for types that rename.
	FiledName string `yaml:"filed_name" json:"filed_name"`

	// OFX statement selection.
	AcctID string `yaml:"acct_id" json:"acct_id"`

	// camt.053 statement selection.
	IBAN string `yaml:"iban" json:"iban"`

	// Document matching.
	Glob       string `yaml:"glob" json:"glob"`
	MimePrefix string `yaml:"mime_prefix" json:"mime_prefix"`
}

// Load reads and parses a configuration file. Format is detected by
// extension (.yaml/.yml/.json) or, failing that, by content.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	f, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return f, nil
}

// Parse parses configuration bytes. ext is the file extension as a format
// hint; empty means detect from content.
func Parse(data []byte, ext string) (*File, error) {
	var f File
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			if err := json.Unmarshal(data, &f); err != nil {
				return nil, fmt.Errorf("parse json: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}
	if f.Archive == "" {
		f.Archive = "documents"
	}
	return &f, nil
}

// Build instantiates the declared importers, in declaration order.
func (f *File) Build() ([]ingest.Importer, error) {
	seen := make(map[string]bool, len(f.Importers))
	importers := make([]ingest.Importer, 0, len(f.Importers))
	for i, e := range f.Importers {
		imp, err := e.build()
		if err != nil {
			return nil, fmt.Errorf("importer %d: %w", i+1, err)
		}
		if seen[imp.Name()] {
			return nil, fmt.Errorf("importer %d: duplicate name %q", i+1, imp.Name())
		}
		seen[imp.Name()] = true
		importers = append(importers, imp)
	}
	return importers, nil
}

func (e Entry) build() (ingest.Importer, error) {
	switch e.Type {
	case "csv":
		columns := make(map[csvimp.Col]int, len(e.Columns))
		for name, idx := range e.Columns {
			columns[csvimp.Col(name)] = idx
		}
		var delim rune
		if e.Delimiter != "" {
			runes := []rune(e.Delimiter)
			if len(runes) != 1 {
				return nil, fmt.Errorf("delimiter %q is not a single character", e.Delimiter)
			}
			delim = runes[0]
		}
		return csvimp.New(csvimp.Config{
			Name:       e.Name,
			Account:    ledger.Account(e.Account),
			Currency:   e.Currency,
			Columns:    columns,
			Delimiter:  delim,
			DateLayout: e.DateLayout,
			Header:     e.Header,
			Match:      e.Match,
			FiledName:  e.FiledName,
			Invert:     e.Invert,
		})
	case "ofx":
		return ofximp.New(ofximp.Config{
			Name:      e.Name,
			Account:   ledger.Account(e.Account),
			Currency:  e.Currency,
			AcctID:    e.AcctID,
			FiledName: e.FiledName,
		})
	case "camt":
		return camtimp.New(camtimp.Config{
			Name:    e.Name,
			Account: ledger.Account(e.Account),
			IBAN:    e.IBAN,
		})
	case "file":
		return fileonly.New(fileonly.Config{
			Name:       e.Name,
			Account:    ledger.Account(e.Account),
			Glob:       e.Glob,
			MimePrefix: e.MimePrefix,
		})
	}
	return nil, fmt.Errorf("unknown type %q (known: csv, ofx, camt, file)", e.Type)
}
