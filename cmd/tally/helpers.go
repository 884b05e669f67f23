package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"tally/internal/config"
	"tally/internal/convdb"
	"tally/pkg/ingest"
	"tally/pkg/ingest/cache"
)

// loadConfig reads the --config file and instantiates its importers.
func loadConfig() (*config.File, []ingest.Importer, error) {
	cfg, err := config.Load(rootFlags.config)
	if err != nil {
		return nil, nil, err
	}
	importers, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("config %s: %w", rootFlags.config, err)
	}
	if len(importers) == 0 {
		return nil, nil, fmt.Errorf("config %s declares no importers", rootFlags.config)
	}
	return cfg, importers, nil
}

// openStore opens the persistent conversion cache when one is configured.
// A nil store just disables persistence; the returned close function is
// always safe to call.
func openStore(cfg *config.File) (cache.Store, func(), error) {
	path := cfg.Cache
	if rootFlags.cache != "" {
		path = rootFlags.cache
	}
	if path == "" {
		return nil, func() {}, nil
	}
	db, err := convdb.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open conversion cache: %w", err)
	}
	return db, func() { _ = db.Close() }, nil
}

// pickImporter resolves --importer against the configured registry. With
// exactly one importer configured the flag may be omitted.
func pickImporter(importers []ingest.Importer, name string) (ingest.Importer, error) {
	if name == "" {
		if len(importers) == 1 {
			return importers[0], nil
		}
		return nil, fmt.Errorf("--importer is required when %d importers are configured", len(importers))
	}
	names := make([]string, len(importers))
	for i, imp := range importers {
		if imp.Name() == name {
			return imp, nil
		}
		names[i] = imp.Name()
	}
	return nil, fmt.Errorf("importer %q not found (available: %s)", name, strings.Join(names, ", "))
}

// walkInputs expands the positional arguments into a flat list of regular
// files, walking directories recursively in lexical order.
func walkInputs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
