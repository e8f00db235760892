package storage

import (
	"encoding/csv"
	"fmt"
	"os"

	"svescraper/internal/scraper"
)

// WriteTSV writes records as a tab-separated file with the canonical header
// row. Fields missing from a record are written as empty strings; keys
// outside the column set are dropped.
func WriteTSV(path string, records []scraper.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write(scraper.Columns); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(scraper.Columns))
	for _, rec := range records {
		for i, col := range scraper.Columns {
			row[i] = rec[col]
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
