package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"meli-trends/models"
)

// WriteRaw replaces the raw snapshot at path with the collected listings.
// Zero listings still produce a header-only file.
func WriteRaw(path string, listings []*models.Listing) error {
	return writeSnapshot(path, models.RawColumns, listings)
}

// WriteProcessed replaces the processed snapshot at path with the ranked listings.
func WriteProcessed(path string, listings []*models.Listing) error {
	return writeSnapshot(path, models.ProcessedColumns, listings)
}

func writeSnapshot(path string, header []string, listings []*models.Listing) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, l := range listings {
		if err := w.Write(encodeListing(l, header)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}
	return WriteFileAtomic(path, buf.Bytes())
}

// WriteFileAtomic writes data to a temp file next to path and renames it
// into place, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("file: create output dir: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("file: create temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("file: write %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("file: close temp file: %w", err)
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("file: chmod: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("file: replace %q: %w", path, err)
	}
	return nil
}
