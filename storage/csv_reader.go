package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"meli-trends/models"
)

// ErrSnapshotMissing is returned when the snapshot file does not exist.
var ErrSnapshotMissing = errors.New("snapshot missing")

// ReadStats describes how a snapshot load went.
type ReadStats struct {
	Rows        int
	SkippedRows int
	// FileError is set when the whole file could not be read and was
	// treated as empty.
	FileError error
}

// ReadRecords loads a snapshot file into raw records.
//
// An absent file yields ErrSnapshotMissing with no records. A structurally
// empty file yields no records and no error. Rows the CSV parser rejects are
// skipped; any other failure drops the whole load and is reported in
// ReadStats.FileError rather than returned.
func ReadRecords(path string) ([]models.RawRecord, ReadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ReadStats{}, ErrSnapshotMissing
		}
		return nil, ReadStats{FileError: fmt.Errorf("csv: open %q: %w", path, err)}, nil
	}
	defer f.Close()

	return DecodeRecords(f)
}

// DecodeRecords parses CSV text with a header row into raw records.
func DecodeRecords(r io.Reader) ([]models.RawRecord, ReadStats, error) {
	var stats ReadStats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, stats, nil
	}
	if err != nil {
		stats.FileError = fmt.Errorf("csv: read header: %w", err)
		return nil, stats, nil
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var records []models.RawRecord
	lastErrLine := -1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) && perr.Line != lastErrLine {
				lastErrLine = perr.Line
				stats.SkippedRows++
				continue
			}
			stats.FileError = fmt.Errorf("csv: read row: %w", err)
			return nil, ReadStats{FileError: stats.FileError}, nil
		}
		if isBlankRow(row) {
			continue
		}

		rec := make(models.RawRecord, len(header))
		for i, col := range header {
			if col == "" || i >= len(row) {
				continue
			}
			rec[col] = row[i]
		}
		records = append(records, rec)
	}

	stats.Rows = len(records)
	return records, stats, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
