package storage

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"meli-trends/models"
)

// DecodeListing turns a raw record into a typed Listing. Missing cells take
// their value from defaults; a cell that is present but cannot be parsed
// makes the whole row malformed.
func DecodeListing(rec models.RawRecord, defaults models.FieldDefaults) (*models.Listing, error) {
	l := &models.Listing{
		Title:         defaults.Title,
		Price:         defaults.Price,
		SalesCount:    defaults.SalesCount,
		InquiryCount:  defaults.InquiryCount,
		Rating:        defaults.Rating,
		FreeShipping:  defaults.FreeShipping,
		OfficialStore: defaults.OfficialStore,
		URL:           defaults.URL,
		ClusterID:     -1,
	}

	if v, ok := cell(rec, models.ColTitle); ok {
		l.Title = v
	}
	if v, ok := cell(rec, models.ColURL); ok {
		l.URL = v
	}

	var err error
	if v, ok := cell(rec, models.ColPrice); ok {
		if l.Price, err = parseFloat(v); err != nil {
			return nil, fmt.Errorf("%s: %w", models.ColPrice, err)
		}
	}
	if v, ok := cell(rec, models.ColSales); ok {
		if l.SalesCount, err = parseInt(v); err != nil {
			return nil, fmt.Errorf("%s: %w", models.ColSales, err)
		}
	}
	if v, ok := cell(rec, models.ColInquiries); ok {
		if l.InquiryCount, err = parseInt(v); err != nil {
			return nil, fmt.Errorf("%s: %w", models.ColInquiries, err)
		}
	}
	if v, ok := cell(rec, models.ColRating); ok {
		if l.Rating, err = parseFloat(v); err != nil {
			return nil, fmt.Errorf("%s: %w", models.ColRating, err)
		}
	}
	if v, ok := cell(rec, models.ColFreeShipping); ok {
		if l.FreeShipping, err = parseBool(v); err != nil {
			return nil, fmt.Errorf("%s: %w", models.ColFreeShipping, err)
		}
	}
	if v, ok := cell(rec, models.ColOfficialStore); ok {
		if l.OfficialStore, err = parseBool(v); err != nil {
			return nil, fmt.Errorf("%s: %w", models.ColOfficialStore, err)
		}
	}
	if v, ok := cell(rec, models.ColCaptureDate); ok {
		if l.CaptureDate, err = parseDate(v); err != nil {
			return nil, fmt.Errorf("%s: %w", models.ColCaptureDate, err)
		}
	}
	if v, ok := cell(rec, models.ColPopularity); ok {
		if l.PopularityScore, err = parseFloat(v); err != nil {
			return nil, fmt.Errorf("%s: %w", models.ColPopularity, err)
		}
	}

	return l, nil
}

// cell returns the trimmed cell text, or false when the column is absent,
// blank, or holds one of the null markers pandas and friends write.
func cell(rec models.RawRecord, col string) (string, bool) {
	v, ok := rec[col]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "", "nan", "none", "null", "<na>", "nat":
		return "", false
	}
	return v, true
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	if math.IsNaN(f) {
		return 0, fmt.Errorf("parse %q: not a number", s)
	}
	return f, nil
}

// parseInt accepts integral decimals such as "5.0", which is how pandas
// writes integer columns that once held a missing value.
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("parse %q: not an integer", s)
	}
	return int(f), nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "1.0", "si", "sí", "yes", "t":
		return true, nil
	case "false", "0", "0.0", "no", "f":
		return false, nil
	}
	return false, fmt.Errorf("parse %q: not a boolean", s)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return t, nil
	}
	// Some revisions wrote full timestamps.
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse %q: not a %s date", s, models.DateLayout)
}

// encodeListing renders a Listing as a snapshot row for the given header.
func encodeListing(l *models.Listing, header []string) []string {
	row := make([]string, len(header))
	for i, col := range header {
		switch col {
		case models.ColTitle:
			row[i] = l.Title
		case models.ColPrice:
			row[i] = strconv.FormatFloat(l.Price, 'f', -1, 64)
		case models.ColSales:
			row[i] = strconv.Itoa(l.SalesCount)
		case models.ColInquiries:
			row[i] = strconv.Itoa(l.InquiryCount)
		case models.ColRating:
			row[i] = strconv.FormatFloat(l.Rating, 'f', -1, 64)
		case models.ColFreeShipping:
			row[i] = strconv.FormatBool(l.FreeShipping)
		case models.ColOfficialStore:
			row[i] = strconv.FormatBool(l.OfficialStore)
		case models.ColURL:
			row[i] = l.URL
		case models.ColCaptureDate:
			if !l.CaptureDate.IsZero() {
				row[i] = l.CaptureDate.Format(models.DateLayout)
			}
		case models.ColPopularity:
			row[i] = strconv.FormatFloat(l.PopularityScore, 'f', -1, 64)
		}
	}
	return row
}
