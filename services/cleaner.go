package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"meli-trends/models"
	"meli-trends/storage"
	"meli-trends/utils"
)

const (
	minTitleRunes = 4
	maxPrice      = 1_000_000
	maxRating     = 5
)

// Cleaner turns raw snapshot records into valid Listings.
type Cleaner struct {
	logger   *utils.Logger
	defaults models.FieldDefaults
}

// NewCleaner creates a Cleaner that fills missing cells from defaults.
func NewCleaner(logger *utils.Logger, defaults models.FieldDefaults) *Cleaner {
	return &Cleaner{logger: logger, defaults: defaults}
}

// Clean decodes every record, drops malformed rows and rows failing IsValid,
// and returns the survivors in input order. It has no side effects besides
// logging, so calling it twice on the same records gives the same result.
func (c *Cleaner) Clean(records []models.RawRecord) ([]*models.Listing, models.IngestStats) {
	stats := models.IngestStats{RawRows: len(records)}
	result := make([]*models.Listing, 0, len(records))

	for i, rec := range records {
		l, err := storage.DecodeListing(rec, c.defaults)
		if err != nil {
			stats.Malformed++
			c.logger.Debug("[cleaner] Row %d malformed: %v", i+1, err)
			continue
		}
		l.Index = i
		l.Title = normaliseText(l.Title)
		l.URL = strings.TrimSpace(l.URL)
		if l.URL == "" {
			l.URL = c.defaults.URL
		}

		if !IsValid(l) {
			stats.Rejected++
			continue
		}
		result = append(result, l)
	}

	stats.Valid = len(result)
	c.logger.Info("[cleaner] Cleaned %d → %d listings (malformed %d, rejected %d)",
		stats.RawRows, stats.Valid, stats.Malformed, stats.Rejected)
	return result, stats
}

// IsValid reports whether l may appear in a processed snapshot.
func IsValid(l *models.Listing) bool {
	switch {
	case utf8.RuneCountInString(strings.TrimSpace(l.Title)) < minTitleRunes:
		return false
	case l.Price <= 0 || l.Price >= maxPrice:
		return false
	case l.SalesCount < 0 || l.InquiryCount < 0:
		return false
	case l.Rating < 0 || l.Rating > maxRating:
		return false
	}
	return true
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
