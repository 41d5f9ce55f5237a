package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"meli-trends/models"
	"meli-trends/utils"
)

func newTestLogger() *utils.Logger { return utils.Discard() }

func rawRow(title, price string) models.RawRecord {
	return models.RawRecord{models.ColTitle: title, models.ColPrice: price}
}

func TestIsValid(t *testing.T) {
	base := models.Listing{Title: "Cafetera Oster", Price: 35}

	tests := []struct {
		name   string
		mutate func(l *models.Listing)
		want   bool
	}{
		{"baseline", func(*models.Listing) {}, true},
		{"title of three runes", func(l *models.Listing) { l.Title = "Año" }, false},
		{"title of four runes", func(l *models.Listing) { l.Title = "Años" }, true},
		{"blank title", func(l *models.Listing) { l.Title = "    " }, false},
		{"zero price", func(l *models.Listing) { l.Price = 0 }, false},
		{"negative price", func(l *models.Listing) { l.Price = -10 }, false},
		{"price at cap", func(l *models.Listing) { l.Price = 1_000_000 }, false},
		{"price below cap", func(l *models.Listing) { l.Price = 999_999.99 }, true},
		{"negative sales", func(l *models.Listing) { l.SalesCount = -1 }, false},
		{"negative inquiries", func(l *models.Listing) { l.InquiryCount = -1 }, false},
		{"rating above five", func(l *models.Listing) { l.Rating = 5.1 }, false},
		{"rating of five", func(l *models.Listing) { l.Rating = 5 }, true},
		{"negative rating", func(l *models.Listing) { l.Rating = -0.5 }, false},
	}

	for _, tt := range tests {
		l := base
		tt.mutate(&l)
		if got := IsValid(&l); got != tt.want {
			t.Errorf("%s: IsValid(%+v) = %v; want %v", tt.name, l, got, tt.want)
		}
	}
}

func TestCleanerCounts(t *testing.T) {
	c := NewCleaner(newTestLogger(), models.DefaultFieldDefaults())
	raw := []models.RawRecord{
		rawRow("Televisor Samsung 50 pulgadas", "450"),
		rawRow("TV", "450"),
		rawRow("Horno microondas", "0"),
		rawRow("Horno microondas", "ochenta"),
		{models.ColTitle: "Sin precio"},
		rawRow("  Aire   acondicionado  split ", "600.5"),
	}

	valid, stats := c.Clean(raw)
	want := models.IngestStats{RawRows: 6, Malformed: 1, Rejected: 3, Valid: 2}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
	if len(valid) != 2 {
		t.Fatalf("expected 2 valid listings, got %d", len(valid))
	}
	if valid[1].Title != "Aire acondicionado split" {
		t.Errorf("title not normalised: %q", valid[1].Title)
	}
	if valid[1].Index != 5 {
		t.Errorf("Index = %d; want row 5", valid[1].Index)
	}
	if valid[0].URL != "#" {
		t.Errorf("URL default = %q; want placeholder", valid[0].URL)
	}
}

func TestCleanerIsIdempotent(t *testing.T) {
	c := NewCleaner(newTestLogger(), models.DefaultFieldDefaults())
	raw := []models.RawRecord{
		rawRow("Televisor Samsung 50 pulgadas", "450"),
		rawRow("Horno", "-3"),
		{models.ColTitle: "Nevera Mabe", models.ColPrice: "900", models.ColRating: "4.2", models.ColFreeShipping: "True"},
	}

	first, firstStats := c.Clean(raw)
	second, secondStats := c.Clean(raw)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Clean is not idempotent (-first +second):\n%s", diff)
	}
	if firstStats != secondStats {
		t.Errorf("stats differ: %+v vs %+v", firstStats, secondStats)
	}
}

func TestCleanerAllZeroPrice(t *testing.T) {
	c := NewCleaner(newTestLogger(), models.DefaultFieldDefaults())
	var raw []models.RawRecord
	for i := 0; i < 10; i++ {
		raw = append(raw, rawRow("Producto de prueba", "0"))
	}

	valid, stats := c.Clean(raw)
	if len(valid) != 0 {
		t.Errorf("expected no valid listings, got %d", len(valid))
	}
	if stats.Rejected != 10 {
		t.Errorf("Rejected = %d; want 10", stats.Rejected)
	}
}
