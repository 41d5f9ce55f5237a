package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"meli-trends/models"
)

func sampleListings() []*models.Listing {
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	return []*models.Listing{
		{Title: "Licuadora Oster 10 velocidades", Price: 45.5, SalesCount: 12, InquiryCount: 30, Rating: 4.6,
			FreeShipping: true, URL: "https://articulo.mercadolibre.com.ve/MLV-1", CaptureDate: day, PopularityScore: 137},
		{Title: "Zapatos, \"Nike\" Air Max", Price: 1200, SalesCount: 0, InquiryCount: 4, Rating: 0,
			OfficialStore: true, URL: "#", CaptureDate: day, PopularityScore: 13.2},
	}
}

func TestReadRecordsMissingFile(t *testing.T) {
	recs, stats, err := ReadRecords(filepath.Join(t.TempDir(), "raw.csv"))
	require.ErrorIs(t, err, ErrSnapshotMissing)
	require.Empty(t, recs)
	require.NoError(t, stats.FileError)
}

func TestDecodeRecordsEmptyInputs(t *testing.T) {
	for _, in := range []string{"", "\"\"\n", "titulo,precio\n", "titulo,precio\n,\n"} {
		recs, stats, err := DecodeRecords(strings.NewReader(in))
		require.NoError(t, err, "input %q", in)
		require.Empty(t, recs, "input %q", in)
		require.NoError(t, stats.FileError, "input %q", in)
	}
}

func TestDecodeRecordsShortRowsAndBOM(t *testing.T) {
	in := "\ufefftitulo,precio,ventas\nTelevisor Samsung,300\nCocina,abc,2,extra\n"
	recs, _, err := DecodeRecords(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	require.Equal(t, "Televisor Samsung", recs[0][models.ColTitle])
	_, hasSales := recs[0][models.ColSales]
	require.False(t, hasSales, "short row should leave trailing columns missing")
	require.Equal(t, "2", recs[1][models.ColSales])
}

func TestWriteThenReadProcessed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "processed.csv")
	require.NoError(t, WriteProcessed(path, sampleListings()))

	recs, stats, err := ReadRecords(path)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Rows)

	got, err := DecodeListing(recs[1], models.DefaultFieldDefaults())
	require.NoError(t, err)
	require.Equal(t, "Zapatos, \"Nike\" Air Max", got.Title)
	require.Equal(t, 1200.0, got.Price)
	require.True(t, got.OfficialStore)
	require.Equal(t, 13.2, got.PopularityScore)
	require.Equal(t, "2025-03-14", got.CaptureDate.Format(models.DateLayout))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteRawEmptyIsHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.csv")
	require.NoError(t, WriteRaw(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, strings.Join(models.RawColumns, ",")+"\n", string(data))
}

func TestDecodeListingDefaults(t *testing.T) {
	got, err := DecodeListing(models.RawRecord{
		models.ColTitle:  "  Nevera Mabe  ",
		models.ColPrice:  "250.0",
		models.ColSales:  "nan",
		models.ColRating: "",
	}, models.DefaultFieldDefaults())
	require.NoError(t, err)

	require.Equal(t, "Nevera Mabe", got.Title)
	require.Equal(t, 250.0, got.Price)
	require.Zero(t, got.SalesCount)
	require.Zero(t, got.InquiryCount)
	require.Zero(t, got.Rating)
	require.False(t, got.FreeShipping)
	require.Equal(t, "#", got.URL)
	require.True(t, got.CaptureDate.IsZero())
}

func TestDecodeListingCellFormats(t *testing.T) {
	got, err := DecodeListing(models.RawRecord{
		models.ColTitle:         "Aire acondicionado",
		models.ColPrice:         "399.99",
		models.ColSales:         "5.0",
		models.ColInquiries:     "17",
		models.ColFreeShipping:  "True",
		models.ColOfficialStore: "sí",
		models.ColCaptureDate:   "2025-03-14 08:30:00",
	}, models.DefaultFieldDefaults())
	require.NoError(t, err)
	require.Equal(t, 5, got.SalesCount)
	require.Equal(t, 17, got.InquiryCount)
	require.True(t, got.FreeShipping)
	require.True(t, got.OfficialStore)
	require.Equal(t, "2025-03-14", got.CaptureDate.Format(models.DateLayout))
}

func TestDecodeListingMalformed(t *testing.T) {
	cases := []models.RawRecord{
		{models.ColPrice: "cien"},
		{models.ColSales: "2.5"},
		{models.ColFreeShipping: "maybe"},
		{models.ColCaptureDate: "14/03/2025"},
	}
	for _, rec := range cases {
		_, err := DecodeListing(rec, models.DefaultFieldDefaults())
		require.Error(t, err, "record %v", rec)
	}
}

func TestSQLiteMirrorReplace(t *testing.T) {
	ctx := context.Background()
	mirror, err := NewSQLiteWriter(ctx, filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	defer mirror.Close()

	require.NoError(t, mirror.Replace(ctx, sampleListings()))
	require.NoError(t, mirror.Replace(ctx, sampleListings()[:1]))

	got, err := mirror.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1, "Replace must drop the previous snapshot")
	require.Equal(t, "Licuadora Oster 10 velocidades", got[0].Title)
	require.Equal(t, 45.5, got[0].Price)
	require.Equal(t, 12, got[0].SalesCount)
	require.True(t, got[0].FreeShipping)
	require.False(t, got[0].OfficialStore)
	require.Equal(t, 137.0, got[0].PopularityScore)
	require.Equal(t, "2025-03-14", got[0].CaptureDate.Format(models.DateLayout))

	require.NoError(t, mirror.Replace(ctx, nil))
	got, err = mirror.FetchAll(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}
