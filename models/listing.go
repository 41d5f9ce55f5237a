package models

import "time"

// Snapshot column names shared by the raw and processed CSV files.
const (
	ColTitle         = "titulo"
	ColPrice         = "precio"
	ColSales         = "ventas"
	ColInquiries     = "mensajes"
	ColRating        = "rating"
	ColFreeShipping  = "envio_gratis"
	ColOfficialStore = "tienda_oficial"
	ColURL           = "link"
	ColCaptureDate   = "fecha"
	ColPopularity    = "popularidad"
)

// DateLayout is the capture date format used in snapshots.
const DateLayout = "2006-01-02"

// RawColumns is the raw snapshot header, in order.
var RawColumns = []string{
	ColTitle, ColPrice, ColSales, ColInquiries, ColRating,
	ColFreeShipping, ColOfficialStore, ColURL, ColCaptureDate,
}

// ProcessedColumns is the processed snapshot header, in order.
var ProcessedColumns = append(append([]string{}, RawColumns...), ColPopularity)

// RawRecord is one snapshot row as read from disk: column name to cell text.
// A column that is absent from the header is simply missing from the map.
type RawRecord map[string]string

// Listing is one marketplace product record.
//
// PopularityScore and ClusterID are run-scoped annotations written by the
// ranker; Index is the row position in the snapshot it was read from.
type Listing struct {
	Title         string
	Price         float64
	SalesCount    int
	InquiryCount  int
	Rating        float64
	FreeShipping  bool
	OfficialStore bool
	URL           string
	CaptureDate   time.Time

	PopularityScore float64
	ClusterID       int
	Index           int
}

// FieldDefaults lists the value each field takes when its cell is missing.
type FieldDefaults struct {
	Title         string
	Price         float64
	SalesCount    int
	InquiryCount  int
	Rating        float64
	FreeShipping  bool
	OfficialStore bool
	URL           string
}

// DefaultFieldDefaults returns the defaults applied at ingestion.
func DefaultFieldDefaults() FieldDefaults {
	return FieldDefaults{URL: "#"}
}
