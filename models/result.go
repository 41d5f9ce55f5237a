package models

// Stage is one state of a ranking run.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageValidating Stage = "validating"
	StageScoring    Stage = "scoring"
	StageClustering Stage = "clustering"
	StageSelecting  Stage = "selecting"
	StageDone       Stage = "done"
)

// ClusterOutcome records how the clustering stage ended.
type ClusterOutcome string

const (
	ClusterSuccess ClusterOutcome = "success"
	ClusterSkipped ClusterOutcome = "skipped"
	ClusterFailed  ClusterOutcome = "failed"
)

// IngestStats counts what happened to each raw row.
type IngestStats struct {
	RawRows   int
	Malformed int
	Rejected  int
	Valid     int
}

// RankResult is everything a ranking run produced, including diagnostics.
type RankResult struct {
	Listings []*Listing
	Valid    []*Listing
	Stats    IngestStats

	Clustering   ClusterOutcome
	ClusterError string
	Clusters     int
	FallbackUsed bool
	Trace        []Stage
}

// CollectResult summarises one collector run.
type CollectResult struct {
	Listings []*Listing
	Pages    int
	Items    int
	Skipped  int
	Dupes    int
}

// InsightReport holds the run summary printed after ranking.
type InsightReport struct {
	RawRows      int
	ValidRows    int
	Rejected     int
	Malformed    int
	Clustering   ClusterOutcome
	Clusters     int
	FallbackUsed bool

	AveragePrice float64
	MinPrice     float64
	MaxPrice     float64
	Cheapest     *Listing
	Selected     []*Listing
}
