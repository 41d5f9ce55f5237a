package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"meli-trends/models"
	"meli-trends/utils"
)

// DefaultStopWords are the Spanish function words dropped from titles
// before vectorizing.
var DefaultStopWords = []string{
	"de", "en", "con", "para", "y", "el", "la", "los", "las",
	"un", "una", "por", "del", "al", "o", "a",
}

// RankerConfig is the ranking policy for one run.
type RankerConfig struct {
	TopN        int
	PoolSize    int
	MaxClusters int
	MaxFeatures int
	Seed        uint64
	StopWords   []string
	Weights     Weights
	Defaults    models.FieldDefaults
}

// DefaultRankerConfig returns the production policy.
func DefaultRankerConfig() RankerConfig {
	return RankerConfig{
		TopN:        5,
		PoolSize:    30,
		MaxClusters: 15,
		MaxFeatures: 500,
		Seed:        42,
		StopWords:   DefaultStopWords,
		Weights:     DefaultWeights(),
		Defaults:    models.DefaultFieldDefaults(),
	}
}

// Validate checks the policy before a run.
func (c RankerConfig) Validate() error {
	if c.TopN < 1 {
		return fmt.Errorf("ranker: top N must be positive, got %d", c.TopN)
	}
	if c.PoolSize < c.TopN {
		return fmt.Errorf("ranker: pool size %d is smaller than top N %d", c.PoolSize, c.TopN)
	}
	if c.MaxClusters < 2 {
		return fmt.Errorf("ranker: max clusters must be at least 2, got %d", c.MaxClusters)
	}
	return c.Weights.Validate()
}

// Ranker cleans, scores, clusters and selects listings from a raw snapshot.
type Ranker struct {
	cfg     RankerConfig
	logger  *utils.Logger
	cleaner *Cleaner
}

// NewRanker creates a Ranker with the given policy.
func NewRanker(cfg RankerConfig, logger *utils.Logger) *Ranker {
	return &Ranker{
		cfg:     cfg,
		logger:  logger,
		cleaner: NewCleaner(logger, cfg.Defaults),
	}
}

// Rank runs one ranking pass. It never fails: clustering problems downgrade
// to popularity-only selection and are reported in the result.
func (r *Ranker) Rank(records []models.RawRecord) *models.RankResult {
	res := &models.RankResult{Trace: []models.Stage{models.StageIdle}}

	res.Trace = append(res.Trace, models.StageValidating)
	valid, stats := r.cleaner.Clean(records)
	res.Valid = valid
	res.Stats = stats

	res.Trace = append(res.Trace, models.StageScoring)
	r.cfg.Weights.ScoreAll(valid)

	res.Trace = append(res.Trace, models.StageClustering)
	outcome, clusters, err := r.cluster(valid)
	res.Clustering = outcome
	res.Clusters = clusters
	if err != nil {
		res.ClusterError = err.Error()
	}

	res.Trace = append(res.Trace, models.StageSelecting)
	switch outcome {
	case models.ClusterSuccess:
		res.Listings = r.selectByCluster(valid)
	default:
		res.FallbackUsed = true
		res.Listings = r.selectTop(valid)
	}

	res.Trace = append(res.Trace, models.StageDone)
	r.logger.Info("[ranker] %d valid listings, clustering %s (%d clusters), selected %d",
		len(valid), outcome, clusters, len(res.Listings))
	if err != nil {
		r.logger.Warn("[ranker] Clustering failed, using popularity-only selection: %v", err)
	}
	return res
}

// ClusterCount is the number of groups requested for n listings.
func ClusterCount(n, upper int) int {
	k := n / 2
	if k < 2 {
		k = 2
	}
	if k > upper {
		k = upper
	}
	return k
}

// cluster assigns ClusterID on every listing it can embed. Listings whose
// title is blank are left out of the vectorizer and get a cluster of their own.
func (r *Ranker) cluster(listings []*models.Listing) (outcome models.ClusterOutcome, clusters int, err error) {
	for _, l := range listings {
		l.ClusterID = -1
	}

	var candidates []*models.Listing
	var titles []string
	for _, l := range listings {
		if t := strings.TrimSpace(l.Title); t != "" {
			candidates = append(candidates, l)
			titles = append(titles, t)
		}
	}
	if len(candidates) < 2 {
		return models.ClusterSkipped, 0, nil
	}

	defer func() {
		if p := recover(); p != nil {
			outcome, clusters, err = models.ClusterFailed, 0, fmt.Errorf("clustering panic: %v", p)
		}
	}()

	vectorizer := &Vectorizer{StopWords: r.cfg.StopWords, MaxFeatures: r.cfg.MaxFeatures}
	vectors, _, err := vectorizer.FitTransform(titles)
	if err != nil {
		return models.ClusterFailed, 0, err
	}

	km := KMeans{K: ClusterCount(len(candidates), r.cfg.MaxClusters), Seed: r.cfg.Seed}
	result, err := km.Fit(vectors)
	if err != nil {
		return models.ClusterFailed, 0, err
	}
	if result.Clusters == 0 {
		return models.ClusterFailed, 0, errors.New("clustering produced no groups")
	}

	for i, l := range candidates {
		l.ClusterID = result.Labels[i]
	}
	next := result.Clusters
	for _, l := range listings {
		if l.ClusterID < 0 {
			l.ClusterID = next
			next++
		}
	}
	r.logger.Debug("[ranker] k-means: k=%d, %d non-empty clusters, inertia %.4f",
		km.K, result.Clusters, result.Inertia)
	return models.ClusterSuccess, result.Clusters, nil
}

// byPopularity returns a copy of listings sorted by score, highest first,
// keeping input order among equal scores.
func byPopularity(listings []*models.Listing) []*models.Listing {
	sorted := append([]*models.Listing(nil), listings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PopularityScore > sorted[j].PopularityScore
	})
	return sorted
}

func (r *Ranker) selectTop(listings []*models.Listing) []*models.Listing {
	return head(byPopularity(listings), r.cfg.TopN)
}

// selectByCluster takes the most popular PoolSize listings, keeps the
// cheapest member of each cluster present in that pool, and returns the
// TopN most popular of those.
func (r *Ranker) selectByCluster(listings []*models.Listing) []*models.Listing {
	pool := head(byPopularity(listings), r.cfg.PoolSize)

	var order []int
	cheapest := make(map[int]*models.Listing)
	for _, l := range pool {
		cur, ok := cheapest[l.ClusterID]
		if !ok {
			order = append(order, l.ClusterID)
			cheapest[l.ClusterID] = l
			continue
		}
		if l.Price < cur.Price || (l.Price == cur.Price && l.Index < cur.Index) {
			cheapest[l.ClusterID] = l
		}
	}

	winners := make([]*models.Listing, 0, len(order))
	for _, id := range order {
		winners = append(winners, cheapest[id])
	}
	return head(byPopularity(winners), r.cfg.TopN)
}

func head(listings []*models.Listing, n int) []*models.Listing {
	if len(listings) > n {
		return listings[:n]
	}
	return listings
}
