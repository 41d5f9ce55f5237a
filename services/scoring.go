package services

import (
	"fmt"

	"meli-trends/models"
)

// Weights are the coefficients of the popularity score. All weights must be
// non-negative for the score to be monotonic in every field.
type Weights struct {
	Inquiries     float64
	Sales         float64
	Rating        float64
	FreeShipping  float64
	OfficialStore float64
}

// DefaultWeights returns the production scoring policy.
func DefaultWeights() Weights {
	return Weights{
		Inquiries:     0.8,
		Sales:         0.5,
		Rating:        20,
		FreeShipping:  15,
		OfficialStore: 10,
	}
}

// Validate rejects negative weights.
func (w Weights) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"inquiries", w.Inquiries},
		{"sales", w.Sales},
		{"rating", w.Rating},
		{"free shipping", w.FreeShipping},
		{"official store", w.OfficialStore},
	} {
		if f.v < 0 {
			return fmt.Errorf("weights: %s weight %v is negative", f.name, f.v)
		}
	}
	return nil
}

// Score computes the popularity of a single listing.
func (w Weights) Score(l *models.Listing) float64 {
	score := w.Inquiries*float64(l.InquiryCount) +
		w.Sales*float64(l.SalesCount) +
		w.Rating*l.Rating
	if l.FreeShipping {
		score += w.FreeShipping
	}
	if l.OfficialStore {
		score += w.OfficialStore
	}
	return score
}

// ScoreAll sets PopularityScore on every listing.
func (w Weights) ScoreAll(listings []*models.Listing) {
	for _, l := range listings {
		l.PopularityScore = w.Score(l)
	}
}
