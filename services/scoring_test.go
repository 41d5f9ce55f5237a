package services

import (
	"math"
	"testing"

	"meli-trends/models"
)

func TestScoreFormula(t *testing.T) {
	w := DefaultWeights()
	l := &models.Listing{InquiryCount: 5, SalesCount: 2, Rating: 4.5, FreeShipping: true}

	if got := w.Score(l); math.Abs(got-110) > 1e-9 {
		t.Errorf("Score() = %v; want 110", got)
	}

	l.OfficialStore = true
	if got := w.Score(l); math.Abs(got-120) > 1e-9 {
		t.Errorf("Score() with official store = %v; want 120", got)
	}
}

func TestScoreIsMonotonic(t *testing.T) {
	w := DefaultWeights()
	base := models.Listing{InquiryCount: 3, SalesCount: 7, Rating: 3.2}

	bumps := map[string]func(l *models.Listing){
		"inquiries":      func(l *models.Listing) { l.InquiryCount++ },
		"sales":          func(l *models.Listing) { l.SalesCount++ },
		"rating":         func(l *models.Listing) { l.Rating += 0.1 },
		"free shipping":  func(l *models.Listing) { l.FreeShipping = true },
		"official store": func(l *models.Listing) { l.OfficialStore = true },
	}
	for name, bump := range bumps {
		more := base
		bump(&more)
		if w.Score(&more) <= w.Score(&base) {
			t.Errorf("raising %s did not raise the score: %v <= %v", name, w.Score(&more), w.Score(&base))
		}
	}
}

func TestWeightsValidate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Errorf("default weights rejected: %v", err)
	}
	w := DefaultWeights()
	w.Sales = -1
	if err := w.Validate(); err == nil {
		t.Error("negative weight accepted")
	}
}
