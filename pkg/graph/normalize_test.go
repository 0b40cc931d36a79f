package graph

import (
	"math"
	"testing"

	"github.com/ritzau/media-graph/pkg/model"
)

func TestEdgeScaleFactorRaw(t *testing.T) {
	a := media(1, "A", 100)
	b := media(2, "B", 50)
	recommend(&a, b, 80)
	recommend(&a, media(3, "C", 10), 20)

	factor, ok := EdgeScaleFactor([]model.Media{a, b}, false)
	if !ok {
		t.Fatal("Expected a scale factor")
	}
	if !approxEqual(factor, 0.125) {
		t.Errorf("Expected factor 0.125, got %g", factor)
	}
}

func TestEdgeScaleFactorCompensated(t *testing.T) {
	a := media(1, "A", 100)
	b := media(2, "B", 50)
	recommend(&a, b, 80)

	factor, ok := EdgeScaleFactor([]model.Media{a, b}, true)
	if !ok {
		t.Fatal("Expected a scale factor")
	}
	if !approxEqual(factor, 625) {
		t.Errorf("Expected factor 625, got %g", factor)
	}
}

func TestEdgeScaleFactorTimesMaxStrengthIsTen(t *testing.T) {
	a := media(1, "A", 0) // missing popularity counts as 1
	recommend(&a, media(2, "B", 3), 7)
	recommend(&a, media(3, "C", 1), 5)
	b := media(4, "D", 2)
	recommend(&b, media(5, "E", 0), 9)

	for _, compensate := range []bool{false, true} {
		factor, ok := EdgeScaleFactor([]model.Media{a, b}, compensate)
		if !ok {
			t.Fatalf("compensate=%v: expected a scale factor", compensate)
		}

		maxStrength := 0.0
		for _, seed := range []model.Media{a, b} {
			for _, rec := range seed.RecommendationList() {
				s := Strength(*rec.Rating, seed.PopularityOrDefault(), rec.Media.PopularityOrDefault(), compensate)
				maxStrength = math.Max(maxStrength, s)
			}
		}
		if !approxEqual(factor*maxStrength, MaxEdgeSize) {
			t.Errorf("compensate=%v: factor*max = %g, want 10", compensate, factor*maxStrength)
		}
	}
}

func TestEdgeScaleFactorSkipsInvalidRecords(t *testing.T) {
	a := media(1, "A", 1)
	a.Recommendations = &model.RecommendationConnection{Nodes: []model.Recommendation{
		{ID: 1, Rating: nil, Media: &model.Media{ID: 2}},
		{ID: 2, Rating: intPtr(0), Media: &model.Media{ID: 3}},
		{ID: 3, Rating: intPtr(500), Media: nil},
		{ID: 4, Rating: intPtr(4), Media: &model.Media{ID: 4}},
	}}

	factor, ok := EdgeScaleFactor([]model.Media{a}, false)
	if !ok || !approxEqual(factor, 2.5) {
		t.Errorf("Expected factor 2.5, got %g (ok=%v)", factor, ok)
	}
}

func TestEdgeScaleFactorNoValidRecommendation(t *testing.T) {
	a := media(1, "A", 1)
	a.Recommendations = &model.RecommendationConnection{Nodes: []model.Recommendation{
		{ID: 1, Rating: intPtr(0), Media: &model.Media{ID: 2}},
	}}

	factor, ok := EdgeScaleFactor([]model.Media{a}, false)
	if ok {
		t.Errorf("Expected no scale factor, got %g", factor)
	}

	size := EdgeSize(0, factor)
	if math.IsNaN(size) || math.IsInf(size, 0) || size != MinEdgeSize {
		t.Errorf("Expected edge size to clamp to %g, got %g", MinEdgeSize, size)
	}
}

func TestEdgeSizeClamps(t *testing.T) {
	tests := []struct {
		strength, factor, want float64
	}{
		{80, 0.125, 10},
		{4, 0.125, 1},
		{-5, 1, 1},
		{1, math.Inf(1), 1},
		{0, math.Inf(1), 1},
	}
	for _, tt := range tests {
		if got := EdgeSize(tt.strength, tt.factor); got != tt.want {
			t.Errorf("EdgeSize(%g, %g) = %g, want %g", tt.strength, tt.factor, got, tt.want)
		}
	}
}
