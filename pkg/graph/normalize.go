package graph

import (
	"math"

	"github.com/ritzau/media-graph/pkg/model"
)

const (
	// MaxEdgeSize is the size the strongest recommendation is scaled to
	MaxEdgeSize = 10.0
	// MinEdgeSize is the floor for every edge
	MinEdgeSize = 1.0
)

// Strength is the weight of a single recommendation: the raw rating, or the
// rating divided by both popularities when compensation is on. Popularities
// below 1 are treated as 1.
func Strength(rating, sourcePopularity, targetPopularity int, compensate bool) float64 {
	if !compensate {
		return float64(rating)
	}
	return float64(rating) / (float64(atLeastOne(sourcePopularity)) * float64(atLeastOne(targetPopularity)))
}

// EdgeScaleFactor returns 10 / maxStrength over every recommendation that has
// a non-zero rating and a resolvable target. ok is false when no positive
// strength exists; the factor is then 0 and every edge collapses to
// MinEdgeSize.
func EdgeScaleFactor(seeds []model.Media, compensate bool) (factor float64, ok bool) {
	maxStrength := 0.0
	for i := range seeds {
		seed := &seeds[i]
		for _, rec := range seed.RecommendationList() {
			if !validRecommendation(rec) {
				continue
			}
			s := Strength(*rec.Rating, seed.PopularityOrDefault(), rec.Media.PopularityOrDefault(), compensate)
			if s > maxStrength {
				maxStrength = s
			}
		}
	}
	if maxStrength <= 0 {
		return 0, false
	}
	return MaxEdgeSize / maxStrength, true
}

// EdgeSize scales a strength into a visible edge size, never below
// MinEdgeSize and never NaN or infinite
func EdgeSize(strength, factor float64) float64 {
	size := strength * factor
	if math.IsNaN(size) || math.IsInf(size, 0) || size < MinEdgeSize {
		return MinEdgeSize
	}
	return size
}

func validRecommendation(rec model.Recommendation) bool {
	return rec.Rating != nil && *rec.Rating != 0 && rec.Media != nil
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
