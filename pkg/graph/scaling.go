package graph

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Node size bounds after scaling
const (
	SeedSize   = 8.0
	MinSize    = 8.0
	MaxSize    = 50.0
	ratingSpan = 100.0
)

// ScalingStrategy selects how non-seed nodes are sized from their aggregates
type ScalingStrategy int

const (
	// Proportional sizes a node by its aggregate relative to the largest one
	Proportional ScalingStrategy = iota
	// Linear sizes a node by its rank, evenly spread between MaxSize and MinSize
	Linear
)

func (s ScalingStrategy) String() string {
	switch s {
	case Proportional:
		return "proportional"
	case Linear:
		return "linear"
	}
	return fmt.Sprintf("ScalingStrategy(%d)", int(s))
}

// ParseScalingStrategy converts a strategy name
func ParseScalingStrategy(name string) (ScalingStrategy, error) {
	switch strings.ToLower(name) {
	case "", "proportional":
		return Proportional, nil
	case "linear", "rank":
		return Linear, nil
	}
	return Proportional, fmt.Errorf("unknown scaling strategy %q", name)
}

// ScalingContext is the graph-wide state both strategies share
type ScalingContext struct {
	// MaxRating is the largest aggregate sum of a non-seed node, 1 if none
	MaxRating float64
	// RatingScale maps an aggregate sum to a 0-100 rating
	RatingScale float64
	// Rank is each non-seed node's position when sorted by descending sum,
	// ties broken by ascending id
	Rank map[int64]int
	// Count is the number of non-seed nodes
	Count int
}

// NewScalingContext computes the shared scaling state over the non-seed
// nodes currently in g
func NewScalingContext(g *RecommendationGraph, aggregates Aggregates) ScalingContext {
	var ids []int64
	for _, n := range g.Nodes() {
		if !n.IsSeed() {
			ids = append(ids, n.ID)
		}
	}

	maxRating := 0.0
	for i, id := range ids {
		if sum := aggregates[id].Sum; i == 0 || sum > maxRating {
			maxRating = sum
		}
	}
	if len(ids) == 0 || maxRating == 0 {
		maxRating = 1
	}

	sort.SliceStable(ids, func(i, j int) bool {
		return aggregates[ids[i]].Sum > aggregates[ids[j]].Sum
	})
	rank := make(map[int64]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}

	return ScalingContext{
		MaxRating:   maxRating,
		RatingScale: ratingSpan / maxRating,
		Rank:        rank,
		Count:       len(ids),
	}
}

// SizeAndRating computes the final size and rating of n
func (s ScalingStrategy) SizeAndRating(n *Node, aggregates Aggregates, sc ScalingContext) (float64, int) {
	if n.IsSeed() {
		return SeedSize, 0
	}
	rating := roundHalfUp(aggregates[n.ID].Sum * sc.RatingScale)

	switch s {
	case Linear:
		if sc.Count <= 1 {
			return MaxSize, rating
		}
		i := float64(sc.Rank[n.ID])
		return MaxSize - i/float64(sc.Count-1)*(MaxSize-MinSize), rating
	default:
		return math.Max(MinSize, float64(rating)/2), rating
	}
}

// ApplyScaling sets Size and Rating on every node of g
func ApplyScaling(g *RecommendationGraph, aggregates Aggregates, s ScalingStrategy) ScalingContext {
	sc := NewScalingContext(g, aggregates)
	for _, n := range g.Nodes() {
		n.Size, n.Rating = s.SizeAndRating(n, aggregates, sc)
	}
	return sc
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
