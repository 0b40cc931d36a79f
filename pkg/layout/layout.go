// Package layout assigns 2D positions to a sized node set using iterative
// force-directed algorithms.
package layout

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// PlacementBounds is the side of the square initial positions are drawn from
const PlacementBounds = 1024.0

// Algorithm names accepted by New
const (
	AlgorithmForceAtlas2 = "forceatlas2"
	AlgorithmEades       = "eades"
)

// Node is a layout input: an id, a starting position and a radius
type Node struct {
	ID   int64
	X, Y float64
	Size float64
}

// Edge connects two nodes. Size is used as the attraction weight when
// Settings.EdgeWeightInfluence is non-zero.
type Edge struct {
	Source, Target int64
	Size           float64
}

// Settings tune a layout run
type Settings struct {
	Iterations   int
	Gravity      float64
	ScalingRatio float64
	AdjustSizes  bool

	// EdgeWeightInfluence raises edge sizes to this power before they weigh
	// attraction; 0 treats every edge alike
	EdgeWeightInfluence float64
}

// DefaultSettings returns 128 iterations with gravity 0.1, scaling ratio 10
// and size adjustment on
func DefaultSettings() Settings {
	return Settings{
		Iterations:   128,
		Gravity:      0.1,
		ScalingRatio: 10,
		AdjustSizes:  true,
	}
}

// Positions maps node ids to their computed coordinates
type Positions map[int64]r2.Vec

// Layouter computes positions for a graph. Implementations check ctx between
// iterations and return ctx.Err() when it is cancelled.
type Layouter interface {
	Name() string
	Layout(ctx context.Context, nodes []Node, edges []Edge, s Settings) (Positions, error)
}

// New returns the layouter registered under name
func New(name string) (Layouter, error) {
	switch strings.ToLower(name) {
	case "", AlgorithmForceAtlas2, "fa2":
		return ForceAtlas2{}, nil
	case AlgorithmEades:
		return Eades{}, nil
	}
	return nil, fmt.Errorf("unknown layout algorithm %q", name)
}

// Scatter assigns every node a uniformly random position inside the
// placement square. A fixed src makes the placement reproducible.
func Scatter(nodes []Node, src rand.Source) {
	rng := rand.New(src)
	for i := range nodes {
		nodes[i].X = rng.Float64() * PlacementBounds
		nodes[i].Y = rng.Float64() * PlacementBounds
	}
}

// NewSource returns a PCG source for seed, or a randomly seeded one when
// seed is zero
func NewSource(seed uint64) rand.Source {
	if seed == 0 {
		return rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}
