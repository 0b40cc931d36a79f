package layout

import (
	"context"

	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/spatial/r2"
)

// Eades runs gonum's Eades spring embedder. Starting positions are ignored;
// Eades places nodes itself from a source seeded by the first node's
// starting coordinates so Scatter still controls reproducibility.
type Eades struct{}

func (Eades) Name() string { return AlgorithmEades }

func (Eades) Layout(ctx context.Context, nodes []Node, edges []Edge, s Settings) (Positions, error) {
	out := make(Positions, len(nodes))
	if len(nodes) == 0 {
		return out, nil
	}

	g := simple.NewUndirectedGraph()
	for _, n := range nodes {
		if g.Node(n.ID) == nil {
			g.AddNode(simple.Node(n.ID))
		}
	}
	for _, e := range edges {
		if e.Source == e.Target || g.Node(e.Source) == nil || g.Node(e.Target) == nil {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(e.Source), T: simple.Node(e.Target)})
	}

	seed := uint64(nodes[0].X*PlacementBounds) ^ uint64(nodes[0].Y)
	eades := layout.EadesR2{
		Updates:   s.Iterations,
		Repulsion: 1,
		Rate:      0.05,
		Theta:     0.2,
		Src:       NewSource(seed + 1),
	}
	opt := layout.NewOptimizerR2(g, eades.Update)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !opt.Update() {
			break
		}
	}

	scale := s.ScalingRatio
	if scale <= 0 {
		scale = 1
	}
	for _, n := range nodes {
		out[n.ID] = r2.Scale(scale*PlacementBounds/10, opt.Coord2(n.ID))
	}
	return out, nil
}
