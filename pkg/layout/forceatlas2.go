package layout

import (
	"context"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ForceAtlas2 is a continuous force-directed layout: nodes repel each other
// in proportion to their degree, edges attract their endpoints and gravity
// pulls everything toward the origin. With AdjustSizes node radii take part
// in repulsion so overlapping nodes push apart hard.
type ForceAtlas2 struct{}

func (ForceAtlas2) Name() string { return AlgorithmForceAtlas2 }

type fa2Body struct {
	id     int64
	pos    r2.Vec
	force  r2.Vec
	old    r2.Vec
	mass   float64
	radius float64
}

type fa2Spring struct {
	a, b   int
	weight float64
}

// Layout runs s.Iterations passes starting from the nodes' current positions
func (ForceAtlas2) Layout(ctx context.Context, nodes []Node, edges []Edge, s Settings) (Positions, error) {
	bodies := make([]fa2Body, len(nodes))
	index := make(map[int64]int, len(nodes))
	for i, n := range nodes {
		bodies[i] = fa2Body{id: n.ID, pos: r2.Vec{X: n.X, Y: n.Y}, mass: 1, radius: n.Size}
		index[n.ID] = i
	}

	springs := make([]fa2Spring, 0, len(edges))
	for _, e := range edges {
		a, okA := index[e.Source]
		b, okB := index[e.Target]
		if !okA || !okB || a == b {
			continue
		}
		bodies[a].mass++
		bodies[b].mass++
		springs = append(springs, fa2Spring{a: a, b: b, weight: edgeWeight(e.Size, s.EdgeWeightInfluence)})
	}

	for iter := 0; iter < s.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fa2Step(bodies, springs, s)
	}

	out := make(Positions, len(bodies))
	for _, b := range bodies {
		out[b.id] = b.pos
	}
	return out, nil
}

func edgeWeight(size, influence float64) float64 {
	if influence == 0 {
		return 1
	}
	if size <= 0 {
		size = 1
	}
	return math.Pow(size, influence)
}

func fa2Step(bodies []fa2Body, springs []fa2Spring, s Settings) {
	for i := range bodies {
		bodies[i].old = bodies[i].force
		bodies[i].force = r2.Vec{}
	}

	// Repulsion
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			a, b := &bodies[i], &bodies[j]
			d := r2.Sub(a.pos, b.pos)
			dist := r2.Norm(d)
			if s.AdjustSizes {
				dist -= a.radius + b.radius
			}

			var factor float64
			switch {
			case dist > 0:
				factor = s.ScalingRatio * a.mass * b.mass / (dist * dist)
			case s.AdjustSizes:
				factor = 100 * s.ScalingRatio * a.mass * b.mass
			default:
				continue
			}
			a.force = r2.Add(a.force, r2.Scale(factor, d))
			b.force = r2.Sub(b.force, r2.Scale(factor, d))
		}
	}

	// Gravity
	if s.Gravity > 0 {
		for i := range bodies {
			b := &bodies[i]
			dist := r2.Norm(b.pos)
			if dist > 0 {
				b.force = r2.Sub(b.force, r2.Scale(b.mass*s.Gravity/dist, b.pos))
			}
		}
	}

	// Attraction
	for _, sp := range springs {
		a, b := &bodies[sp.a], &bodies[sp.b]
		d := r2.Sub(a.pos, b.pos)
		if s.AdjustSizes {
			if r2.Norm(d)-a.radius-b.radius <= 0 {
				continue
			}
		}
		a.force = r2.Sub(a.force, r2.Scale(sp.weight, d))
		b.force = r2.Add(b.force, r2.Scale(sp.weight, d))
	}

	// Apply with per-node speed damping
	for i := range bodies {
		b := &bodies[i]
		swinging := b.mass * r2.Norm(r2.Sub(b.old, b.force))
		traction := r2.Norm(r2.Add(b.old, b.force)) / 2
		speed := 0.1 * math.Log1p(traction) / (1 + math.Sqrt(swinging))
		if s.AdjustSizes {
			// Overlap forces can be huge; cap the step like the size-aware
			// variant of the algorithm does.
			speed = math.Min(speed, 10/math.Max(r2.Norm(b.force), 1))
		}
		if math.IsNaN(speed) || math.IsInf(speed, 0) {
			continue
		}
		b.pos = r2.Add(b.pos, r2.Scale(speed, b.force))
	}
}
