package layout

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func triangle() ([]Node, []Edge) {
	nodes := []Node{
		{ID: 1, Size: 15},
		{ID: 2, Size: 10},
		{ID: 3, Size: 10},
		{ID: 4, Size: 8},
	}
	edges := []Edge{
		{Source: 1, Target: 2, Size: 10},
		{Source: 1, Target: 3, Size: 4},
		{Source: 2, Target: 3, Size: 1},
	}
	return nodes, edges
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"", AlgorithmForceAtlas2, true},
		{"ForceAtlas2", AlgorithmForceAtlas2, true},
		{"eades", AlgorithmEades, true},
		{"spring", "", false},
	}
	for _, tt := range tests {
		l, err := New(tt.name)
		if !tt.ok {
			if err == nil {
				t.Errorf("Expected error for %q", tt.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("New(%q) failed: %v", tt.name, err)
		}
		if l.Name() != tt.want {
			t.Errorf("New(%q).Name() = %q, want %q", tt.name, l.Name(), tt.want)
		}
	}
}

func TestScatterIsSeeded(t *testing.T) {
	a, _ := triangle()
	b, _ := triangle()
	Scatter(a, rand.NewPCG(7, 7))
	Scatter(b, rand.NewPCG(7, 7))

	for i := range a {
		if a[i].X != b[i].X || a[i].Y != b[i].Y {
			t.Errorf("Expected identical placement for node %d", a[i].ID)
		}
		if a[i].X < 0 || a[i].X >= PlacementBounds || a[i].Y < 0 || a[i].Y >= PlacementBounds {
			t.Errorf("Node %d placed outside bounds: (%g, %g)", a[i].ID, a[i].X, a[i].Y)
		}
	}
}

func TestForceAtlas2(t *testing.T) {
	nodes, edges := triangle()
	Scatter(nodes, rand.NewPCG(1, 2))

	pos, err := ForceAtlas2{}.Layout(context.Background(), nodes, edges, DefaultSettings())
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	if len(pos) != len(nodes) {
		t.Fatalf("Expected %d positions, got %d", len(nodes), len(pos))
	}
	for id, p := range pos {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			t.Errorf("Node %d has non-finite position %v", id, p)
		}
	}

	// Same input, same output
	again, _ := ForceAtlas2{}.Layout(context.Background(), nodes, edges, DefaultSettings())
	for id, p := range pos {
		if again[id] != p {
			t.Errorf("Layout is not deterministic for node %d: %v vs %v", id, p, again[id])
		}
	}
}

func TestForceAtlas2SeparatesOverlappingNodes(t *testing.T) {
	nodes := []Node{
		{ID: 1, X: 100, Y: 100, Size: 10},
		{ID: 2, X: 101, Y: 100, Size: 10},
	}
	s := DefaultSettings()
	s.Gravity = 0

	pos, err := ForceAtlas2{}.Layout(context.Background(), nodes, nil, s)
	if err != nil {
		t.Fatal(err)
	}
	if d := r2.Norm(r2.Sub(pos[1], pos[2])); d <= 1 {
		t.Errorf("Expected overlapping nodes to be pushed apart, distance %g", d)
	}
}

func TestForceAtlas2ZeroIterationsKeepsPositions(t *testing.T) {
	nodes, edges := triangle()
	Scatter(nodes, rand.NewPCG(3, 4))
	s := DefaultSettings()
	s.Iterations = 0

	pos, err := ForceAtlas2{}.Layout(context.Background(), nodes, edges, s)
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range nodes {
		if pos[n.ID] != (r2.Vec{X: n.X, Y: n.Y}) {
			t.Errorf("Node %d moved without iterations", n.ID)
		}
	}
}

func TestLayoutCancelled(t *testing.T) {
	nodes, edges := triangle()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, l := range []Layouter{ForceAtlas2{}, Eades{}} {
		if _, err := l.Layout(ctx, nodes, edges, DefaultSettings()); !errors.Is(err, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", l.Name(), err)
		}
	}
}

func TestEades(t *testing.T) {
	nodes, edges := triangle()
	Scatter(nodes, rand.NewPCG(5, 6))
	s := DefaultSettings()
	s.Iterations = 50

	pos, err := Eades{}.Layout(context.Background(), nodes, edges, s)
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	if len(pos) != len(nodes) {
		t.Fatalf("Expected %d positions, got %d", len(nodes), len(pos))
	}
	for id, p := range pos {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			t.Errorf("Node %d has NaN position", id)
		}
	}

	empty, err := Eades{}.Layout(context.Background(), nil, nil, s)
	if err != nil || len(empty) != 0 {
		t.Errorf("Expected empty layout, got %v, %v", empty, err)
	}
}
