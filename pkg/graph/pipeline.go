package graph

import (
	"github.com/ritzau/media-graph/pkg/layout"
	"github.com/ritzau/media-graph/pkg/logging"
	"github.com/ritzau/media-graph/pkg/model"
)

// Input is everything a build needs, already fetched
type Input struct {
	Seeds    []model.Media
	UserList *model.MediaListCollection
	Options  Options
}

// Result is a built, filtered and scaled graph ready for layout
type Result struct {
	Graph       *RecommendationGraph
	Aggregates  Aggregates
	Index       *MediaIndex
	ScaleFactor float64
	Scaling     ScalingContext
	Removed     []int64
	Hash        string
}

// Build runs the weighting pipeline: scale factor, graph construction,
// connectivity filter and node scaling. Every call works on fresh state.
func Build(in Input) *Result {
	opts := in.Options.Normalized()
	statuses := model.NewStatusIndex(in.UserList)

	factor, ok := EdgeScaleFactor(in.Seeds, opts.UsePopularityCompensation)
	if !ok {
		logging.Debug("no rated recommendations, edges use minimum size", "seeds", len(in.Seeds))
	}

	b := NewBuilder(statuses, opts, factor)
	b.AddSeeds(in.Seeds)
	for i := range in.Seeds {
		b.AddRecommendations(&in.Seeds[i])
	}
	g := b.Graph()
	logging.Debug("graph built",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"scaleFactor", factor)

	removed := PruneUnderConnected(g, b.Aggregates(), opts.MinConnections)
	if len(removed) > 0 {
		logging.Debug("pruned under-connected nodes",
			"removed", len(removed),
			"minConnections", opts.MinConnections)
	}

	sc := ApplyScaling(g, b.Aggregates(), opts.Scaling())

	idx := NewMediaIndex(in.Seeds)
	logging.Debug("media indexed", "items", idx.Len(), "nodes", g.NodeCount())

	return &Result{
		Graph:       g,
		Aggregates:  b.Aggregates(),
		Index:       idx,
		ScaleFactor: factor,
		Scaling:     sc,
		Removed:     removed,
		Hash:        opts.Hash(),
	}
}

// Data converts the result into the renderer payload
func (r *Result) Data() *model.GraphData {
	data := &model.GraphData{
		Hash:        r.Hash,
		ScaleFactor: r.ScaleFactor,
		Nodes:       make([]model.GraphNode, 0, r.Graph.NodeCount()),
		Edges:       make([]model.GraphEdge, 0, r.Graph.EdgeCount()),
	}
	for _, n := range r.Graph.Nodes() {
		data.Nodes = append(data.Nodes, model.GraphNode{
			ID:     n.ID,
			Label:  n.Label,
			X:      n.X,
			Y:      n.Y,
			Size:   n.Size,
			Rating: n.Rating,
			Color:  n.Color,
			Seed:   n.IsSeed(),
			Status: n.Status,
		})
	}
	for _, e := range r.Graph.Edges() {
		data.Edges = append(data.Edges, model.GraphEdge{
			Source: e.Source,
			Target: e.Target,
			Size:   e.Size,
			Color:  e.Color,
			Label:  e.Label,
		})
	}
	return data
}

// LayoutInput returns the nodes and edges to position, ordered by id
func (r *Result) LayoutInput() ([]layout.Node, []layout.Edge) {
	nodes := make([]layout.Node, 0, r.Graph.NodeCount())
	for _, n := range r.Graph.Nodes() {
		nodes = append(nodes, layout.Node{ID: n.ID, X: n.X, Y: n.Y, Size: n.Size})
	}
	edges := make([]layout.Edge, 0, r.Graph.EdgeCount())
	for _, e := range r.Graph.Edges() {
		edges = append(edges, layout.Edge{Source: e.Source, Target: e.Target, Size: e.Size})
	}
	return nodes, edges
}

// SetPositions copies layout coordinates onto the graph nodes. Nodes
// missing from pos keep their current position.
func (r *Result) SetPositions(pos layout.Positions) {
	for id, p := range pos {
		if n, ok := r.Graph.Node(id); ok {
			n.X, n.Y = p.X, p.Y
		}
	}
}
