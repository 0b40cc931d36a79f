package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/ritzau/media-graph/pkg/model"
)

// Origin records how a node entered the graph
type Origin int

const (
	OriginRecommendation Origin = iota
	OriginSeed
)

// Node is a media item in the recommendation graph
type Node struct {
	ID         int64
	Label      string
	Color      string
	Status     model.MediaListStatus // empty when not on the user's list
	Origin     Origin
	Popularity int

	// Set by the scaler and the layout
	Size   float64
	Rating int
	X, Y   float64
}

// IsSeed reports whether the node was requested explicitly
func (n *Node) IsSeed() bool {
	return n.Origin == OriginSeed
}

// Edge is an undirected recommendation link. Source is the item whose
// recommendation list produced the edge first.
type Edge struct {
	Source int64
	Target int64
	Size   float64
	Color  string
	Label  string
}

type pairKey [2]int64

func keyFor(a, b int64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// RecommendationGraph holds media nodes and at most one edge per unordered
// pair of nodes. Topology lives in a gonum weighted undirected graph whose
// edge weights are the edge sizes.
type RecommendationGraph struct {
	graph *simple.WeightedUndirectedGraph
	nodes map[int64]*Node
	edges map[pairKey]*Edge
}

// NewRecommendationGraph creates an empty graph
func NewRecommendationGraph() *RecommendationGraph {
	return &RecommendationGraph{
		graph: simple.NewWeightedUndirectedGraph(0, 0),
		nodes: make(map[int64]*Node),
		edges: make(map[pairKey]*Edge),
	}
}

// AddNode adds n unless a node with the same id already exists.
// Returns false when the node was already present.
func (g *RecommendationGraph) AddNode(n *Node) bool {
	if _, exists := g.nodes[n.ID]; exists {
		return false
	}
	g.nodes[n.ID] = n
	g.graph.AddNode(simple.Node(n.ID))
	return true
}

// Node returns the node with the given id
func (g *RecommendationGraph) Node(id int64) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasNode reports whether id is in the graph
func (g *RecommendationGraph) HasNode(id int64) bool {
	_, ok := g.nodes[id]
	return ok
}

// HasEdge reports whether an edge exists between a and b in either direction
func (g *RecommendationGraph) HasEdge(a, b int64) bool {
	return g.graph.HasEdgeBetween(a, b)
}

// AddEdge adds e if both endpoints exist and the unordered pair is not yet
// connected. Self loops are rejected. Returns false when nothing was added.
func (g *RecommendationGraph) AddEdge(e *Edge) bool {
	if e.Source == e.Target {
		return false
	}
	if !g.HasNode(e.Source) || !g.HasNode(e.Target) {
		return false
	}
	if g.HasEdge(e.Source, e.Target) {
		return false
	}

	from := g.graph.Node(e.Source)
	to := g.graph.Node(e.Target)
	g.graph.SetWeightedEdge(g.graph.NewWeightedEdge(from, to, e.Size))
	g.edges[keyFor(e.Source, e.Target)] = e
	return true
}

// Edge returns the edge between a and b, regardless of direction
func (g *RecommendationGraph) Edge(a, b int64) (*Edge, bool) {
	e, ok := g.edges[keyFor(a, b)]
	return e, ok
}

// RemoveNode removes the node and every edge touching it
func (g *RecommendationGraph) RemoveNode(id int64) {
	if !g.HasNode(id) {
		return
	}
	neighbors := g.graph.From(id)
	for neighbors.Next() {
		delete(g.edges, keyFor(id, neighbors.Node().ID()))
	}
	g.graph.RemoveNode(id)
	delete(g.nodes, id)
}

// Degree returns the number of edges touching id
func (g *RecommendationGraph) Degree(id int64) int {
	if !g.HasNode(id) {
		return 0
	}
	return g.graph.From(id).Len()
}

// Neighbors returns the ids adjacent to id in ascending order
func (g *RecommendationGraph) Neighbors(id int64) []int64 {
	if !g.HasNode(id) {
		return nil
	}
	var ids []int64
	iter := g.graph.From(id)
	for iter.Next() {
		ids = append(ids, iter.Node().ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// NodeCount returns the number of nodes
func (g *RecommendationGraph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges
func (g *RecommendationGraph) EdgeCount() int {
	return len(g.edges)
}

// Nodes returns all nodes ordered by id
func (g *RecommendationGraph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// NodeIDs returns all node ids in ascending order
func (g *RecommendationGraph) NodeIDs() []int64 {
	ids := make([]int64, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Edges returns all edges ordered by (source, target)
func (g *RecommendationGraph) Edges() []*Edge {
	edges := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges
}
