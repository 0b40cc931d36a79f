package graph

import (
	"sort"

	"github.com/ritzau/media-graph/pkg/model"
)

// Diff computes the changes from old to next. A nil old graph yields every
// node and edge of next as added.
func Diff(old, next *model.GraphData) *model.GraphDiff {
	diff := &model.GraphDiff{
		AddedNodes:    make([]int64, 0),
		RemovedNodes:  make([]int64, 0),
		ModifiedNodes: make([]int64, 0),
		AddedEdges:    make([][2]int64, 0),
		RemovedEdges:  make([][2]int64, 0),
	}

	oldNodes := make(map[int64]model.GraphNode)
	oldEdges := make(map[[2]int64]bool)
	if old != nil {
		diff.Since = old.Version
		for _, n := range old.Nodes {
			oldNodes[n.ID] = n
		}
		for _, e := range old.Edges {
			oldEdges[edgeKey(e.Source, e.Target)] = true
		}
	}

	newNodes := make(map[int64]bool, len(next.Nodes))
	for _, n := range next.Nodes {
		newNodes[n.ID] = true
		prev, ok := oldNodes[n.ID]
		switch {
		case !ok:
			diff.AddedNodes = append(diff.AddedNodes, n.ID)
		case !nodesEqual(prev, n):
			diff.ModifiedNodes = append(diff.ModifiedNodes, n.ID)
		}
	}
	for id := range oldNodes {
		if !newNodes[id] {
			diff.RemovedNodes = append(diff.RemovedNodes, id)
		}
	}

	newEdges := make(map[[2]int64]bool, len(next.Edges))
	for _, e := range next.Edges {
		key := edgeKey(e.Source, e.Target)
		newEdges[key] = true
		if !oldEdges[key] {
			diff.AddedEdges = append(diff.AddedEdges, key)
		}
	}
	for key := range oldEdges {
		if !newEdges[key] {
			diff.RemovedEdges = append(diff.RemovedEdges, key)
		}
	}

	sortIDs(diff.AddedNodes)
	sortIDs(diff.RemovedNodes)
	sortIDs(diff.ModifiedNodes)
	sortPairs(diff.AddedEdges)
	sortPairs(diff.RemovedEdges)
	return diff
}

// edgeKey orders the endpoints; edges are undirected
func edgeKey(a, b int64) [2]int64 {
	if a > b {
		a, b = b, a
	}
	return [2]int64{a, b}
}

// nodesEqual compares everything but the position, which changes with
// every layout
func nodesEqual(a, b model.GraphNode) bool {
	return a.Label == b.Label &&
		a.Size == b.Size &&
		a.Rating == b.Rating &&
		a.Color == b.Color &&
		a.Seed == b.Seed &&
		a.Status == b.Status
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func sortPairs(pairs [][2]int64) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
}
