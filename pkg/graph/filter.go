package graph

// PruneUnderConnected removes every non-seed node recommended fewer than
// threshold times, together with its edges. Seeds always survive and the
// aggregates are left untouched. A threshold of zero or less disables the
// filter. Returns the removed ids in ascending order.
func PruneUnderConnected(g *RecommendationGraph, aggregates Aggregates, threshold int) []int64 {
	if threshold <= 0 {
		return nil
	}

	var removed []int64
	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		if n.IsSeed() {
			continue
		}
		if aggregates[id].Count < threshold {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		g.RemoveNode(id)
	}
	return removed
}
