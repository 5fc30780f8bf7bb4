package flow

// Layers partitions the graph into ordered rows for hierarchical display.
//
// Row 0 holds every node with no incoming edge across the whole adjacency
// (not necessarily just the root: disconnected reachable subgraphs can
// contribute). Each following row is the deduplicated set of not yet
// processed children of the previous row, so a node lands in the first
// row in which it is discovered and no edge ever points backward into a
// finalized row. The walk stops at the first empty row.
//
// Nodes whose every predecessor sits in an already processed row but that
// were never discovered (cycles) are silently dropped from the result.
// Cyclic questionnaires are a documented limitation, not an error.
func (g *Graph) Layers() [][]string {
	if g.Empty() {
		return nil
	}

	hasIncoming := make(map[string]bool, len(g.order))
	for _, id := range g.order {
		for _, target := range g.adj[id] {
			hasIncoming[target] = true
		}
	}

	var top []string
	processed := make(map[string]bool, len(g.order))
	for _, id := range g.order {
		if !hasIncoming[id] {
			top = append(top, id)
			processed[id] = true
		}
	}
	if len(top) == 0 {
		return nil
	}

	layers := [][]string{top}
	for {
		var next []string
		for _, id := range layers[len(layers)-1] {
			for _, child := range g.adj[id] {
				if processed[child] {
					continue
				}
				processed[child] = true
				next = append(next, child)
			}
		}
		if len(next) == 0 {
			return layers
		}
		layers = append(layers, next)
	}
}

// Rank returns each node's layer index (0 = top). Nodes dropped from
// layering (cycle remnants) are absent from the map.
func (g *Graph) Rank() map[string]int {
	ranks := make(map[string]int, len(g.order))
	for i, layer := range g.Layers() {
		for _, id := range layer {
			ranks[id] = i
		}
	}
	return ranks
}
