package graph

// CollapseNode hides everything reachable only through nodeID and returns
// replacement node and edge collections with nodeID marked unexpanded.
//
// All edges leaving nodeID are removed. A descendant survives when it can
// still be reached, over the remaining edges, from a node outside nodeID's
// descendant set, so objects shared with another visible parent stay. The
// decision is taken against the collections as passed in, not recounted as
// nodes are removed, so the result does not depend on edge order. Depth zero
// nodes (the build root) are never removed. An unknown nodeID returns copies
// of the inputs.
func CollapseNode(nodeID string, nodes []Node, edges []Edge) ([]Node, []Edge) {
	if _, ok := findNode(nodes, nodeID); !ok {
		return append([]Node(nil), nodes...), append([]Edge(nil), edges...)
	}

	outgoing := map[string][]Edge{}
	for _, e := range edges {
		outgoing[e.Source] = append(outgoing[e.Source], e)
	}

	descendants := map[string]bool{}
	stack := []string{nodeID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range outgoing[id] {
			if e.Target == nodeID || descendants[e.Target] {
				continue
			}
			descendants[e.Target] = true
			stack = append(stack, e.Target)
		}
	}

	removedEdges := map[string]bool{}
	for _, e := range outgoing[nodeID] {
		removedEdges[e.ID] = true
	}

	reached := map[string]bool{}
	for _, n := range nodes {
		if !descendants[n.ID] || n.Depth == 0 {
			reached[n.ID] = true
			stack = append(stack, n.ID)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range outgoing[id] {
			if removedEdges[e.ID] || reached[e.Target] {
				continue
			}
			reached[e.Target] = true
			stack = append(stack, e.Target)
		}
	}

	pruned := map[string]bool{}
	for id := range descendants {
		if !reached[id] {
			pruned[id] = true
		}
	}

	keptNodes := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if pruned[n.ID] {
			continue
		}
		if n.ID == nodeID {
			n.Expanded = false
		}
		keptNodes = append(keptNodes, n)
	}

	keptEdges := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if removedEdges[e.ID] || pruned[e.Source] || pruned[e.Target] {
			continue
		}
		keptEdges = append(keptEdges, e)
	}

	return keptNodes, keptEdges
}
