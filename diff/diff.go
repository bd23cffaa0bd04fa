package diff

import (
	"github.com/ridoystarlord/relgraph/graph"
)

type OperationType string

const (
	AddNode      OperationType = "ADD_NODE"
	RemoveNode   OperationType = "REMOVE_NODE"
	ExpandNode   OperationType = "EXPAND_NODE"
	CollapseNode OperationType = "COLLAPSE_NODE"
	AddEdge      OperationType = "ADD_EDGE"
	RemoveEdge   OperationType = "REMOVE_EDGE"
)

type Operation struct {
	Type   OperationType `json:"type"`
	NodeID string        `json:"nodeId,omitempty"` // for node operations
	Node   *graph.Node   `json:"node,omitempty"`   // for ADD_NODE
	Edge   *graph.Edge   `json:"edge,omitempty"`   // for edge operations
}

// DiffGraphs lists the topology changes that turn before into after. Removed
// nodes come first, then added nodes, expanded-flag changes, removed edges and
// added edges, each in collection order.
func DiffGraphs(before, after graph.Graph) []Operation {
	var ops []Operation

	beforeNodes := map[string]graph.Node{}
	afterNodes := map[string]graph.Node{}
	for _, n := range before.Nodes {
		beforeNodes[n.ID] = n
	}
	for _, n := range after.Nodes {
		afterNodes[n.ID] = n
	}

	for _, n := range before.Nodes {
		if _, exists := afterNodes[n.ID]; !exists {
			ops = append(ops, Operation{Type: RemoveNode, NodeID: n.ID})
		}
	}

	for _, n := range after.Nodes {
		if _, exists := beforeNodes[n.ID]; !exists {
			node := n
			ops = append(ops, Operation{Type: AddNode, NodeID: n.ID, Node: &node})
		}
	}

	for _, n := range after.Nodes {
		old, exists := beforeNodes[n.ID]
		if !exists || old.Expanded == n.Expanded {
			continue
		}
		if n.Expanded {
			ops = append(ops, Operation{Type: ExpandNode, NodeID: n.ID})
		} else {
			ops = append(ops, Operation{Type: CollapseNode, NodeID: n.ID})
		}
	}

	beforeEdges := map[string]bool{}
	afterEdges := map[string]bool{}
	for _, e := range before.Edges {
		beforeEdges[e.ID] = true
	}
	for _, e := range after.Edges {
		afterEdges[e.ID] = true
	}

	for _, e := range before.Edges {
		if !afterEdges[e.ID] {
			edge := e
			ops = append(ops, Operation{Type: RemoveEdge, Edge: &edge})
		}
	}

	for _, e := range after.Edges {
		if !beforeEdges[e.ID] {
			edge := e
			ops = append(ops, Operation{Type: AddEdge, Edge: &edge})
		}
	}

	return ops
}

// Summary counts operations by type.
func Summary(ops []Operation) map[OperationType]int {
	counts := map[OperationType]int{}
	for _, op := range ops {
		counts[op.Type]++
	}
	return counts
}
