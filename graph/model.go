// Package graph builds and mutates relationship graphs between schema
// objects. BuildGraph performs the initial breadth-first discovery from a root
// object, ExpandNode and CollapseNode compute incremental changes for a single
// node. None of them mutate their inputs; ownership of the node and edge
// collections stays with the caller (see package store).
package graph

// Position is a 2D layout coordinate.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is one object in the graph. ID is the object name and never changes.
type Node struct {
	ID             string   `json:"id" yaml:"id"`
	Label          string   `json:"label" yaml:"label"`
	ObjectName     string   `json:"objectName" yaml:"object_name"`
	IsCustom       bool     `json:"isCustom" yaml:"is_custom"`
	FieldCount     int      `json:"fieldCount" yaml:"field_count"`
	ReferenceCount int      `json:"referenceCount" yaml:"reference_count"`
	Depth          int      `json:"depth" yaml:"depth"`
	Expanded       bool     `json:"expanded" yaml:"expanded"`
	Position       Position `json:"position" yaml:"position"`
}

// Edge is a directed relationship created by one reference field.
type Edge struct {
	ID             string `json:"id" yaml:"id"`
	Source         string `json:"source" yaml:"source"`
	Target         string `json:"target" yaml:"target"`
	Field          string `json:"field" yaml:"field"`
	Label          string `json:"label" yaml:"label"`
	IsMasterDetail bool   `json:"isMasterDetail" yaml:"is_master_detail"`
}

// Graph is an ordered node and edge collection.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Delta is the additive result of expanding one node. Source is the expanded
// node as it should look once merged: marked expanded with its counts filled.
type Delta struct {
	Source *Node  `json:"source,omitempty"`
	Nodes  []Node `json:"nodes"`
	Edges  []Edge `json:"edges"`
}

// Empty reports whether the delta adds nothing to the topology.
func (d Delta) Empty() bool {
	return len(d.Nodes) == 0 && len(d.Edges) == 0
}

// Node returns the node with the given id.
func (g Graph) Node(id string) (Node, bool) {
	return findNode(g.Nodes, id)
}

// HasEdge reports whether an edge with the given id exists.
func (g Graph) HasEdge(id string) bool {
	for _, e := range g.Edges {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with g.
func (g Graph) Clone() Graph {
	return Graph{
		Nodes: append([]Node(nil), g.Nodes...),
		Edges: append([]Edge(nil), g.Edges...),
	}
}

func findNode(nodes []Node, id string) (Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
