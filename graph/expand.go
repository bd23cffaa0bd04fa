package graph

import (
	"context"

	"github.com/ridoystarlord/relgraph/schema"
)

// ExpandNode reveals the direct reference targets of nodeID. Targets already
// present only gain the connecting edge; new targets become unexpanded nodes
// ringed around the expanded node with zero counts until they are expanded
// themselves. Inputs are never modified.
//
// An unknown nodeID yields an empty delta. A describe failure for nodeID is
// returned as is.
func (s *Service) ExpandNode(ctx context.Context, nodeID string, nodes []Node, edges []Edge) (Delta, error) {
	parent, ok := findNode(nodes, nodeID)
	if !ok {
		return Delta{}, nil
	}

	object, err := s.describer.Describe(ctx, nodeID)
	if err != nil {
		return Delta{}, err
	}

	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}
	edgeSeen := make(map[string]bool, len(edges))
	for _, e := range edges {
		edgeSeen[e.ID] = true
	}

	references := object.ReferenceFields()

	var fresh []string
	for _, field := range references {
		for _, target := range field.ReferenceTargets {
			if target == nodeID || present[target] {
				continue
			}
			present[target] = true
			fresh = append(fresh, target)
		}
	}

	delta := Delta{}
	for i, target := range fresh {
		delta.Nodes = append(delta.Nodes, Node{
			ID:         target,
			Label:      target,
			ObjectName: target,
			IsCustom:   schema.IsCustomName(target),
			Depth:      parent.Depth + 1,
			Position:   LayoutRing(parent.Position, i, len(fresh)),
		})
	}

	for _, field := range references {
		for _, target := range field.ReferenceTargets {
			if target == nodeID {
				continue
			}
			edge := NewEdge(nodeID, field, target)
			if edgeSeen[edge.ID] {
				continue
			}
			edgeSeen[edge.ID] = true
			delta.Edges = append(delta.Edges, edge)
		}
	}

	source := parent
	source.Expanded = true
	source.FieldCount = len(object.Fields)
	source.ReferenceCount = len(references)
	source.IsCustom = object.IsCustom || source.IsCustom
	if object.Label != "" {
		source.Label = object.Label
	}
	delta.Source = &source

	return delta, nil
}
