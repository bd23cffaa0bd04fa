package generator

import (
	"encoding/json"
	"strconv"

	"github.com/ridoystarlord/relgraph/graph"
)

// D3Graph is the node/link document consumed by a D3 force simulation.
type D3Graph struct {
	Nodes    []D3Node `json:"nodes"`
	Links    []D3Link `json:"links"`
	Directed bool     `json:"directed"`
}

type D3Node struct {
	ID         string            `json:"id"`
	Label      string            `json:"label,omitempty"`
	Group      string            `json:"group,omitempty"`
	X          float64           `json:"x"`
	Y          float64           `json:"y"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type D3Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
	Color  string `json:"color,omitempty"`
	Style  string `json:"style,omitempty"`
	Kind   string `json:"kind"`
}

// ToD3 converts g to its D3 representation. Nodes are grouped by depth.
func ToD3(g graph.Graph) D3Graph {
	out := D3Graph{Nodes: []D3Node{}, Links: []D3Link{}, Directed: true}

	for _, n := range g.Nodes {
		out.Nodes = append(out.Nodes, D3Node{
			ID:    n.ID,
			Label: n.Label,
			Group: "depth-" + strconv.Itoa(n.Depth),
			X:     n.Position.X,
			Y:     n.Position.Y,
			Attributes: map[string]string{
				"fields":     strconv.Itoa(n.FieldCount),
				"references": strconv.Itoa(n.ReferenceCount),
				"custom":     strconv.FormatBool(n.IsCustom),
				"expanded":   strconv.FormatBool(n.Expanded),
			},
		})
	}

	for _, e := range g.Edges {
		style := e.Style()
		dash := "solid"
		if style.Dash != "0" {
			dash = "dashed"
		}
		out.Links = append(out.Links, D3Link{
			Source: e.Source,
			Target: e.Target,
			Label:  e.Label,
			Color:  style.Stroke,
			Style:  dash,
			Kind:   e.Kind(),
		})
	}

	return out
}

func GenerateD3(g graph.Graph) ([]byte, error) {
	return json.MarshalIndent(ToD3(g), "", "  ")
}
