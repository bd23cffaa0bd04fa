package graph

import (
	"fmt"

	"github.com/ridoystarlord/relgraph/schema"
)

const (
	masterDetailKind = "Master-Detail"
	lookupKind       = "Lookup"
)

// EdgeStyle is the stroke used when drawing an edge.
type EdgeStyle struct {
	Stroke string `json:"stroke"`
	Dash   string `json:"strokeDasharray"`
	Width  int    `json:"strokeWidth"`
}

// EdgeID is the composite id of the edge created by field on source pointing
// at target.
func EdgeID(source, field, target string) string {
	return fmt.Sprintf("%s-%s-%s", source, field, target)
}

// NewEdge creates the edge for one reference field target.
func NewEdge(source string, field schema.FieldDescriptor, target string) Edge {
	label := field.Label
	if label == "" {
		label = field.Name
	}
	e := Edge{
		ID:             EdgeID(source, field.Name, target),
		Source:         source,
		Target:         target,
		Field:          field.Name,
		IsMasterDetail: field.IsCascadeDelete,
	}
	e.Label = fmt.Sprintf("%s (%s)", label, e.Kind())
	return e
}

// Kind returns "Master-Detail" or "Lookup".
func (e Edge) Kind() string {
	if e.IsMasterDetail {
		return masterDetailKind
	}
	return lookupKind
}

// Style returns solid black strokes for master-detail edges and dashed grey
// strokes for lookups.
func (e Edge) Style() EdgeStyle {
	if e.IsMasterDetail {
		return EdgeStyle{Stroke: "#000", Dash: "0", Width: 2}
	}
	return EdgeStyle{Stroke: "#888", Dash: "5,5", Width: 1}
}
