// Package generator renders a relationship graph into diagram and data
// formats: Mermaid, PlantUML, Graphviz DOT, JSON, D3 node/link JSON and YAML.
package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ridoystarlord/relgraph/graph"
)

type Format string

const (
	Mermaid  Format = "mermaid"
	PlantUML Format = "plantuml"
	Graphviz Format = "graphviz"
	JSON     Format = "json"
	D3       Format = "d3"
	YAML     Format = "yaml"
)

// Formats lists every supported output format in the order "all" writes them.
var Formats = []Format{Mermaid, PlantUML, Graphviz, JSON, D3, YAML}

// DefaultFilename returns the file name used when no output path is given.
func DefaultFilename(f Format) string {
	switch f {
	case Mermaid:
		return "graph.md"
	case PlantUML:
		return "graph.puml"
	case Graphviz:
		return "graph.dot"
	case JSON:
		return "graph.json"
	case D3:
		return "graph.d3.json"
	case YAML:
		return "graph.yaml"
	}
	return "graph.txt"
}

// ParseFormat validates a user supplied format name.
func ParseFormat(name string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(name) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format: %s", name)
}

// Generate renders g in the requested format.
func Generate(f Format, g graph.Graph) ([]byte, error) {
	switch f {
	case Mermaid:
		return []byte(GenerateMermaid(g)), nil
	case PlantUML:
		return []byte(GeneratePlantUML(g)), nil
	case Graphviz:
		return []byte(GenerateGraphviz(g)), nil
	case JSON:
		return GenerateJSON(g)
	case D3:
		return GenerateD3(g)
	case YAML:
		return yaml.Marshal(g)
	}
	return nil, fmt.Errorf("unsupported format: %s", f)
}

// WriteAll renders g in every format into dir and returns the written paths.
func WriteAll(dir string, g graph.Graph) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %v", err)
	}
	var paths []string
	for _, f := range Formats {
		content, err := Generate(f, g)
		if err != nil {
			return paths, fmt.Errorf("generate %s: %v", f, err)
		}
		path := filepath.Join(dir, DefaultFilename(f))
		if err := os.WriteFile(path, content, 0644); err != nil {
			return paths, fmt.Errorf("write %s: %v", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func GenerateMermaid(g graph.Graph) string {
	var content strings.Builder

	content.WriteString("# Object Relationship Graph\n\n")
	content.WriteString("```mermaid\nflowchart LR\n")

	for _, n := range g.Nodes {
		content.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", mermaidID(n.ID), nodeCaption(n)))
	}

	// Master-detail edges are drawn thick, lookups dotted.
	for _, e := range g.Edges {
		arrow := "-.->"
		if e.IsMasterDetail {
			arrow = "==>"
		}
		content.WriteString(fmt.Sprintf("    %s %s|%s| %s\n", mermaidID(e.Source), arrow, e.Field, mermaidID(e.Target)))
	}

	content.WriteString("```\n")
	return content.String()
}

func GeneratePlantUML(g graph.Graph) string {
	var content strings.Builder

	content.WriteString("@startuml\n")
	content.WriteString("!theme plain\n")
	content.WriteString("skinparam linetype ortho\n\n")

	for _, n := range g.Nodes {
		content.WriteString(fmt.Sprintf("entity \"%s\" as %s {\n", n.Label, mermaidID(n.ID)))
		content.WriteString(fmt.Sprintf("  %s\n", n.ObjectName))
		content.WriteString("  --\n")
		content.WriteString(fmt.Sprintf("  fields : %d\n", n.FieldCount))
		content.WriteString(fmt.Sprintf("  references : %d\n", n.ReferenceCount))
		if n.IsCustom {
			content.WriteString("  <<custom>>\n")
		}
		content.WriteString("}\n\n")
	}

	for _, e := range g.Edges {
		// A master-detail child cannot exist without its parent.
		rel := "}o..o|"
		if e.IsMasterDetail {
			rel = "}o--||"
		}
		content.WriteString(fmt.Sprintf("%s %s %s : \"%s\"\n", mermaidID(e.Source), rel, mermaidID(e.Target), e.Field))
	}

	content.WriteString("@enduml\n")
	return content.String()
}

func GenerateGraphviz(g graph.Graph) string {
	var content strings.Builder

	content.WriteString("digraph Relationships {\n")
	content.WriteString("  rankdir=LR;\n")
	content.WriteString("  node [shape=box, style=rounded];\n\n")

	for _, n := range g.Nodes {
		attrs := fmt.Sprintf("label=\"%s\\n%s\"", n.Label, n.ObjectName)
		if n.Depth == 0 {
			attrs += ", penwidth=2"
		}
		if n.IsCustom {
			attrs += ", color=\"#1f77b4\""
		}
		content.WriteString(fmt.Sprintf("  %q [%s];\n", n.ID, attrs))
	}
	if len(g.Nodes) > 0 && len(g.Edges) > 0 {
		content.WriteString("\n")
	}

	for _, e := range g.Edges {
		style := e.Style()
		line := "solid"
		if style.Dash != "0" {
			line = "dashed"
		}
		content.WriteString(fmt.Sprintf("  %q -> %q [label=%q, style=%s, color=%q, penwidth=%d];\n",
			e.Source, e.Target, e.Field, line, style.Stroke, style.Width))
	}

	content.WriteString("}\n")
	return content.String()
}

func GenerateJSON(g graph.Graph) ([]byte, error) {
	if g.Nodes == nil {
		g.Nodes = []graph.Node{}
	}
	if g.Edges == nil {
		g.Edges = []graph.Edge{}
	}
	return json.MarshalIndent(g, "", "  ")
}

func mermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(id)
}

func nodeCaption(n graph.Node) string {
	caption := n.Label
	if caption == "" {
		caption = n.ID
	}
	if n.IsCustom {
		caption += " (custom)"
	}
	return caption
}
