package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ridoystarlord/relgraph/diff"
	"github.com/ridoystarlord/relgraph/graph"
	"github.com/ridoystarlord/relgraph/store"
)

var (
	graphExpand   []string
	graphCollapse []string
	graphFormat   string
)

var graphCmd = &cobra.Command{
	Use:   "graph <Object>",
	Short: "Build the relationship graph of an object",
	Long: `Build the relationship graph rooted at an object and print it.

Nodes are discovered breadth-first up to --depth levels. --expand and --collapse
toggle nodes afterwards, in the order given, and print what each toggle changed.

Examples:
  relgraph graph Quote                          # Direct references of Quote
  relgraph graph Quote --depth 2                # Two levels deep
  relgraph graph Quote --expand Opportunity     # Then expand Opportunity
  relgraph graph Quote --expand Opportunity --collapse Opportunity
  relgraph graph Quote --format json            # Print the graph as JSON
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runGraph(cmd.Context(), os.Stdout, args[0]); err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	graphCmd.Flags().StringSliceVar(&graphExpand, "expand", nil, "Nodes to expand after building")
	graphCmd.Flags().StringSliceVar(&graphCollapse, "collapse", nil, "Nodes to collapse after expanding")
	graphCmd.Flags().StringVarP(&graphFormat, "format", "f", "tree", "Output format (tree, json)")
}

func runGraph(ctx context.Context, w io.Writer, root string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	source, err := describerFromConfig()
	if err != nil {
		return err
	}

	s := store.New(source)
	if err := s.SetDepth(viper.GetInt("depth")); err != nil {
		return err
	}

	if err := s.SetRoot(ctx, root); err != nil {
		if len(s.Graph().Nodes) == 0 {
			return fmt.Errorf("build graph for %s: %v", root, err)
		}
		fmt.Fprintf(w, "⚠️  Graph is incomplete: %v\n", err)
	}

	return renderGraphSession(ctx, w, s, graphExpand, graphCollapse, graphFormat)
}

// renderGraphSession applies the requested toggles to s and writes the result.
func renderGraphSession(ctx context.Context, w io.Writer, s *store.Store, expand, collapse []string, format string) error {
	if format != "tree" && format != "json" {
		return fmt.Errorf("unsupported format: %s (expected tree or json)", format)
	}

	root := s.Snapshot().CurrentObject
	if format == "tree" {
		printTree(w, s.Graph(), root)
	}

	type toggle struct {
		action string
		node   string
	}
	var toggles []toggle
	for _, id := range expand {
		toggles = append(toggles, toggle{"expand", id})
	}
	for _, id := range collapse {
		toggles = append(toggles, toggle{"collapse", id})
	}

	for _, t := range toggles {
		before := s.Graph()
		if _, ok := before.Node(t.node); !ok {
			fmt.Fprintf(w, "⚠️  %s is not in the graph, skipping %s\n", t.node, t.action)
			continue
		}

		switch t.action {
		case "expand":
			if err := s.Expand(ctx, t.node); err != nil {
				return fmt.Errorf("expand %s: %v", t.node, err)
			}
		case "collapse":
			s.Collapse(t.node)
		}

		if format == "tree" {
			fmt.Fprintf(w, "\n%s %s\n", strings.ToUpper(t.action), t.node)
			fmt.Fprintln(w, strings.Repeat("=", 50))
			printOperations(w, diff.DiffGraphs(before, s.Graph()))
			fmt.Fprintln(w)
			printTree(w, s.Graph(), root)
		}
	}

	if format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(s.Snapshot())
	}
	return nil
}

// printTree writes the graph as an indented tree following outgoing edges
// from root. Nodes reached a second time are printed once more and marked.
func printTree(w io.Writer, g graph.Graph, root string) {
	bold := color.New(color.FgCyan, color.Bold)
	faint := color.New(color.FgHiBlack)

	rootNode, ok := g.Node(root)
	if !ok {
		fmt.Fprintln(w, "📭 Graph is empty")
		return
	}

	out := map[string][]graph.Edge{}
	for _, e := range g.Edges {
		out[e.Source] = append(out[e.Source], e)
	}

	bold.Fprintf(w, "📦 %s", rootNode.Label)
	fmt.Fprintf(w, " %s\n", nodeMarker(rootNode))

	shown := map[string]bool{root: true}
	var walk func(id, indent string)
	walk = func(id, indent string) {
		edges := out[id]
		for i, e := range edges {
			branch, next := "├── ", "│   "
			if i == len(edges)-1 {
				branch, next = "└── ", "    "
			}
			target, _ := g.Node(e.Target)
			arrow := "┈>"
			if e.IsMasterDetail {
				arrow = "━>"
			}
			fmt.Fprintf(w, "%s%s%s %s ", indent, branch, e.Field, arrow)
			if shown[e.Target] {
				faint.Fprintf(w, "%s ↺\n", target.Label)
				continue
			}
			shown[e.Target] = true
			fmt.Fprintf(w, "%s %s\n", target.Label, nodeMarker(target))
			walk(e.Target, indent+next)
		}
	}
	walk(root, "")

	fmt.Fprintf(w, "\n📊 %d nodes, %d edges\n", len(g.Nodes), len(g.Edges))
}

func nodeMarker(n graph.Node) string {
	marker := "[+]"
	if n.Expanded {
		marker = "[-]"
	}
	if n.IsCustom {
		marker += " (custom)"
	}
	return marker
}

func printOperations(w io.Writer, ops []diff.Operation) {
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	blue := color.New(color.FgBlue, color.Bold)

	if len(ops) == 0 {
		fmt.Fprintln(w, "✅ No changes")
		return
	}

	for _, op := range ops {
		switch op.Type {
		case diff.AddNode:
			green.Fprintf(w, "  ➕ ADD NODE %s\n", op.NodeID)
		case diff.RemoveNode:
			red.Fprintf(w, "  ❌ REMOVE NODE %s\n", op.NodeID)
		case diff.ExpandNode:
			blue.Fprintf(w, "  🔄 EXPANDED %s\n", op.NodeID)
		case diff.CollapseNode:
			blue.Fprintf(w, "  🔄 COLLAPSED %s\n", op.NodeID)
		case diff.AddEdge:
			green.Fprintf(w, "  ➕ ADD EDGE %s → %s (%s)\n", op.Edge.Source, op.Edge.Target, op.Edge.Field)
		case diff.RemoveEdge:
			red.Fprintf(w, "  ❌ REMOVE EDGE %s → %s (%s)\n", op.Edge.Source, op.Edge.Target, op.Edge.Field)
		}
	}

	summary := diff.Summary(ops)
	fmt.Fprintf(w, "📊 %d nodes added, %d removed, %d edges added, %d removed\n",
		summary[diff.AddNode], summary[diff.RemoveNode], summary[diff.AddEdge], summary[diff.RemoveEdge])
}
