package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ridoystarlord/relgraph/generator"
	"github.com/ridoystarlord/relgraph/graph"
	"github.com/ridoystarlord/relgraph/store"
)

var (
	docsFormat string
	docsOutput string
)

var docsCmd = &cobra.Command{
	Use:   "docs <Object>",
	Short: "Export the relationship graph of an object",
	Long: `Build the relationship graph of an object and export it as a diagram or data file.

Supported formats:
  - mermaid: Mermaid flowchart
  - plantuml: PlantUML entity diagram
  - graphviz: Graphviz DOT format
  - json: graph nodes and edges
  - d3: D3 force layout nodes and links
  - yaml: graph snapshot
  - all: every format into a directory

Examples:
  relgraph docs Quote --format mermaid --output quote.md
  relgraph docs Quote --format graphviz --depth 2
  relgraph docs Quote --format all --output docs/
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		g, err := buildForExport(cmd.Context(), args[0])
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}

		if docsFormat == "all" {
			dir := docsOutput
			if dir == "" {
				dir = "docs"
			}
			paths, err := generator.WriteAll(dir, g)
			if err != nil {
				fmt.Printf("❌ Error generating documentation: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ All documentation generated in: %s/\n", dir)
			for _, p := range paths {
				fmt.Printf("  - %s\n", p)
			}
			return
		}

		format, err := generator.ParseFormat(docsFormat)
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			fmt.Println("Supported formats: mermaid, plantuml, graphviz, json, d3, yaml, all")
			os.Exit(1)
		}

		content, err := generator.Generate(format, g)
		if err != nil {
			fmt.Printf("❌ Error generating %s: %v\n", format, err)
			os.Exit(1)
		}

		output := docsOutput
		if output == "" {
			output = generator.DefaultFilename(format)
		}
		if output == "-" {
			os.Stdout.Write(content)
			return
		}
		if err := os.WriteFile(output, content, 0644); err != nil {
			fmt.Printf("❌ Error writing %s: %v\n", output, err)
			os.Exit(1)
		}

		fmt.Printf("✅ %s graph saved to: %s\n", format, output)
	},
}

func init() {
	docsCmd.Flags().StringVarP(&docsFormat, "format", "f", "mermaid", "Output format (mermaid, plantuml, graphviz, json, d3, yaml, all)")
	docsCmd.Flags().StringVarP(&docsOutput, "output", "o", "", "Output file or directory, - for stdout (default: format-specific filename)")
}

func buildForExport(ctx context.Context, root string) (graph.Graph, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	source, err := describerFromConfig()
	if err != nil {
		return graph.Graph{}, err
	}

	s := store.New(source)
	if err := s.SetDepth(viper.GetInt("depth")); err != nil {
		return graph.Graph{}, err
	}
	if err := s.SetRoot(ctx, root); err != nil {
		g := s.Graph()
		if len(g.Nodes) == 0 {
			return g, fmt.Errorf("build graph for %s: %v", root, err)
		}
		fmt.Printf("⚠️  Graph is incomplete: %v\n", err)
	}
	return s.Graph(), nil
}
