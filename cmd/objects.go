package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/relgraph/introspect"
	"github.com/ridoystarlord/relgraph/schema"
)

var objectsCustomOnly bool

var objectsCmd = &cobra.Command{
	Use:   "objects",
	Short: "List the objects the configured source can describe",
	Long: `List every object available from the configured source.

Examples:
  relgraph objects                       # Objects from schema.yaml
  relgraph objects --source postgres     # Tables of the database
  relgraph objects --custom              # Custom objects only
`,
	Run: func(cmd *cobra.Command, args []string) {
		source, err := describerFromConfig()
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
		if err := listObjects(cmd.Context(), os.Stdout, source); err != nil {
			fmt.Printf("❌ Failed to list objects: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	objectsCmd.Flags().BoolVar(&objectsCustomOnly, "custom", false, "Only list custom objects")
}

func listObjects(ctx context.Context, w io.Writer, source introspect.Describer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	lister, ok := source.(introspect.ObjectLister)
	if !ok {
		return fmt.Errorf("source cannot list objects")
	}

	objects, err := lister.ListObjects(ctx)
	if err != nil {
		return err
	}

	var shown []schema.ObjectSummary
	for _, o := range objects {
		if objectsCustomOnly && !o.IsCustom {
			continue
		}
		shown = append(shown, o)
	}

	if len(shown) == 0 {
		fmt.Fprintln(w, "📭 No objects found")
		return nil
	}

	custom := color.New(color.FgMagenta)
	fmt.Fprintf(w, "📋 %d objects:\n", len(shown))
	for _, o := range shown {
		fmt.Fprintf(w, "  • %-40s %s", o.Name, o.Label)
		if o.IsCustom {
			custom.Fprint(w, " (custom)")
		}
		fmt.Fprintln(w)
	}
	return nil
}
