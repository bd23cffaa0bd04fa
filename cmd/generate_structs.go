package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ridoystarlord/relgraph/generator"
	"github.com/ridoystarlord/relgraph/schema"
)

var outputDir string
var packageName string

func init() {
	generateStructsCmd.Flags().StringVarP(&outputDir, "output", "o", "models", "Output directory for generated structs")
	generateStructsCmd.Flags().StringVarP(&packageName, "package", "p", "models", "Package name for generated structs")
}

var generateStructsCmd = &cobra.Command{
	Use:   "generate-structs",
	Short: "Generate tagged Go structs from the YAML schema",
	Long: `Generate Go structs with relgraph tags from your YAML schema, so the same
objects can be read with --source structs.

Examples:
  relgraph generate-structs                        # Generate structs in ./models/
  relgraph generate-structs -o ./internal/models   # Custom output directory
  relgraph generate-structs -p entities            # Custom package name
`,
	Run: func(cmd *cobra.Command, args []string) {
		objects, err := loadLocalObjects(sourceYAML)
		if err != nil {
			fmt.Println("❌ Loading", viper.GetString("schema")+":", err)
			os.Exit(1)
		}

		path, err := writeStructs(outputDir, packageName, objects)
		if err != nil {
			fmt.Println("❌ Generating structs:", err)
			os.Exit(1)
		}

		fmt.Printf("✅ Generated %d structs in %s\n", len(objects), path)
	},
}

func writeStructs(dir, pkg string, objects []schema.ObjectDescriptor) (string, error) {
	content, err := generator.GenerateStructs(pkg, objects)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating models directory: %v", err)
	}

	path := filepath.Join(dir, "models.go")
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %v", path, err)
	}
	return path, nil
}
