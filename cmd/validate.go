package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ridoystarlord/relgraph/introspect"
	"github.com/ridoystarlord/relgraph/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate object definitions before graphing them",
	Long: `Validate your YAML schema or Go struct models.

This command checks:
- Object and field names
- Duplicate objects and fields
- Reference fields without target objects
- Reference targets that no object defines
- Self references (reported as info, they never draw an edge)

The validator works in two modes:
- Offline: Validates the local definitions only (--source yaml or structs)
- Online: Also resolves reference targets against a live source (--source postgres or salesforce)

Examples:
  relgraph validate                           # Validate schema.yaml
  relgraph validate --schema crm.yaml         # Validate another schema file
  relgraph validate --source structs          # Validate Go struct models
  relgraph validate --format json             # Output validation results as JSON
`,
	Run: func(cmd *cobra.Command, args []string) {
		valid, err := validateSchema(cmd.Context(), os.Stdout)
		if err != nil {
			fmt.Printf("❌ Schema validation failed: %v\n", err)
			os.Exit(1)
		}
		if !valid {
			os.Exit(1)
		}
	},
}

var validateFormat string

func init() {
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")
}

func validateSchema(ctx context.Context, w io.Writer) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	source := viper.GetString("source")
	local := source
	if source != sourceStructs {
		local = sourceYAML
	}

	objects, err := loadLocalObjects(local)
	if err != nil {
		return false, err
	}

	var lister introspect.ObjectLister
	if source == sourcePostgres || source == sourceSalesforce {
		live, err := describerFromConfig()
		if err != nil {
			return false, err
		}
		lister, _ = live.(introspect.ObjectLister)
	}

	result, err := validator.NewSchemaValidator(lister).ValidateSchema(ctx, objects)
	if err != nil {
		return false, fmt.Errorf("failed to validate schema: %v", err)
	}

	if validateFormat == "json" {
		return result.Valid, outputJSON(w, result)
	}
	return result.Valid, outputText(w, result)
}

func outputJSON(w io.Writer, result *validator.ValidationResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputText(w io.Writer, result *validator.ValidationResult) error {
	if result.Valid {
		color.New(color.FgGreen).Fprintln(w, "✅ Schema validation passed!")
	} else {
		color.New(color.FgRed).Fprintln(w, "❌ Schema validation failed!")
	}

	printIssues(w, "🔴 Errors", result.Errors)
	printIssues(w, "🟡 Warnings", result.Warnings)
	printIssues(w, "🔵 Info", result.Info)

	fmt.Fprintf(w, "\n📊 Summary:\n")
	fmt.Fprintf(w, "  • Errors: %d\n", len(result.Errors))
	fmt.Fprintf(w, "  • Warnings: %d\n", len(result.Warnings))
	fmt.Fprintf(w, "  • Info: %d\n", len(result.Info))

	if result.Valid {
		fmt.Fprintf(w, "\n🎉 Your schema is ready to graph!\n")
	} else {
		fmt.Fprintf(w, "\n💡 Fix the errors above before building graphs.\n")
	}

	return nil
}

func printIssues(w io.Writer, title string, issues []validator.ValidationError) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s (%d):\n", title, len(issues))
	for i, issue := range issues {
		fmt.Fprintf(w, "  %d. ", i+1)
		if issue.Object != "" {
			fmt.Fprintf(w, "[%s]", issue.Object)
		}
		if issue.Field != "" {
			fmt.Fprintf(w, ".%s", issue.Field)
		}
		fmt.Fprintf(w, ": %s\n", issue.Message)
	}
}
