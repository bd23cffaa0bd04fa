package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ridoystarlord/relgraph/store"
	"github.com/ridoystarlord/relgraph/utils"
)

var rootCmd = &cobra.Command{
	Use:   "relgraph",
	Short: "Explore relationships between schema objects",
	Long: `relgraph builds interactive relationship graphs between schema objects.

Objects are described through a configurable source: a YAML schema, Go structs,
a Postgres database or a Salesforce org.

Examples:

  relgraph init
  relgraph graph Quote --depth 2
  relgraph docs Opportunity --format mermaid
  relgraph studio
`,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

func initConfig() {
	utils.LoadEnv()

	viper.SetConfigName("relgraph")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("⚠️  Ignoring relgraph.yaml: %v\n", err)
		}
	}
}

// Register subcommands
func init() {
	cobra.OnInitialize(initConfig)

	viper.SetEnvPrefix("relgraph")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	flags := rootCmd.PersistentFlags()
	flags.String("source", "yaml", "Object source (yaml, structs, postgres, salesforce)")
	flags.String("schema", "schema.yaml", "YAML schema file for the yaml source")
	flags.String("models", "models", "Models directory for the structs source")
	flags.String("pg-schema", "public", "Postgres schema for the postgres source")
	flags.Int("depth", store.DefaultDepth, "Traversal depth (1-3)")
	viper.BindPFlag("source", flags.Lookup("source"))
	viper.BindPFlag("schema", flags.Lookup("schema"))
	viper.BindPFlag("models", flags.Lookup("models"))
	viper.BindPFlag("postgres.schema", flags.Lookup("pg-schema"))
	viper.BindPFlag("depth", flags.Lookup("depth"))

	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(objectsCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(studioCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generateStructsCmd)
}
