package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/relgraph/loader"
	"github.com/ridoystarlord/relgraph/utils"
)

var useStructs bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new relgraph project",
	Long: `Initialize a new relgraph project with an example CRM schema.

YAML schema file (default)
- Simple, declarative object definitions
- Works with every command through --source yaml

Go structs (--structs)
- Objects declared as Go structs with relgraph tags
- Read through --source structs

An example .env with Postgres and Salesforce settings is written as well.

Examples:
  relgraph init                   # Initialize with schema.yaml
  relgraph init --structs         # Initialize with Go structs in models/`,
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		if useStructs {
			err = initStructs("models")
		} else {
			err = initYAML("schema.yaml")
		}
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}

		written, err := utils.WriteEnvTemplate(".env")
		if err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
		if written {
			fmt.Println("✅ Created .env")
		}
	},
}

func init() {
	initCmd.Flags().BoolVar(&useStructs, "structs", false, "Use Go structs for object definitions")
}

const exampleSchema = `# Object definitions read by relgraph (--source yaml)
objects:
  - name: Account
    label: Account
    fields:
      - name: Name
        type: string
      - name: ParentId
        label: Parent Account
        type: reference
        reference_to: Account

  - name: Contact
    label: Contact
    fields:
      - name: LastName
        type: string
      - name: AccountId
        label: Account
        type: reference
        reference_to: Account

  - name: Lead
    label: Lead
    fields:
      - name: Company
        type: string

  - name: Case
    label: Case
    fields:
      - name: Subject
        type: string
      - name: WhoId
        label: Name
        type: reference
        reference_to: [Contact, Lead]
      - name: AccountId
        label: Account
        type: reference
        reference_to: Account

  - name: Opportunity
    label: Opportunity
    fields:
      - name: Amount
        type: double
      - name: AccountId
        label: Account
        type: reference
        reference_to: Account
      - name: Pricebook2Id
        label: Price Book
        type: reference
        reference_to: Pricebook2

  - name: Pricebook2
    label: Price Book
    fields:
      - name: Name
        type: string

  - name: Quote
    label: Quote
    fields:
      - name: OpportunityId
        label: Opportunity
        type: reference
        reference_to: Opportunity
        cascade_delete: true
      - name: AccountId
        label: Account
        type: reference
        reference_to: Account

  - name: Invoice__c
    label: Invoice
    fields:
      - name: Total__c
        label: Total
        type: double
      - name: Quote__c
        label: Quote
        type: reference
        reference_to: Quote
        cascade_delete: true
`

func initYAML(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.WriteFile(path, []byte(exampleSchema), 0644); err != nil {
		return fmt.Errorf("failed to create %s: %v", path, err)
	}

	fmt.Printf("✅ Created %s\n", path)
	fmt.Println("📝 Edit the objects in schema.yaml to describe your schema")
	fmt.Println("🚀 Run 'relgraph graph Quote' to see its relationships")
	return nil
}

func initStructs(dir string) error {
	path := filepath.Join(dir, "models.go")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	objects, err := loader.ParseObjectsYAML([]byte(exampleSchema))
	if err != nil {
		return fmt.Errorf("failed to parse example schema: %v", err)
	}
	if _, err := writeStructs(dir, filepath.Base(dir), objects); err != nil {
		return fmt.Errorf("failed to create %s: %v", path, err)
	}

	fmt.Println("✅ Models directory created successfully!")
	fmt.Printf("📁 Directory: %s\n", dir)
	fmt.Printf("📝 Edit the structs in %s to describe your schema\n", path)
	fmt.Println("🚀 Run 'relgraph graph Quote --source structs' to see its relationships")
	return nil
}
