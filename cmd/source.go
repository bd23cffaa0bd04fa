package cmd

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/ridoystarlord/relgraph/introspect"
	"github.com/ridoystarlord/relgraph/loader"
	"github.com/ridoystarlord/relgraph/schema"
	"github.com/ridoystarlord/relgraph/utils"
)

const (
	sourceYAML       = "yaml"
	sourceStructs    = "structs"
	sourcePostgres   = "postgres"
	sourceSalesforce = "salesforce"
)

// describerFromConfig opens the object source selected by --source.
func describerFromConfig() (introspect.Describer, error) {
	source := viper.GetString("source")
	switch source {
	case sourceYAML, sourceStructs:
		objects, err := loadLocalObjects(source)
		if err != nil {
			return nil, err
		}
		return introspect.NewStaticDescriber(objects...), nil

	case sourcePostgres:
		d, err := introspect.ConnectPostgres(viper.GetString("postgres.schema"))
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %v", err)
		}
		return d, nil

	case sourceSalesforce:
		creds, err := utils.GetSalesforceCredentials()
		if err != nil {
			return nil, err
		}
		return introspect.NewSalesforceDescriber(creds.InstanceURL, creds.AccessToken, creds.APIVersion, nil), nil
	}
	return nil, fmt.Errorf("unknown source %q (expected yaml, structs, postgres or salesforce)", source)
}

// loadLocalObjects reads object definitions from the schema file or the
// models directory.
func loadLocalObjects(source string) ([]schema.ObjectDescriptor, error) {
	if source == sourceStructs {
		objects, err := loader.LoadObjectsFromTags(viper.GetString("models"))
		if err != nil {
			return nil, fmt.Errorf("failed to load models: %v", err)
		}
		return objects, nil
	}

	objects, err := loader.LoadObjectsFromYAML(viper.GetString("schema"))
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %v", err)
	}
	return objects, nil
}
