package loader

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ridoystarlord/relgraph/schema"
)

type yamlFile struct {
	Objects []yamlObject `yaml:"objects"`
}

type yamlObject struct {
	Name   string      `yaml:"name"`
	Label  string      `yaml:"label"`
	Custom *bool       `yaml:"custom"`
	Fields []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name          string       `yaml:"name"`
	Label         string       `yaml:"label"`
	Type          string       `yaml:"type"`
	ReferenceTo   stringOrList `yaml:"reference_to"`
	CascadeDelete bool         `yaml:"cascade_delete"`
	Length        int          `yaml:"length"`
	Nillable      bool         `yaml:"nillable"`
}

// stringOrList accepts either `reference_to: Account` or a sequence of names.
type stringOrList []string

func (s *stringOrList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Value != "" {
			*s = []string{value.Value}
		}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	}
	return fmt.Errorf("line %d: reference_to must be a string or a list", value.Line)
}

func LoadObjectsFromYAML(filename string) ([]schema.ObjectDescriptor, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	return ParseObjectsYAML(data)
}

// ParseObjectsYAML decodes an objects document. Labels default to the API
// name and the custom flag defaults to the "__c" naming convention. A field
// with reference targets and no type is treated as a reference.
func ParseObjectsYAML(data []byte) ([]schema.ObjectDescriptor, error) {
	var yf yamlFile
	if err := yaml.Unmarshal(data, &yf); err != nil {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}

	var objects []schema.ObjectDescriptor
	for _, o := range yf.Objects {
		object := schema.ObjectDescriptor{
			Name:     o.Name,
			Label:    o.Label,
			IsCustom: schema.IsCustomName(o.Name),
		}
		if object.Label == "" {
			object.Label = o.Name
		}
		if o.Custom != nil {
			object.IsCustom = *o.Custom
		}
		for _, f := range o.Fields {
			field := schema.FieldDescriptor{
				Name:             f.Name,
				Label:            f.Label,
				Type:             schema.FieldType(strings.ToLower(f.Type)),
				ReferenceTargets: []string(f.ReferenceTo),
				IsCascadeDelete:  f.CascadeDelete,
				Length:           f.Length,
				Nillable:         f.Nillable,
			}
			if field.Label == "" {
				field.Label = f.Name
			}
			if field.Type == "" {
				field.Type = schema.String
				if len(field.ReferenceTargets) > 0 {
					field.Type = schema.Reference
				}
			}
			object.Fields = append(object.Fields, field)
		}
		objects = append(objects, object)
	}

	return objects, nil
}
