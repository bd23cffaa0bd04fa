package schema

import "strings"

// FieldType is the categorical type reported by a describer. Only Reference
// fields take part in relationship graphs.
type FieldType string

const (
	Reference FieldType = "reference"
	String    FieldType = "string"
	Text      FieldType = "textarea"
	Boolean   FieldType = "boolean"
	Integer   FieldType = "int"
	Double    FieldType = "double"
	Date      FieldType = "date"
	DateTime  FieldType = "datetime"
	ID        FieldType = "id"
)

// ObjectDescriptor is the result of describing one schema object. It is
// immutable once fetched and is cached by Name.
type ObjectDescriptor struct {
	Name     string            `json:"name" yaml:"name"`
	Label    string            `json:"label" yaml:"label"`
	IsCustom bool              `json:"custom" yaml:"custom"`
	Fields   []FieldDescriptor `json:"fields" yaml:"fields"`
}

// FieldDescriptor is one field of an object.
type FieldDescriptor struct {
	Name             string    `json:"name" yaml:"name"`
	Label            string    `json:"label" yaml:"label"`
	Type             FieldType `json:"type" yaml:"type"`
	ReferenceTargets []string  `json:"referenceTo,omitempty" yaml:"reference_to,omitempty"`
	IsCascadeDelete  bool      `json:"cascadeDelete,omitempty" yaml:"cascade_delete,omitempty"`
	Length           int       `json:"length,omitempty" yaml:"length,omitempty"`
	Nillable         bool      `json:"nillable,omitempty" yaml:"nillable,omitempty"`
}

// ObjectSummary is a lightweight entry of an object listing.
type ObjectSummary struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	IsCustom bool   `json:"custom"`
}

// IsReference reports whether the field points at other objects.
func (f FieldDescriptor) IsReference() bool {
	return f.Type == Reference
}

// ReferenceFields returns the reference-typed fields in declaration order.
func (o ObjectDescriptor) ReferenceFields() []FieldDescriptor {
	var refs []FieldDescriptor
	for _, f := range o.Fields {
		if f.IsReference() {
			refs = append(refs, f)
		}
	}
	return refs
}

// Summary returns the listing entry for the object.
func (o ObjectDescriptor) Summary() ObjectSummary {
	return ObjectSummary{Name: o.Name, Label: o.Label, IsCustom: o.IsCustom}
}

// IsCustomName reports whether an object name follows the custom object
// naming convention.
func IsCustomName(name string) bool {
	return strings.HasSuffix(name, "__c")
}
