package validator

import (
	"context"
	"fmt"

	"github.com/ridoystarlord/relgraph/introspect"
	"github.com/ridoystarlord/relgraph/schema"
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Type     string `json:"type"`
	Object   string `json:"object,omitempty"`
	Field    string `json:"field,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "error", "warning", "info"
}

// ValidationResult contains all validation results
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
	Info     []ValidationError `json:"info"`
}

const maxNameLength = 80

// SchemaValidator checks object definitions before they are served to the
// graph engine. When a lister is set, reference targets are also resolved
// against the live source.
type SchemaValidator struct {
	lister introspect.ObjectLister
}

// NewSchemaValidator creates a new schema validator. lister may be nil.
func NewSchemaValidator(lister introspect.ObjectLister) *SchemaValidator {
	return &SchemaValidator{lister: lister}
}

// ValidateSchema validates a complete set of objects.
func (v *SchemaValidator) ValidateSchema(ctx context.Context, objects []schema.ObjectDescriptor) (*ValidationResult, error) {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
		Info:     []ValidationError{},
	}

	liveObjects := map[string]bool{}
	if v.lister != nil {
		summaries, err := v.lister.ListObjects(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list source objects: %v", err)
		}
		for _, s := range summaries {
			liveObjects[s.Name] = true
		}
	}

	seen := make(map[string]bool)
	for _, object := range objects {
		if seen[object.Name] {
			result.Errors = append(result.Errors, ValidationError{
				Type:     "duplicate_object",
				Object:   object.Name,
				Message:  fmt.Sprintf("Duplicate object name '%s'", object.Name),
				Severity: "error",
			})
			continue
		}
		seen[object.Name] = true

		v.validateObject(object, result)

		if liveObjects[object.Name] {
			result.Info = append(result.Info, ValidationError{
				Type:     "object_exists",
				Object:   object.Name,
				Message:  fmt.Sprintf("Object '%s' also exists in the configured source", object.Name),
				Severity: "info",
			})
		}
	}

	v.validateReferenceTargets(objects, liveObjects, result)

	result.Valid = len(result.Errors) == 0
	return result, nil
}

// validateObject validates a single object and its fields
func (v *SchemaValidator) validateObject(object schema.ObjectDescriptor, result *ValidationResult) {
	if err := validateName("object", object.Name); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Type:     "object_name",
			Object:   object.Name,
			Message:  err.Error(),
			Severity: "error",
		})
	}

	if len(object.Fields) == 0 {
		result.Warnings = append(result.Warnings, ValidationError{
			Type:     "no_fields",
			Object:   object.Name,
			Message:  fmt.Sprintf("Object '%s' has no fields", object.Name),
			Severity: "warning",
		})
		return
	}

	fieldNames := make(map[string]bool)
	for _, field := range object.Fields {
		if fieldNames[field.Name] {
			result.Errors = append(result.Errors, ValidationError{
				Type:     "duplicate_field",
				Object:   object.Name,
				Field:    field.Name,
				Message:  fmt.Sprintf("Duplicate field name '%s' in object '%s'", field.Name, object.Name),
				Severity: "error",
			})
			continue
		}
		fieldNames[field.Name] = true

		if err := validateName("field", field.Name); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Type:     "field_name",
				Object:   object.Name,
				Field:    field.Name,
				Message:  err.Error(),
				Severity: "error",
			})
		}

		if !knownTypes[field.Type] {
			result.Warnings = append(result.Warnings, ValidationError{
				Type:     "field_type",
				Object:   object.Name,
				Field:    field.Name,
				Message:  fmt.Sprintf("Field '%s' has unknown type '%s'", field.Name, field.Type),
				Severity: "warning",
			})
		}

		validateReferenceField(object.Name, field, result)
	}
}

func validateReferenceField(objectName string, field schema.FieldDescriptor, result *ValidationResult) {
	if field.IsReference() {
		if len(field.ReferenceTargets) == 0 {
			result.Errors = append(result.Errors, ValidationError{
				Type:     "reference_without_target",
				Object:   objectName,
				Field:    field.Name,
				Message:  fmt.Sprintf("Reference field '%s' does not name a target object", field.Name),
				Severity: "error",
			})
		}
		return
	}

	if len(field.ReferenceTargets) > 0 {
		result.Warnings = append(result.Warnings, ValidationError{
			Type:     "targets_ignored",
			Object:   objectName,
			Field:    field.Name,
			Message:  fmt.Sprintf("Field '%s' is of type '%s'; its reference targets are ignored", field.Name, field.Type),
			Severity: "warning",
		})
	}
	if field.IsCascadeDelete {
		result.Warnings = append(result.Warnings, ValidationError{
			Type:     "cascade_ignored",
			Object:   objectName,
			Field:    field.Name,
			Message:  fmt.Sprintf("Field '%s' is not a reference; cascade_delete is ignored", field.Name),
			Severity: "warning",
		})
	}
}

// validateReferenceTargets checks every reference target across objects
func (v *SchemaValidator) validateReferenceTargets(objects []schema.ObjectDescriptor, liveObjects map[string]bool, result *ValidationResult) {
	objectMap := make(map[string]bool)
	for _, object := range objects {
		objectMap[object.Name] = true
	}

	for _, object := range objects {
		for _, field := range object.ReferenceFields() {
			for _, target := range field.ReferenceTargets {
				if target == object.Name {
					result.Info = append(result.Info, ValidationError{
						Type:     "self_reference",
						Object:   object.Name,
						Field:    field.Name,
						Message:  fmt.Sprintf("Field '%s' references its own object; no edge is drawn for it", field.Name),
						Severity: "info",
					})
					continue
				}
				if !objectMap[target] && !liveObjects[target] {
					result.Warnings = append(result.Warnings, ValidationError{
						Type:     "reference_target_not_found",
						Object:   object.Name,
						Field:    field.Name,
						Message:  fmt.Sprintf("Field '%s' references unknown object '%s'; it will be skipped while building", field.Name, target),
						Severity: "warning",
					})
				}
			}
		}
	}
}

var knownTypes = map[schema.FieldType]bool{
	schema.Reference: true,
	schema.String:    true,
	schema.Text:      true,
	schema.Boolean:   true,
	schema.Integer:   true,
	schema.Double:    true,
	schema.Date:      true,
	schema.DateTime:  true,
	schema.ID:        true,
}

// validateName validates an object or field API name
func validateName(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name cannot be empty", kind)
	}

	if len(name) > maxNameLength {
		return fmt.Errorf("%s name '%s' is too long (max %d characters)", kind, name, maxNameLength)
	}

	first := name[0]
	if !((first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z')) {
		return fmt.Errorf("%s name '%s' must start with a letter", kind, name)
	}

	for _, char := range name {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '_') {
			return fmt.Errorf("%s name '%s' contains invalid character '%c'", kind, name, char)
		}
	}

	return nil
}
