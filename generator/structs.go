package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
	"text/template"
	"unicode"

	"github.com/ridoystarlord/relgraph/schema"
)

type structFile struct {
	PackageName string
	NeedsTime   bool
	Objects     []structObject
}

type structObject struct {
	Name   string
	Label  string
	Fields []structField
}

type structField struct {
	Name string
	Type string
	Tag  string
}

const structsTemplate = `// Generated by relgraph generate-structs.

package {{.PackageName}}
{{if .NeedsTime}}
import "time"
{{end}}
{{range .Objects}}
// relgraph:label {{.Label}}
type {{.Name}} struct {
{{range .Fields}}	{{.Name}} {{.Type}} {{.Tag}}
{{end}}}
{{end}}`

// GenerateStructs renders objects as Go structs with relgraph tags. Loading
// the result with the struct loader yields the same objects.
func GenerateStructs(packageName string, objects []schema.ObjectDescriptor) ([]byte, error) {
	data := structFile{PackageName: packageName}

	for _, object := range objects {
		so := structObject{
			Name:  goIdentifier(object.Name),
			Label: object.Label,
		}
		if so.Label == "" {
			so.Label = object.Name
		}
		if so.Name != object.Name {
			return nil, fmt.Errorf("object %q is not a valid Go type name", object.Name)
		}

		for _, f := range object.Fields {
			goType := goTypeFor(f.Type)
			if goType == "time.Time" {
				data.NeedsTime = true
			}
			so.Fields = append(so.Fields, structField{
				Name: goIdentifier(f.Name),
				Type: goType,
				Tag:  generateTag(f),
			})
		}
		data.Objects = append(data.Objects, so)
	}

	tmpl, err := template.New("structs").Parse(structsTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing structs template: %v", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing structs template: %v", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated structs: %v", err)
	}
	return formatted, nil
}

func goTypeFor(t schema.FieldType) string {
	switch t {
	case schema.Boolean:
		return "bool"
	case schema.Integer:
		return "int64"
	case schema.Double:
		return "float64"
	case schema.Date, schema.DateTime:
		return "time.Time"
	default:
		return "string"
	}
}

func generateTag(f schema.FieldDescriptor) string {
	clean := strings.NewReplacer(";", ",", `"`, "'", "`", "'")

	parts := []string{
		"name:" + f.Name,
		"label:" + clean.Replace(f.Label),
		"type:" + string(f.Type),
	}
	if len(f.ReferenceTargets) > 0 {
		parts = append(parts, "ref:"+strings.Join(f.ReferenceTargets, ","))
	}
	if f.IsCascadeDelete {
		parts = append(parts, "cascade")
	}
	if f.Nillable {
		parts = append(parts, "nillable")
	}
	return fmt.Sprintf("`relgraph:\"%s\"`", strings.Join(parts, ";"))
}

// goIdentifier turns a field API name into an exported Go identifier
func goIdentifier(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	id := b.String()
	if id == "" || !unicode.IsLetter(rune(id[0])) {
		id = "F" + id
	}
	return strings.ToUpper(id[:1]) + id[1:]
}
