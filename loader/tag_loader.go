package loader

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/ridoystarlord/relgraph/schema"
)

// TagLoader loads object definitions from Go structs tagged with `relgraph`.
//
// Each exported struct is one object named after the struct. Exported fields
// become object fields. A field whose type is another struct of the directory
// becomes a reference to it. Tags override the inferred values:
//
//	Account *Account `relgraph:"name:AccountId;label:Account;cascade"`
//	WhoID   string   `relgraph:"name:WhoId;ref:Contact,Lead"`
//	Notes   string   `relgraph:"type:textarea"`
//	cache   string   `relgraph:"-"`
type TagLoader struct {
	modelsDir string
}

// NewTagLoader creates a new tag loader
func NewTagLoader(modelsDir string) *TagLoader {
	return &TagLoader{
		modelsDir: modelsDir,
	}
}

// LoadObjectsFromTags loads object definitions from Go structs with tags
func LoadObjectsFromTags(modelsDir string) ([]schema.ObjectDescriptor, error) {
	loader := NewTagLoader(modelsDir)
	return loader.Load()
}

type structDecl struct {
	name   string
	label  string
	fields *ast.FieldList
}

// Load loads all objects from the models directory, sorted by name
func (tl *TagLoader) Load() ([]schema.ObjectDescriptor, error) {
	if _, err := os.Stat(tl.modelsDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("models directory '%s' does not exist. Run 'relgraph init' first", tl.modelsDir)
	}

	var decls []structDecl

	err := filepath.Walk(tl.modelsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip directories, tests and non-Go files
		if info.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		fileDecls, err := tl.parseGoFile(path)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %v", path, err)
		}

		decls = append(decls, fileDecls...)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to load models: %v", err)
	}

	known := make(map[string]bool, len(decls))
	for _, d := range decls {
		known[d.name] = true
	}

	objects := make([]schema.ObjectDescriptor, 0, len(decls))
	for _, d := range decls {
		objects = append(objects, tl.toObject(d, known))
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })

	return objects, nil
}

// parseGoFile collects exported struct declarations of a single Go file
func (tl *TagLoader) parseGoFile(filePath string) ([]structDecl, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Go file: %v", err)
	}

	var decls []structDecl
	for _, d := range file.Decls {
		gen, ok := d.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			st, ok := ts.Type.(*ast.StructType)
			if !ok || !ast.IsExported(ts.Name.Name) {
				continue
			}
			doc := ts.Doc
			if doc == nil {
				doc = gen.Doc
			}
			decls = append(decls, structDecl{
				name:   ts.Name.Name,
				label:  labelFromDoc(doc),
				fields: st.Fields,
			})
		}
	}
	return decls, nil
}

func (tl *TagLoader) toObject(d structDecl, known map[string]bool) schema.ObjectDescriptor {
	object := schema.ObjectDescriptor{
		Name:     d.name,
		Label:    d.label,
		IsCustom: schema.IsCustomName(d.name),
		Fields:   []schema.FieldDescriptor{},
	}
	if object.Label == "" {
		object.Label = splitWords(d.name)
	}

	for _, field := range d.fields.List {
		if len(field.Names) == 0 {
			continue // embedded fields carry no name
		}
		fieldName := field.Names[0].Name
		if !ast.IsExported(fieldName) {
			continue
		}
		if f, ok := tl.parseField(fieldName, field, known); ok {
			object.Fields = append(object.Fields, f)
		}
	}
	return object
}

// parseField converts a struct field to a schema.FieldDescriptor
func (tl *TagLoader) parseField(fieldName string, field *ast.Field, known map[string]bool) (schema.FieldDescriptor, bool) {
	goType := tl.getFieldType(field.Type)
	if goType == "" {
		return schema.FieldDescriptor{}, false
	}

	tag := tl.parseTag(field.Tag)
	if tag.Ignore {
		return schema.FieldDescriptor{}, false
	}

	f := schema.FieldDescriptor{
		Name:             tag.Name,
		Label:            tag.Label,
		Type:             schema.FieldType(tag.Type),
		ReferenceTargets: tag.References,
		IsCascadeDelete:  tag.Cascade,
		Nillable:         tag.Nillable || strings.HasPrefix(goType, "*"),
	}

	target := strings.TrimPrefix(goType, "*")
	if len(f.ReferenceTargets) == 0 && known[target] {
		f.ReferenceTargets = []string{target}
	}

	if f.Name == "" {
		f.Name = fieldName
		if len(f.ReferenceTargets) > 0 && !strings.HasSuffix(fieldName, "Id") {
			f.Name = fieldName + "Id"
		}
	}
	if f.Label == "" {
		f.Label = splitWords(fieldName)
	}
	if f.Type == "" {
		if len(f.ReferenceTargets) > 0 {
			f.Type = schema.Reference
		} else {
			f.Type = tl.inferFieldType(target)
		}
	}

	return f, true
}

// parseTag parses the struct tag for relgraph information
func (tl *TagLoader) parseTag(tag *ast.BasicLit) *FieldTag {
	if tag == nil {
		return &FieldTag{}
	}

	tagValue := strings.Trim(tag.Value, "`")
	return tl.parseRelgraphTag(reflect.StructTag(tagValue).Get("relgraph"))
}

// parseRelgraphTag parses a value such as "name:AccountId;ref:Account;cascade"
func (tl *TagLoader) parseRelgraphTag(value string) *FieldTag {
	tag := &FieldTag{}

	if value == "-" {
		tag.Ignore = true
		return tag
	}

	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if key, val, ok := strings.Cut(part, ":"); ok {
			key = strings.TrimSpace(key)
			val = strings.TrimSpace(val)
			switch key {
			case "name":
				tag.Name = val
			case "label":
				tag.Label = val
			case "type":
				tag.Type = strings.ToLower(val)
			case "ref":
				for _, target := range strings.Split(val, ",") {
					if target = strings.TrimSpace(target); target != "" {
						tag.References = append(tag.References, target)
					}
				}
			}
			continue
		}

		switch part {
		case "cascade":
			tag.Cascade = true
		case "nillable":
			tag.Nillable = true
		}
	}

	return tag
}

// getFieldType extracts the Go type name from an ast.Expr
func (tl *TagLoader) getFieldType(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		inner := tl.getFieldType(t.X)
		if inner == "" {
			return ""
		}
		return "*" + inner
	case *ast.ArrayType:
		return "[]" + tl.getFieldType(t.Elt)
	case *ast.SelectorExpr:
		if x, ok := t.X.(*ast.Ident); ok {
			return x.Name + "." + t.Sel.Name
		}
	}
	return ""
}

// inferFieldType maps a Go type to a describer field type
func (tl *TagLoader) inferFieldType(goType string) schema.FieldType {
	switch goType {
	case "int", "int32", "int64":
		return schema.Integer
	case "string":
		return schema.String
	case "bool":
		return schema.Boolean
	case "float32", "float64":
		return schema.Double
	case "time.Time":
		return schema.DateTime
	case "uuid.UUID":
		return schema.ID
	default:
		return schema.String
	}
}

// labelFromDoc reads a "relgraph:label <text>" line from a struct comment.
func labelFromDoc(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	for _, line := range strings.Split(doc.Text(), "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "relgraph:label "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// splitWords turns PascalCase into space separated words
func splitWords(s string) string {
	s = strings.TrimSuffix(s, "__c")
	var result strings.Builder
	var prev rune

	for i, r := range s {
		if r == '_' {
			result.WriteRune(' ')
			prev = r
			continue
		}
		if i > 0 && r >= 'A' && r <= 'Z' && prev >= 'a' && prev <= 'z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
		prev = r
	}
	return result.String()
}

// FieldTag represents parsed relgraph tag information
type FieldTag struct {
	Ignore     bool
	Name       string
	Label      string
	Type       string
	References []string
	Cascade    bool
	Nillable   bool
}
