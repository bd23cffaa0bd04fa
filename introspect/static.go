package introspect

import (
	"context"
	"sort"

	"github.com/ridoystarlord/relgraph/schema"
)

// StaticDescriber serves descriptors from memory, typically loaded from a
// schema file.
type StaticDescriber struct {
	objects map[string]schema.ObjectDescriptor
	order   []string
}

// NewStaticDescriber creates a describer over the given objects. Later
// duplicates replace earlier ones.
func NewStaticDescriber(objects ...schema.ObjectDescriptor) *StaticDescriber {
	d := &StaticDescriber{objects: make(map[string]schema.ObjectDescriptor, len(objects))}
	for _, o := range objects {
		if _, exists := d.objects[o.Name]; !exists {
			d.order = append(d.order, o.Name)
		}
		d.objects[o.Name] = o
	}
	return d
}

func (d *StaticDescriber) Describe(ctx context.Context, objectName string) (schema.ObjectDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return schema.ObjectDescriptor{}, describeErr(objectName, err)
	}
	o, ok := d.objects[objectName]
	if !ok {
		return schema.ObjectDescriptor{}, describeErr(objectName, ErrObjectNotFound)
	}
	return o, nil
}

func (d *StaticDescriber) ListObjects(ctx context.Context) ([]schema.ObjectSummary, error) {
	summaries := make([]schema.ObjectSummary, 0, len(d.order))
	for _, name := range d.order {
		summaries = append(summaries, d.objects[name].Summary())
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}
