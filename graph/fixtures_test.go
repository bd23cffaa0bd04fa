package graph

import (
	"bytes"
	"context"
	"log"
	"sync"

	"github.com/ridoystarlord/relgraph/introspect"
	"github.com/ridoystarlord/relgraph/schema"
)

func lookup(name, label, target string) schema.FieldDescriptor {
	return schema.FieldDescriptor{Name: name, Label: label, Type: schema.Reference, ReferenceTargets: []string{target}}
}

func masterDetail(name, label, target string) schema.FieldDescriptor {
	f := lookup(name, label, target)
	f.IsCascadeDelete = true
	return f
}

func text(name string) schema.FieldDescriptor {
	return schema.FieldDescriptor{Name: name, Label: name, Type: schema.String}
}

func object(name string, fields ...schema.FieldDescriptor) schema.ObjectDescriptor {
	return schema.ObjectDescriptor{Name: name, Label: name + " Label", IsCustom: schema.IsCustomName(name), Fields: fields}
}

// crmObjects is a small CRM-like schema used across tests.
func crmObjects() []schema.ObjectDescriptor {
	return []schema.ObjectDescriptor{
		object("Account", text("Id"), text("Name")),
		object("Contact", text("Id"), lookup("AccountId", "Account ID", "Account")),
		object("Lead", text("Id"), text("Company")),
		object("Case", text("Id"), schema.FieldDescriptor{
			Name: "WhoId", Label: "Name ID", Type: schema.Reference, ReferenceTargets: []string{"Contact", "Lead"},
		}),
		object("Opportunity", text("Id"),
			lookup("AccountId", "Account ID", "Account"),
			lookup("Pricebook2Id", "Price Book ID", "Pricebook2")),
		object("Pricebook2", text("Id"), text("Name")),
		object("Quote", text("Id"),
			lookup("OpportunityId", "Opportunity ID", "Opportunity"),
			lookup("AccountId", "Account ID", "Account")),
	}
}

// countingDescriber records how often each object is described.
type countingDescriber struct {
	inner introspect.Describer

	mu    sync.Mutex
	calls map[string]int
}

func newCountingDescriber(objects ...schema.ObjectDescriptor) *countingDescriber {
	return &countingDescriber{inner: introspect.NewStaticDescriber(objects...), calls: map[string]int{}}
}

func (c *countingDescriber) Describe(ctx context.Context, name string) (schema.ObjectDescriptor, error) {
	c.mu.Lock()
	c.calls[name]++
	c.mu.Unlock()
	return c.inner.Describe(ctx, name)
}

func (c *countingDescriber) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

func quietService(d introspect.Describer) (*Service, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewService(d, WithLogger(log.New(&buf, "", 0))), &buf
}

func nodeIDs(nodes []Node) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func edgeIDs(edges []Edge) []string {
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.ID)
	}
	return ids
}
