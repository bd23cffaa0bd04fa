package cmd

import (
	"io"
	"log"
	"testing"

	"github.com/fatih/color"

	"github.com/ridoystarlord/relgraph/introspect"
	"github.com/ridoystarlord/relgraph/schema"
	"github.com/ridoystarlord/relgraph/store"
)

func lookup(name string, targets ...string) schema.FieldDescriptor {
	return schema.FieldDescriptor{Name: name, Label: name, Type: schema.Reference, ReferenceTargets: targets}
}

func crm() *introspect.StaticDescriber {
	return introspect.NewStaticDescriber(
		schema.ObjectDescriptor{Name: "Account", Label: "Account", Fields: []schema.FieldDescriptor{{Name: "Name", Type: schema.String}}},
		schema.ObjectDescriptor{Name: "Pricebook2", Label: "Price Book"},
		schema.ObjectDescriptor{Name: "Opportunity", Label: "Opportunity", Fields: []schema.FieldDescriptor{
			lookup("AccountId", "Account"),
			lookup("Pricebook2Id", "Pricebook2"),
		}},
		schema.ObjectDescriptor{Name: "Quote", Label: "Quote", Fields: []schema.FieldDescriptor{
			{Name: "OpportunityId", Label: "Opportunity", Type: schema.Reference, ReferenceTargets: []string{"Opportunity"}, IsCascadeDelete: true},
			lookup("AccountId", "Account"),
			lookup("BrokenId", "Missing"),
		}},
	)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	color.NoColor = true
	return store.New(crm(), store.WithLogger(log.New(io.Discard, "", 0)))
}
