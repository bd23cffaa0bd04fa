package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/relgraph/diff"
	"github.com/ridoystarlord/relgraph/graph"
	"github.com/ridoystarlord/relgraph/store"
)

func TestPrintTree(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetDepth(2))
	require.Error(t, s.SetRoot(context.Background(), "Quote"))

	var out bytes.Buffer
	printTree(&out, s.Graph(), "Quote")

	text := out.String()
	assert.Contains(t, text, "📦 Quote [-]")
	assert.Contains(t, text, "├── OpportunityId ━> Opportunity [-]")
	assert.Contains(t, text, "│   ├── AccountId ┈> Account [-]")
	assert.Contains(t, text, "│   └── Pricebook2Id ┈> Price Book [+]")
	assert.Contains(t, text, "└── AccountId ┈> Account ↺")
	assert.Contains(t, text, "📊 4 nodes, 4 edges")
}

func TestPrintTreeEmpty(t *testing.T) {
	var out bytes.Buffer
	printTree(&out, graph.Graph{}, "Quote")
	assert.Contains(t, out.String(), "Graph is empty")
}

func TestRenderGraphSession(t *testing.T) {
	ctx := context.Background()

	t.Run("tree with toggles prints diffs", func(t *testing.T) {
		s := newTestStore(t)
		require.Error(t, s.SetRoot(ctx, "Quote"))

		var out bytes.Buffer
		err := renderGraphSession(ctx, &out, s, []string{"Opportunity", "Nope"}, []string{"Opportunity"}, "tree")
		require.NoError(t, err)

		text := out.String()
		assert.Contains(t, text, "EXPAND Opportunity")
		assert.Contains(t, text, "➕ ADD NODE Pricebook2")
		assert.Contains(t, text, "🔄 EXPANDED Opportunity")
		assert.Contains(t, text, "⚠️  Nope is not in the graph, skipping expand")
		assert.Contains(t, text, "COLLAPSE Opportunity")
		assert.Contains(t, text, "❌ REMOVE NODE Pricebook2")
		assert.Contains(t, text, "❌ REMOVE EDGE Opportunity → Account (AccountId)")
		assert.NotContains(t, text, "REMOVE NODE Account")
	})

	t.Run("json prints final state", func(t *testing.T) {
		s := newTestStore(t)
		require.Error(t, s.SetRoot(ctx, "Quote"))

		var out bytes.Buffer
		require.NoError(t, renderGraphSession(ctx, &out, s, []string{"Opportunity"}, nil, "json"))

		var state store.State
		require.NoError(t, json.Unmarshal(out.Bytes(), &state))
		assert.Len(t, state.Nodes, 4)
		assert.Equal(t, "Quote", state.CurrentObject)
	})

	t.Run("unsupported format", func(t *testing.T) {
		var out bytes.Buffer
		assert.Error(t, renderGraphSession(ctx, &out, newTestStore(t), nil, nil, "svg"))
	})
}

func TestPrintOperations(t *testing.T) {
	newTestStore(t)

	var out bytes.Buffer
	printOperations(&out, nil)
	assert.Contains(t, out.String(), "No changes")

	out.Reset()
	printOperations(&out, []diff.Operation{
		{Type: diff.AddNode, NodeID: "Account"},
		{Type: diff.CollapseNode, NodeID: "Quote"},
	})
	assert.Contains(t, out.String(), "➕ ADD NODE Account")
	assert.Contains(t, out.String(), "🔄 COLLAPSED Quote")
	assert.Contains(t, out.String(), "1 nodes added, 0 removed")
}
