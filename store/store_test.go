package store

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"testing"

	"github.com/ridoystarlord/relgraph/graph"
	"github.com/ridoystarlord/relgraph/introspect"
	"github.com/ridoystarlord/relgraph/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(name, target string) schema.FieldDescriptor {
	return schema.FieldDescriptor{Name: name, Label: name, Type: schema.Reference, ReferenceTargets: []string{target}}
}

func obj(name string, fields ...schema.FieldDescriptor) schema.ObjectDescriptor {
	return schema.ObjectDescriptor{Name: name, Label: name, Fields: fields}
}

func crm() []schema.ObjectDescriptor {
	return []schema.ObjectDescriptor{
		obj("Account", schema.FieldDescriptor{Name: "Name", Type: schema.String}),
		obj("Contact", ref("AccountId", "Account")),
		obj("Opportunity", ref("AccountId", "Account"), ref("Pricebook2Id", "Pricebook2")),
		obj("Quote", ref("OpportunityId", "Opportunity"), ref("AccountId", "Account")),
	}
}

type countingDescriber struct {
	inner introspect.Describer

	mu    sync.Mutex
	calls map[string]int
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

// blockingDescriber holds the first describe of one object until release is
// closed.
type blockingDescriber struct {
	inner   introspect.Describer
	object  string
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingDescriber) Describe(ctx context.Context, name string) (schema.ObjectDescriptor, error) {
	if name == b.object {
		first := false
		b.once.Do(func() {
			first = true
			close(b.started)
		})
		if first {
			<-b.release
		}
	}
	return b.inner.Describe(ctx, name)
}

func newStore(t *testing.T, d introspect.Describer, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithLogger(log.New(&bytes.Buffer{}, "", 0))}, opts...)
	return New(d, opts...)
}

func ids(nodes []graph.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func node(t *testing.T, s State, id string) graph.Node {
	t.Helper()
	n, ok := s.Graph().Node(id)
	require.True(t, ok, "node %s not present", id)
	return n
}

func TestStoreSetRoot(t *testing.T) {
	ctx := context.Background()

	t.Run("builds the graph and resets bookkeeping", func(t *testing.T) {
		s := newStore(t, introspect.NewStaticDescriber(crm()...))

		require.NoError(t, s.SetRoot(ctx, "Contact"))

		state := s.Snapshot()
		assert.Equal(t, "Contact", state.CurrentObject)
		assert.Equal(t, []string{"Contact", "Account"}, ids(state.Nodes))
		assert.Len(t, state.Edges, 1)
		assert.Equal(t, []string{"Contact"}, state.VisitedObjects)
		assert.False(t, state.Loading)
		assert.Empty(t, state.Error)
		assert.NotEmpty(t, state.SessionID)
	})

	t.Run("partial failure keeps discovered nodes", func(t *testing.T) {
		s := newStore(t, introspect.NewStaticDescriber(obj("Contact", ref("AccountId", "Account"))))

		err := s.SetRoot(ctx, "Contact")

		assert.ErrorIs(t, err, introspect.ErrObjectNotFound)
		state := s.Snapshot()
		assert.Equal(t, []string{"Contact"}, ids(state.Nodes))
		assert.Empty(t, state.Edges)
		assert.Contains(t, state.Error, "Account")
		assert.False(t, state.Loading)
	})

	t.Run("depth is validated and applied on rebuild", func(t *testing.T) {
		s := newStore(t, introspect.NewStaticDescriber(crm()...))

		assert.ErrorIs(t, s.Rebuild(ctx), ErrNoRoot)
		assert.ErrorIs(t, s.SetDepth(0), ErrInvalidDepth)
		assert.ErrorIs(t, s.SetDepth(4), ErrInvalidDepth)

		require.NoError(t, s.SetRoot(ctx, "Quote"))
		assert.Len(t, s.Snapshot().Nodes, 3)

		require.NoError(t, s.SetDepth(2))
		assert.Len(t, s.Snapshot().Nodes, 3, "depth change alone does not rebuild")

		err := s.Rebuild(ctx)
		assert.ErrorIs(t, err, introspect.ErrObjectNotFound, "Pricebook2 is not describable")
		state := s.Snapshot()
		assert.Equal(t, 2, state.Depth)
		assert.Equal(t, []string{"Quote", "Opportunity", "Account"}, ids(state.Nodes))
	})

	t.Run("explicit depth is committed only by a build that produced a graph", func(t *testing.T) {
		s := newStore(t, introspect.NewStaticDescriber(crm()...))

		assert.ErrorIs(t, s.BuildAt(ctx, "Quote", 4), ErrInvalidDepth)
		assert.Equal(t, DefaultDepth, s.Snapshot().Depth)
		assert.Empty(t, s.Snapshot().CurrentObject)

		err := s.BuildAt(ctx, "Nope", 3)
		assert.ErrorIs(t, err, introspect.ErrObjectNotFound)
		assert.Equal(t, DefaultDepth, s.Snapshot().Depth)

		err = s.BuildAt(ctx, "Quote", 2)
		assert.ErrorIs(t, err, introspect.ErrObjectNotFound, "Pricebook2 is not describable")
		state := s.Snapshot()
		assert.Equal(t, 2, state.Depth)
		assert.Equal(t, []string{"Quote", "Opportunity", "Account"}, ids(state.Nodes))
	})

	t.Run("stale build is discarded", func(t *testing.T) {
		blocking := &blockingDescriber{
			inner:   introspect.NewStaticDescriber(crm()...),
			object:  "Quote",
			started: make(chan struct{}),
			release: make(chan struct{}),
		}
		s := newStore(t, blocking)

		result := make(chan error, 1)
		go func() { result <- s.SetRoot(ctx, "Quote") }()
		<-blocking.started
		assert.True(t, s.Loading())

		require.NoError(t, s.SetRoot(ctx, "Contact"))
		close(blocking.release)

		assert.ErrorIs(t, <-result, ErrStaleResult)
		state := s.Snapshot()
		assert.Equal(t, "Contact", state.CurrentObject)
		assert.Equal(t, []string{"Contact", "Account"}, ids(state.Nodes))
		assert.False(t, state.Loading)
	})
}

func TestStoreStaleExpand(t *testing.T) {
	ctx := context.Background()
	objects := append(crm(),
		obj("Pricebook2", ref("Product2Id", "Product2")),
		obj("Product2"),
	)
	blocking := &blockingDescriber{
		inner:   introspect.NewStaticDescriber(objects...),
		object:  "Pricebook2",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := newStore(t, blocking)
	require.NoError(t, s.SetRoot(ctx, "Quote"))
	require.NoError(t, s.Expand(ctx, "Opportunity"))
	require.Contains(t, ids(s.Snapshot().Nodes), "Pricebook2")

	result := make(chan error, 1)
	go func() { result <- s.Expand(ctx, "Pricebook2") }()
	<-blocking.started
	assert.True(t, s.Loading())

	s.Reset()
	require.NoError(t, s.BuildAt(ctx, "Quote", 2))
	close(blocking.release)

	assert.ErrorIs(t, <-result, ErrStaleResult)
	state := s.Snapshot()
	assert.Equal(t, []string{"Quote", "Opportunity", "Account", "Pricebook2"}, ids(state.Nodes))
	assert.NotContains(t, ids(state.Nodes), "Product2")
	assert.False(t, node(t, state, "Pricebook2").Expanded)
	assert.NotContains(t, state.VisitedObjects, "Pricebook2")
	assert.Empty(t, state.Error)
	assert.False(t, state.Loading)
}

func TestStoreToggle(t *testing.T) {
	ctx := context.Background()

	t.Run("expand then collapse", func(t *testing.T) {
		s := newStore(t, introspect.NewStaticDescriber(crm()...))
		require.NoError(t, s.SetRoot(ctx, "Quote"))
		assert.False(t, node(t, s.Snapshot(), "Opportunity").Expanded)

		require.NoError(t, s.Toggle(ctx, "Opportunity"))

		state := s.Snapshot()
		assert.Equal(t, []string{"Quote", "Opportunity", "Account", "Pricebook2"}, ids(state.Nodes))
		assert.Len(t, state.Edges, 4)
		opportunity := node(t, state, "Opportunity")
		assert.True(t, opportunity.Expanded)
		assert.Equal(t, 2, opportunity.ReferenceCount)
		assert.Contains(t, state.VisitedObjects, "Opportunity")

		require.NoError(t, s.Toggle(ctx, "Opportunity"))

		state = s.Snapshot()
		assert.Equal(t, []string{"Quote", "Opportunity", "Account"}, ids(state.Nodes))
		assert.Len(t, state.Edges, 2)
		assert.False(t, node(t, state, "Opportunity").Expanded)
	})

	t.Run("re-expanding uses the session cache", func(t *testing.T) {
		d := &countingDescriber{inner: introspect.NewStaticDescriber(crm()...), calls: map[string]int{}}
		s := newStore(t, d)
		require.NoError(t, s.SetRoot(ctx, "Quote"))

		for i := 0; i < 3; i++ {
			require.NoError(t, s.Toggle(ctx, "Opportunity"))
			require.NoError(t, s.Toggle(ctx, "Opportunity"))
		}

		assert.Equal(t, 1, d.count("Opportunity"))
		assert.Equal(t, 1, d.count("Quote"))
	})

	t.Run("expanded position is preserved", func(t *testing.T) {
		s := newStore(t, introspect.NewStaticDescriber(crm()...))
		require.NoError(t, s.SetRoot(ctx, "Quote"))
		moved := graph.Position{X: 12, Y: 34}
		require.True(t, s.MoveNode("Opportunity", moved))

		require.NoError(t, s.Expand(ctx, "Opportunity"))

		assert.Equal(t, moved, node(t, s.Snapshot(), "Opportunity").Position)
	})

	t.Run("expand failure is recorded", func(t *testing.T) {
		s := newStore(t, introspect.NewStaticDescriber(crm()...))
		require.NoError(t, s.SetRoot(ctx, "Quote"))
		require.NoError(t, s.Toggle(ctx, "Opportunity"))

		err := s.Toggle(ctx, "Pricebook2")

		var de *introspect.DescribeError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "Pricebook2", de.Object)
		state := s.Snapshot()
		assert.Contains(t, state.Error, "Pricebook2")
		assert.False(t, state.Loading)
		assert.False(t, node(t, state, "Pricebook2").Expanded)
	})

	t.Run("unknown node is a no-op", func(t *testing.T) {
		s := newStore(t, introspect.NewStaticDescriber(crm()...))
		require.NoError(t, s.SetRoot(ctx, "Contact"))
		before := s.Snapshot()

		assert.NoError(t, s.Toggle(ctx, "Ghost"))
		assert.NoError(t, s.Expand(ctx, "Ghost"))
		assert.False(t, s.Collapse("Ghost"))

		assert.Equal(t, before, s.Snapshot())
	})
}

func TestStoreViewState(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, introspect.NewStaticDescriber(crm()...))
	require.NoError(t, s.SetRoot(ctx, "Quote"))
	require.NoError(t, s.Expand(ctx, "Opportunity"))

	assert.True(t, s.SelectNode("Pricebook2"))
	assert.True(t, s.SelectEdge("Opportunity-Pricebook2Id-Pricebook2"))
	assert.False(t, s.SelectNode("Ghost"))
	assert.False(t, s.MoveNode("Ghost", graph.Position{}))
	s.SetViewport(Viewport{X: 1, Y: 2, Zoom: 1.5})

	before := s.Snapshot()
	assert.Equal(t, "Pricebook2", before.SelectedNode)
	assert.Equal(t, Viewport{X: 1, Y: 2, Zoom: 1.5}, before.Viewport)

	require.True(t, s.Collapse("Opportunity"))

	after := s.Snapshot()
	assert.Empty(t, after.SelectedNode)
	assert.Empty(t, after.SelectedEdge)
	assert.Equal(t, before.Viewport, after.Viewport)
}

func TestStoreReset(t *testing.T) {
	ctx := context.Background()
	d := &countingDescriber{inner: introspect.NewStaticDescriber(crm()...), calls: map[string]int{}}
	s := newStore(t, d, WithDepth(2))
	require.NoError(t, s.SetRoot(ctx, "Contact"))
	first := s.Snapshot()

	s.Reset()

	state := s.Snapshot()
	assert.Empty(t, state.Nodes)
	assert.Empty(t, state.Edges)
	assert.Empty(t, state.CurrentObject)
	assert.Empty(t, state.VisitedObjects)
	assert.Equal(t, 2, state.Depth)
	assert.NotEqual(t, first.SessionID, state.SessionID)
	assert.Greater(t, state.Generation, first.Generation)

	require.NoError(t, s.SetRoot(ctx, "Contact"))
	assert.Equal(t, 2, d.count("Contact"), "a new session describes again")
}

func TestStoreListObjects(t *testing.T) {
	s := newStore(t, introspect.NewStaticDescriber(crm()...))

	objects, err := s.ListObjects(context.Background())

	require.NoError(t, err)
	require.Len(t, objects, 4)
	assert.Equal(t, "Account", objects[0].Name)
}
