// Package store holds the authoritative state of one relationship graph
// session: the visible nodes and edges, traversal settings, load status and
// view-only state such as selection and viewport.
//
// Mutations that need a describe (SetRoot, Rebuild, Expand) release the lock
// while fetching. Every SetRoot and Reset starts a new generation; results
// computed under an older generation are discarded with ErrStaleResult.
package store

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ridoystarlord/relgraph/graph"
	"github.com/ridoystarlord/relgraph/introspect"
	"github.com/ridoystarlord/relgraph/schema"
)

const (
	MinDepth     = 1
	MaxDepth     = 3
	DefaultDepth = 1
)

var (
	ErrNoRoot       = errors.New("no root object selected")
	ErrInvalidDepth = errors.New("depth must be between 1 and 3")
	ErrStaleResult  = errors.New("result discarded: graph changed while loading")
)

// Viewport is the pan and zoom of the rendered graph.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// State is a point-in-time copy of the store.
type State struct {
	SessionID      string       `json:"sessionId"`
	Generation     uint64       `json:"generation"`
	Nodes          []graph.Node `json:"nodes"`
	Edges          []graph.Edge `json:"edges"`
	Depth          int          `json:"depth"`
	CurrentObject  string       `json:"currentObject"`
	VisitedObjects []string     `json:"visitedObjects"`
	Loading        bool         `json:"loading"`
	Error          string       `json:"error,omitempty"`
	SelectedNode   string       `json:"selectedNode,omitempty"`
	SelectedEdge   string       `json:"selectedEdge,omitempty"`
	Viewport       Viewport     `json:"viewport"`
}

// Graph returns the topology part of the state.
func (s State) Graph() graph.Graph {
	return graph.Graph{Nodes: s.Nodes, Edges: s.Edges}
}

// Store owns the graph of one session.
type Store struct {
	source introspect.Describer
	logger *log.Logger

	mu         sync.Mutex
	sessionID  string
	generation uint64
	cache      *introspect.Cache
	service    *graph.Service

	nodes         []graph.Node
	edges         []graph.Edge
	depth         int
	currentObject string
	visited       map[string]bool
	inflight      int
	lastErr       string

	selectedNode string
	selectedEdge string
	viewport     Viewport
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger passed to the graph service.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDepth sets the initial traversal depth. Out of range values are ignored.
func WithDepth(depth int) Option {
	return func(s *Store) {
		if depth >= MinDepth && depth <= MaxDepth {
			s.depth = depth
		}
	}
}

// New creates an empty store describing objects through source.
func New(source introspect.Describer, opts ...Option) *Store {
	s := &Store{
		source:  source,
		logger:  log.Default(),
		depth:   DefaultDepth,
		visited: map[string]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.newSession()
	return s
}

// newSession starts a fresh describe cache. Callers hold mu or own s.
func (s *Store) newSession() {
	s.sessionID = uuid.NewString()
	s.cache = introspect.NewCache(s.source)
	s.service = graph.NewService(s.cache, graph.WithLogger(s.logger))
}

// SetRoot rebuilds the graph from objectName at the current depth and
// replaces the state wholesale. A partially failed build keeps the nodes that
// were discovered, records the failure and returns it.
func (s *Store) SetRoot(ctx context.Context, objectName string) error {
	return s.build(ctx, objectName, 0)
}

// BuildAt is SetRoot at an explicit depth. The depth is validated up front
// and only becomes the store's depth once the build produced a graph; a build
// that fails outright leaves the previous depth in place.
func (s *Store) BuildAt(ctx context.Context, objectName string, depth int) error {
	if depth < MinDepth || depth > MaxDepth {
		return ErrInvalidDepth
	}
	return s.build(ctx, objectName, depth)
}

// build runs one traversal. depth 0 means the store's current depth.
func (s *Store) build(ctx context.Context, objectName string, depth int) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.currentObject = objectName
	s.visited = map[string]bool{objectName: true}
	s.nodes, s.edges = nil, nil
	s.selectedNode, s.selectedEdge = "", ""
	s.lastErr = ""
	s.inflight++
	if depth == 0 {
		depth = s.depth
	}
	svc := s.service
	s.mu.Unlock()

	g, err := svc.BuildGraph(ctx, objectName, depth)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--

	if gen != s.generation {
		observe("build", ErrStaleResult)
		return ErrStaleResult
	}

	s.nodes, s.edges = g.Nodes, g.Edges
	if len(g.Nodes) > 0 {
		s.depth = depth
	}
	s.updateGauges()
	observe("build", err)
	if err != nil {
		s.lastErr = err.Error()
		return err
	}
	return nil
}

// Rebuild runs SetRoot again for the current root, typically after SetDepth.
func (s *Store) Rebuild(ctx context.Context) error {
	s.mu.Lock()
	root := s.currentObject
	s.mu.Unlock()

	if root == "" {
		return ErrNoRoot
	}
	return s.SetRoot(ctx, root)
}

// SetDepth changes the traversal bound used by the next build.
func (s *Store) SetDepth(depth int) error {
	if depth < MinDepth || depth > MaxDepth {
		return ErrInvalidDepth
	}
	s.mu.Lock()
	s.depth = depth
	s.mu.Unlock()
	return nil
}

// Expand materializes the direct references of nodeID. An unknown node is a
// no-op.
func (s *Store) Expand(ctx context.Context, nodeID string) error {
	s.mu.Lock()
	if s.indexOf(nodeID) < 0 {
		s.mu.Unlock()
		return nil
	}
	gen := s.generation
	nodes := append([]graph.Node(nil), s.nodes...)
	edges := append([]graph.Edge(nil), s.edges...)
	svc := s.service
	s.inflight++
	s.mu.Unlock()

	delta, err := svc.ExpandNode(ctx, nodeID, nodes, edges)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--

	if gen != s.generation {
		observe("expand", ErrStaleResult)
		return ErrStaleResult
	}
	if err != nil {
		s.lastErr = err.Error()
		observe("expand", err)
		return err
	}

	s.merge(nodeID, delta)
	s.visited[nodeID] = true
	s.updateGauges()
	observe("expand", nil)
	return nil
}

// Collapse prunes the subtree reachable only through nodeID. It reports
// whether nodeID was present.
func (s *Store) Collapse(nodeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(nodeID) < 0 {
		return false
	}

	s.nodes, s.edges = graph.CollapseNode(nodeID, s.nodes, s.edges)
	if s.selectedNode != "" && s.indexOf(s.selectedNode) < 0 {
		s.selectedNode = ""
	}
	if s.selectedEdge != "" && !s.hasEdge(s.selectedEdge) {
		s.selectedEdge = ""
	}
	s.updateGauges()
	observe("collapse", nil)
	return true
}

// Toggle collapses an expanded node and expands a collapsed one. It is the
// entry point for a node click.
func (s *Store) Toggle(ctx context.Context, nodeID string) error {
	s.mu.Lock()
	i := s.indexOf(nodeID)
	expanded := i >= 0 && s.nodes[i].Expanded
	s.mu.Unlock()

	if i < 0 {
		return nil
	}
	if expanded {
		s.Collapse(nodeID)
		return nil
	}
	return s.Expand(ctx, nodeID)
}

// MoveNode updates the layout position of a node.
func (s *Store) MoveNode(nodeID string, position graph.Position) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(nodeID)
	if i < 0 {
		return false
	}
	s.nodes[i].Position = position
	return true
}

// SelectNode selects a node; an empty id clears the selection.
func (s *Store) SelectNode(nodeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if nodeID != "" && s.indexOf(nodeID) < 0 {
		return false
	}
	s.selectedNode = nodeID
	return true
}

// SelectEdge selects an edge; an empty id clears the selection.
func (s *Store) SelectEdge(edgeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if edgeID != "" && !s.hasEdge(edgeID) {
		return false
	}
	s.selectedEdge = edgeID
	return true
}

// SetViewport records pan and zoom.
func (s *Store) SetViewport(v Viewport) {
	s.mu.Lock()
	s.viewport = v
	s.mu.Unlock()
}

// Reset clears the graph, the root and the error and starts a new describe
// session. In-flight operations from before the reset are discarded.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.nodes, s.edges = nil, nil
	s.currentObject = ""
	s.visited = map[string]bool{}
	s.lastErr = ""
	s.selectedNode, s.selectedEdge = "", ""
	s.viewport = Viewport{}
	s.newSession()
	s.updateGauges()
}

// ListObjects lists the objects the source can describe.
func (s *Store) ListObjects(ctx context.Context) ([]schema.ObjectSummary, error) {
	s.mu.Lock()
	cache := s.cache
	s.mu.Unlock()
	return cache.ListObjects(ctx)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	visited := make([]string, 0, len(s.visited))
	for name := range s.visited {
		visited = append(visited, name)
	}
	sort.Strings(visited)

	return State{
		SessionID:      s.sessionID,
		Generation:     s.generation,
		Nodes:          append([]graph.Node(nil), s.nodes...),
		Edges:          append([]graph.Edge(nil), s.edges...),
		Depth:          s.depth,
		CurrentObject:  s.currentObject,
		VisitedObjects: visited,
		Loading:        s.inflight > 0,
		Error:          s.lastErr,
		SelectedNode:   s.selectedNode,
		SelectedEdge:   s.selectedEdge,
		Viewport:       s.viewport,
	}
}

// Graph returns a copy of the visible topology.
func (s *Store) Graph() graph.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return graph.Graph{Nodes: s.nodes, Edges: s.edges}.Clone()
}

// Loading reports whether a describe-backed operation is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Err returns the last recorded describe failure, or "".
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// merge applies an expansion delta against the current state, which may have
// changed since the delta was computed.
func (s *Store) merge(nodeID string, delta graph.Delta) {
	i := s.indexOf(nodeID)
	if i < 0 {
		return
	}

	if delta.Source != nil {
		updated := *delta.Source
		updated.Position = s.nodes[i].Position
		s.nodes[i] = updated
	} else {
		s.nodes[i].Expanded = true
	}

	for _, n := range delta.Nodes {
		if s.indexOf(n.ID) < 0 {
			s.nodes = append(s.nodes, n)
		}
	}
	for _, e := range delta.Edges {
		if s.hasEdge(e.ID) || s.indexOf(e.Source) < 0 || s.indexOf(e.Target) < 0 {
			continue
		}
		s.edges = append(s.edges, e)
	}
}

func (s *Store) indexOf(nodeID string) int {
	for i, n := range s.nodes {
		if n.ID == nodeID {
			return i
		}
	}
	return -1
}

func (s *Store) hasEdge(edgeID string) bool {
	return graph.Graph{Edges: s.edges}.HasEdge(edgeID)
}

func (s *Store) updateGauges() {
	visibleNodes.Set(float64(len(s.nodes)))
	visibleEdges.Set(float64(len(s.edges)))
}
