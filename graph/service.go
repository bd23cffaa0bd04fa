package graph

import (
	"context"
	"errors"
	"log"

	"github.com/ridoystarlord/relgraph/introspect"
)

// Service builds and expands graphs from the objects returned by a Describer.
// Wrap the describer in an introspect.Cache to avoid refetching objects
// within a session.
type Service struct {
	describer introspect.Describer
	logger    *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for skipped objects during a build.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a graph service over d.
func NewService(d introspect.Describer, opts ...Option) *Service {
	s := &Service{
		describer: d,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type queueItem struct {
	name     string
	level    int
	parentID string
	index    int
	siblings int
}

// BuildGraph walks reference fields breadth-first from root down to maxDepth
// hops. Nodes below maxDepth are marked expanded; nodes at maxDepth are leaves
// whose references are counted but not followed.
//
// A failed describe abandons that branch only. The graph discovered so far is
// always returned, together with the joined describe errors, if any. Edges
// pointing at objects that could not be described are dropped.
func (s *Service) BuildGraph(ctx context.Context, root string, maxDepth int) (Graph, error) {
	var (
		nodes     []Node
		index     = map[string]int{}
		edges     []Edge
		edgeSeen  = map[string]bool{}
		processed = map[string]bool{}
		queued    = map[string]bool{root: true}
		failures  []error
	)

	queue := []queueItem{{name: root, siblings: 1}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}

		current := queue[0]
		queue = queue[1:]

		if processed[current.name] {
			continue
		}
		processed[current.name] = true

		object, err := s.describer.Describe(ctx, current.name)
		if err != nil {
			s.logger.Printf("⚠️  skipping %s: %v", current.name, err)
			failures = append(failures, err)
			continue
		}

		position := Position{}
		if current.level > 0 {
			if i, ok := index[current.parentID]; ok {
				position = LayoutChild(nodes[i].Position, current.index, current.siblings, current.level)
			}
		}

		references := object.ReferenceFields()
		label := object.Label
		if label == "" {
			label = current.name
		}

		index[current.name] = len(nodes)
		nodes = append(nodes, Node{
			ID:             current.name,
			Label:          label,
			ObjectName:     current.name,
			IsCustom:       object.IsCustom,
			FieldCount:     len(object.Fields),
			ReferenceCount: len(references),
			Depth:          current.level,
			Expanded:       current.level < maxDepth,
			Position:       position,
		})

		if current.level >= maxDepth {
			continue
		}

		var children []string
		for _, field := range references {
			for _, target := range field.ReferenceTargets {
				if target == current.name || processed[target] {
					continue
				}
				edge := NewEdge(current.name, field, target)
				if !edgeSeen[edge.ID] {
					edgeSeen[edge.ID] = true
					edges = append(edges, edge)
				}
				if !queued[target] {
					queued[target] = true
					children = append(children, target)
				}
			}
		}

		for i, child := range children {
			queue = append(queue, queueItem{
				name:     child,
				level:    current.level + 1,
				parentID: current.name,
				index:    i,
				siblings: len(children),
			})
		}
	}

	kept := edges[:0]
	for _, e := range edges {
		_, sourceOK := index[e.Source]
		_, targetOK := index[e.Target]
		if sourceOK && targetOK {
			kept = append(kept, e)
		}
	}

	return Graph{Nodes: nodes, Edges: kept}, errors.Join(failures...)
}
