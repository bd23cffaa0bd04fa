package introspect

import (
	"context"
	"sync"
	"time"

	"github.com/ridoystarlord/relgraph/schema"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes a Describer by object name for the lifetime of one graph
// session. Entries are never invalidated; failed describes are not cached.
// Concurrent describes of the same name share a single fetch, which is not
// cancelled when one of the waiting callers gives up.
type Cache struct {
	source Describer

	mu      sync.RWMutex
	entries map[string]schema.ObjectDescriptor

	group singleflight.Group
}

// NewCache wraps source with a session cache.
func NewCache(source Describer) *Cache {
	return &Cache{
		source:  source,
		entries: make(map[string]schema.ObjectDescriptor),
	}
}

func (c *Cache) Describe(ctx context.Context, objectName string) (schema.ObjectDescriptor, error) {
	if o, ok := c.lookup(objectName); ok {
		describeTotal.WithLabelValues("hit").Inc()
		return o, nil
	}

	if err := ctx.Err(); err != nil {
		describeTotal.WithLabelValues("error").Inc()
		return schema.ObjectDescriptor{}, describeErr(objectName, err)
	}

	// The shared fetch outlives any single caller; each caller still
	// honours its own cancellation below.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(objectName, func() (interface{}, error) {
		if o, ok := c.lookup(objectName); ok {
			return o, nil
		}
		start := time.Now()
		o, err := c.source.Describe(fetchCtx, objectName)
		describeDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, describeErr(objectName, err)
		}
		c.mu.Lock()
		c.entries[objectName] = o
		c.mu.Unlock()
		return o, nil
	})

	select {
	case <-ctx.Done():
		describeTotal.WithLabelValues("error").Inc()
		return schema.ObjectDescriptor{}, describeErr(objectName, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			describeTotal.WithLabelValues("error").Inc()
			return schema.ObjectDescriptor{}, res.Err
		}
		if res.Shared {
			describeTotal.WithLabelValues("shared").Inc()
		} else {
			describeTotal.WithLabelValues("miss").Inc()
		}
		return res.Val.(schema.ObjectDescriptor), nil
	}
}

// ListObjects forwards to the source when it can list objects.
func (c *Cache) ListObjects(ctx context.Context) ([]schema.ObjectSummary, error) {
	lister, ok := c.source.(ObjectLister)
	if !ok {
		return nil, nil
	}
	return lister.ListObjects(ctx)
}

// Cached reports whether objectName has been described in this session.
func (c *Cache) Cached(objectName string) bool {
	_, ok := c.lookup(objectName)
	return ok
}

// Len returns the number of cached descriptors.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(objectName string) (schema.ObjectDescriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	o, ok := c.entries[objectName]
	return o, ok
}
