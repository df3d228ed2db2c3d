package cache

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/launchdash/dashboard/internal/figure"
	"github.com/launchdash/dashboard/pkg/core"
)

// DefaultSize is the entry limit used when no positive size is given.
const DefaultSize = 256

// FigureCache caches built figures per output and input selection. The dataset
// is immutable after load, so an entry never goes stale while the process runs.
// Scatter keys carry client supplied bounds, so the cache holds at most Size
// entries and evicts the least recently used one beyond that.
type FigureCache struct {
	m       sync.Mutex
	Size    int
	Figures *lru.Cache[string, figure.Figure]
	Hits    SafeCounter
	Misses  SafeCounter
}

func NewFigureCache(size int) *FigureCache {
	if size <= 0 {
		size = DefaultSize
	}
	return &FigureCache{
		m:       sync.Mutex{},
		Size:    size,
		Figures: newLRU(size),
	}
}

// newLRU only fails for a non-positive size, which callers rule out.
func newLRU(size int) *lru.Cache[string, figure.Figure] {
	c, err := lru.New[string, figure.Figure](size)
	if err != nil {
		panic(err)
	}
	return c
}

// Key identifies a figure. The pie ignores the payload range, so it is left
// out of pie keys to share entries across slider moves.
func Key(output string, in core.Inputs) string {
	site := in.Site
	if in.IsAllSites() {
		site = core.AllSites
	}
	if output == core.SuccessPieChart || in.Payload == nil {
		return fmt.Sprintf("%s|%s", output, site)
	}
	r := in.Payload.Normalized()
	return fmt.Sprintf("%s|%s|%g|%g", output, site, r[0], r[1])
}

func (c *FigureCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.Figures.Purge()
	c.Hits.Set(0)
	c.Misses.Set(0)
}

func (c *FigureCache) Get(key string) (figure.Figure, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if f, ok := c.Figures.Get(key); ok {
		c.Hits.Inc()
		return f, true
	}
	c.Misses.Inc()
	return nil, false
}

func (c *FigureCache) Add(key string, f figure.Figure) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Figures.Add(key, f)
}

// GetOrBuild returns the cached figure for key or builds and stores it.
// Build errors are not cached.
func (c *FigureCache) GetOrBuild(key string, build func() (figure.Figure, error)) (figure.Figure, error) {
	if f, ok := c.Get(key); ok {
		return f, nil
	}
	f, err := build()
	if err != nil {
		return nil, err
	}
	c.Add(key, f)
	return f, nil
}

func (c *FigureCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return c.Figures.Len()
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
