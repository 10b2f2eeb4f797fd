package stroke

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ivlev/sketchplay/internal/logging"
	"github.com/ivlev/sketchplay/internal/timeline"
)

const DefaultCacheSize = 256

// JitterSeed seeds the noise of every jittered path so reruns match
const JitterSeed uint32 = 0x5eed

// Key identifies a generated path by geometry and settings
type Key struct {
	Width, Height float64
	Density       float64
	Strategy      timeline.Strategy
	Jitter        float64
}

// KeyFor returns the cache key of an element's reveal path
func KeyFor(el timeline.Element) Key {
	return Key{
		Width:    el.Width,
		Height:   el.Height,
		Density:  el.Sketch.Density,
		Strategy: timeline.ParseStrategy(string(el.Sketch.Strategy)),
		Jitter:   el.Sketch.Jitter,
	}
}

// Cache memoizes generated paths so each element's path is built once
type Cache struct {
	paths *lru.Cache[Key, *Path]
}

// NewCache creates a cache holding up to size paths
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	// lru.New only fails for non-positive sizes
	paths, _ := lru.New[Key, *Path](size)
	return &Cache{paths: paths}
}

// Path returns the cached path for key, generating and jittering it on a miss
func (c *Cache) Path(key Key) *Path {
	if p, ok := c.paths.Get(key); ok {
		return p
	}
	p := Generate(key.Width, key.Height, key.Density, key.Strategy).Jittered(key.Jitter, JitterSeed)
	c.paths.Add(key, p)
	logging.Logger().Debug("stroke path generated",
		"strategy", key.Strategy, "size", fmt.Sprintf("%.0fx%.0f", key.Width, key.Height),
		"outline", p.Count(KindOutline), "rows", p.Count(KindFill), "hatches", p.Count(KindHatch),
		"length", p.Length(), "jitter", key.Jitter)
	return p
}

// ForElement returns the reveal path of an element
func (c *Cache) ForElement(el timeline.Element) *Path {
	return c.Path(KeyFor(el))
}

// PlainForElement returns the element's path without jitter. The hand
// follows this one while the mask strokes the jittered path.
func (c *Cache) PlainForElement(el timeline.Element) *Path {
	key := KeyFor(el)
	key.Jitter = 0
	return c.Path(key)
}

// Len returns the number of cached paths
func (c *Cache) Len() int {
	return c.paths.Len()
}

// Purge drops every cached path
func (c *Cache) Purge() {
	c.paths.Purge()
}
