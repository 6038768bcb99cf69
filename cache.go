package skema

import (
	"context"
	"runtime"
	"sync"
	"weak"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/reoring/skema"

// Cache maps a schema pointer to its compiled validator. Entries are keyed by
// identity, never by structure, and do not keep the schema alive: once a
// schema is garbage collected its entry is evicted.
type Cache struct {
	mu      sync.RWMutex
	entries map[weak.Pointer[Schema]]*Validator

	hits   metric.Int64Counter
	misses metric.Int64Counter
}

type cacheConfig struct {
	meter metric.Meter
}

// CacheOption configures NewCache.
type CacheOption func(*cacheConfig)

// WithMeter reports cache hits and misses through m instead of the global
// meter provider.
func WithMeter(m metric.Meter) CacheOption { return func(c *cacheConfig) { c.meter = m } }

// DefaultCache is used by Compile unless WithCache is given.
var DefaultCache = NewCache()

// NewCache returns an empty cache.
func NewCache(opts ...CacheOption) *Cache {
	cfg := cacheConfig{meter: otel.Meter(meterName)}
	for _, o := range opts {
		o(&cfg)
	}
	c := &Cache{entries: make(map[weak.Pointer[Schema]]*Validator)}
	var err error
	if c.hits, err = cfg.meter.Int64Counter("skema.cache.hits",
		metric.WithDescription("Compile calls served from the validator cache")); err != nil {
		c.hits = noop.Int64Counter{}
	}
	if c.misses, err = cfg.meter.Int64Counter("skema.cache.misses",
		metric.WithDescription("Compile calls that had to compile the schema")); err != nil {
		c.misses = noop.Int64Counter{}
	}
	return c
}

// Get returns the validator stored for s.
func (c *Cache) Get(s *Schema) (*Validator, bool) {
	c.mu.RLock()
	v, ok := c.entries[weak.Make(s)]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(context.Background(), 1)
	} else {
		c.misses.Add(context.Background(), 1)
	}
	return v, ok
}

// Has reports whether a validator is stored for s. It does not count as a hit
// or a miss.
func (c *Cache) Has(s *Schema) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[weak.Make(s)]
	return ok
}

// Set stores v for s, replacing any previous entry.
func (c *Cache) Set(s *Schema, v *Validator) {
	wp := weak.Make(s)
	c.mu.Lock()
	_, existed := c.entries[wp]
	c.entries[wp] = v
	c.mu.Unlock()
	if !existed {
		runtime.AddCleanup(s, c.evict, wp)
	}
}

// loadOrStore stores v for s unless another goroutine stored first, and
// returns the stored validator.
func (c *Cache) loadOrStore(s *Schema, v *Validator) *Validator {
	wp := weak.Make(s)
	c.mu.Lock()
	if prev, ok := c.entries[wp]; ok {
		c.mu.Unlock()
		return prev
	}
	c.entries[wp] = v
	c.mu.Unlock()
	runtime.AddCleanup(s, c.evict, wp)
	return v
}

func (c *Cache) evict(wp weak.Pointer[Schema]) {
	c.mu.Lock()
	delete(c.entries, wp)
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
