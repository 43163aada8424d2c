package assets

import (
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"github.com/SpringRoll/SpringRoll-sub000/internal/model"
)

// Cache stores finished results by id.
//
// A value may be a single result, a list of results or a map of results.
// Removing a value destroys everything it holds:
//
//	cache.Write("icons", []any{img1, img2})
//	cache.Delete("icons") // img1 and img2 are destroyed
type Cache struct {
	mu      sync.Mutex
	entries map[string]any
	logger  *slog.Logger
}

// NewCache creates an empty cache. A nil logger means slog.Default().
func NewCache(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{entries: make(map[string]any), logger: logger}
}

// Write stores value under id. An existing value is destroyed first.
func (c *Cache) Write(id string, value any) {
	c.mu.Lock()
	old, exists := c.entries[id]
	c.entries[id] = value
	c.mu.Unlock()

	if exists {
		c.logger.Warn("overwriting cached asset", "id", id)
		if !samePointer(old, value) {
			destroyValue(old)
		}
	}
}

// Read returns the value stored under id, or nil.
func (c *Cache) Read(id string) any {
	c.mu.Lock()
	value, ok := c.entries[id]
	c.mu.Unlock()

	if !ok {
		c.logger.Warn("asset not in cache", "id", id)
		return nil
	}
	return value
}

// Has reports whether id is cached.
func (c *Cache) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

// Len returns the number of cached ids.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// IDs returns the cached ids, sorted.
func (c *Cache) IDs() []string {
	c.mu.Lock()
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	slices.Sort(ids)
	return ids
}

// Delete removes and destroys a cached value. target is an id, a
// descriptor or a task; descriptors and tasks are looked up by their id.
// It reports whether anything was removed.
func (c *Cache) Delete(target any) bool {
	id := targetID(target)
	if id == "" {
		return false
	}

	c.mu.Lock()
	value, ok := c.entries[id]
	delete(c.entries, id)
	c.mu.Unlock()

	if !ok {
		return false
	}
	destroyValue(value)
	return true
}

// Empty destroys and removes every cached value.
func (c *Cache) Empty() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[string]any)
	c.mu.Unlock()

	for _, value := range entries {
		destroyValue(value)
	}
}

func targetID(target any) string {
	if isNil(target) {
		return ""
	}
	switch t := target.(type) {
	case string:
		return t
	case Task:
		return t.Base().ID
	case Described:
		return t.AssetInfo().ID
	}
	return ""
}

// destroyValue destroys a single value or every member of a list or map.
func destroyValue(value any) {
	if isNil(value) {
		return
	}
	if _, ok := value.([]byte); ok {
		return
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			destroyValue(rv.Index(i).Interface())
		}
		return
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			destroyValue(iter.Value().Interface())
		}
		return
	}

	if r, ok := value.(model.ImageReleaser); ok {
		r.ReleaseImage()
	}
	if d, ok := value.(model.Destroyer); ok {
		d.Destroy()
	}
}

func samePointer(a, b any) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Kind() != reflect.Pointer || rb.Kind() != reflect.Pointer {
		return false
	}
	return ra.Pointer() == rb.Pointer()
}
