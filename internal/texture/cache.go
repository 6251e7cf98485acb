package texture

import (
	"context"
	"image"
	"sync"

	"obj-gl-renderer/internal/logging"
)

// Resolver resolves a location to a decoded image.
type Resolver interface {
	Resolve(ctx context.Context, location string) (*image.NRGBA, error)
}

// Cache is a concurrency-safe decoded-image cache keyed by location. Only
// successful decodes are kept, so a failed location is retried on the next
// call. Cached images are shared and must not be modified.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*image.NRGBA
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{items: make(map[string]*image.NRGBA)}
}

// Resolve returns the decoded image at location, loading it on first use.
func (c *Cache) Resolve(ctx context.Context, location string) (*image.NRGBA, error) {
	c.mu.RLock()
	if img, ok := c.items[location]; ok {
		c.mu.RUnlock()
		logging.Logger().Debug("texture cache hit", "location", location)
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Decode(ctx, location)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.items[location]; ok {
		return existing, nil
	}
	c.items[location] = img
	logging.Logger().Debug("texture cached", "location", location,
		"width", img.Rect.Dx(), "height", img.Rect.Dy())
	return img, nil
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

type decoder struct{}

func (decoder) Resolve(ctx context.Context, location string) (*image.NRGBA, error) {
	return Decode(ctx, location)
}
