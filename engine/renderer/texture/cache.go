package texture

import (
	"errors"
	"fmt"
	"weak"

	"github.com/Carmen-Shannon/oxy-widget/common"
)

// ErrNoImage is returned when registering a texture whose image has already been released.
var ErrNoImage = errors.New("texture has no image")

// Resource is a GPU-side texture resource owned by the Cache.
type Resource interface {
	// Release frees the GPU resources held by this resource.
	Release()
}

// Factory creates GPU resources for textures on behalf of the Cache.
type Factory interface {
	// CreateTexture uploads pixel data and creates the sampler and bind group for one texture.
	//
	// Parameters:
	//   - label: debug label for the GPU objects
	//   - staging: the RGBA8 pixel data and dimensions
	//   - sampler: the sampler configuration
	//
	// Returns:
	//   - Resource: the created GPU resource
	//   - error: an error if any GPU object could not be created
	CreateTexture(label string, staging common.TextureStagingData, sampler common.SamplerStagingData) (Resource, error)
}

type cacheEntry struct {
	resource Resource
	image    weak.Pointer[Image]
	sampler  common.SamplerStagingData
}

// Cache maps TextureIDs to their GPU resources. Entries hold only a weak reference to the source
// image so the cache never keeps pixel data alive by itself.
//
// Cache is not safe for concurrent use; it belongs to the render thread.
type Cache struct {
	factory Factory
	entries map[TextureID]*cacheEntry
}

// NewCache creates an empty cache that creates GPU resources through factory.
func NewCache(factory Factory) *Cache {
	return &Cache{
		factory: factory,
		entries: make(map[TextureID]*cacheEntry),
	}
}

// Register makes sure the texture has a GPU resource. Registering an already cached texture is
// a no-op; the sampler configuration captured on first registration is kept for the life of the entry.
//
// Parameters:
//   - tex: the texture to register
//
// Returns:
//   - TextureID: the id of the registered texture
//   - error: an error if the texture has no image or GPU creation failed
func (c *Cache) Register(tex *Texture) (TextureID, error) {
	if _, ok := c.entries[tex.id]; ok {
		return tex.id, nil
	}
	img := tex.image
	if img == nil {
		return tex.id, ErrNoImage
	}

	sampler := tex.config.SamplerStagingData()
	res, err := c.factory.CreateTexture(tex.label, img.StagingData(), sampler)
	if err != nil {
		return tex.id, fmt.Errorf("failed to create texture %q: %w", tex.label, err)
	}
	c.entries[tex.id] = &cacheEntry{
		resource: res,
		image:    weak.Make(img),
		sampler:  sampler,
	}
	return tex.id, nil
}

// Resource returns the GPU resource for the id.
func (c *Cache) Resource(id TextureID) (Resource, bool) {
	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return e.resource, true
}

// Sampler returns the sampler configuration captured when the id was registered.
func (c *Cache) Sampler(id TextureID) (common.SamplerStagingData, bool) {
	e, ok := c.entries[id]
	if !ok {
		return common.SamplerStagingData{}, false
	}
	return e.sampler, true
}

// ShouldEvict reports whether the source image of a cached texture is no longer reachable.
// Unknown ids are never evictable.
func (c *Cache) ShouldEvict(id TextureID) bool {
	e, ok := c.entries[id]
	if !ok {
		return false
	}
	return e.image.Value() == nil
}

// Evict releases and removes every entry whose source image is gone.
//
// Returns:
//   - int: the number of evicted entries
func (c *Cache) Evict() int {
	n := 0
	for id, e := range c.entries {
		if e.image.Value() != nil {
			continue
		}
		if e.resource != nil {
			e.resource.Release()
		}
		delete(c.entries, id)
		n++
	}
	return n
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Release frees every cached GPU resource and empties the cache.
func (c *Cache) Release() {
	for id, e := range c.entries {
		if e.resource != nil {
			e.resource.Release()
		}
		delete(c.entries, id)
	}
}
