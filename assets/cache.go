package assets

import (
	"context"

	"github.com/wudi/pdfoverlay/coords"
	"github.com/wudi/pdfoverlay/engine"
)

// Factory prepares and embeds the asset for one rotation. It is the
// expensive step the cache exists to deduplicate.
type Factory func(ctx context.Context, rotation coords.Rotation) (engine.AssetHandle, error)

// RotationAssetCache memoizes one embedded asset handle per distinct page
// rotation. It is scoped to a single batch run on a single goroutine and
// is discarded with the run; it is not a cross-session cache. Most real
// documents carry only one or two distinct rotations, so the cache turns
// O(pages) preparations into O(distinct rotations).
type RotationAssetCache struct {
	entries map[coords.Rotation]engine.AssetHandle
	misses  int
}

// NewRotationAssetCache returns an empty cache.
func NewRotationAssetCache() *RotationAssetCache {
	return &RotationAssetCache{entries: make(map[coords.Rotation]engine.AssetHandle)}
}

// GetOrCreate returns the cached handle for the rotation, invoking
// factory exactly once per distinct rotation. A factory error is not
// cached; the next call for the same rotation retries.
func (c *RotationAssetCache) GetOrCreate(ctx context.Context, rotation coords.Rotation, factory Factory) (engine.AssetHandle, error) {
	if h, ok := c.entries[rotation]; ok {
		return h, nil
	}
	h, err := factory(ctx, rotation)
	if err != nil {
		return nil, err
	}
	c.misses++
	c.entries[rotation] = h
	return h, nil
}

// Len returns the number of distinct rotations prepared so far.
func (c *RotationAssetCache) Len() int { return len(c.entries) }

// Misses returns how many times the factory ran.
func (c *RotationAssetCache) Misses() int { return c.misses }
