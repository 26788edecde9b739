package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto"
	"golang.org/x/sync/singleflight"
)

// MemoCache caches the outputs of memoizable morphs, keyed by a stable
// derivation of (morph name, shape, the morph's declared MemoKeys
// subset of the run context). It is safe for concurrent use and may be
// shared across pipelines; concurrent identical computations are
// collapsed so a given key is computed once.
type MemoCache struct {
	cache *ristretto.Cache
	group singleflight.Group
}

// memoEntry stores the full key material alongside the cached shape so
// a hash collision can never surface a structurally different input's
// output.
type memoEntry struct {
	material string
	shape    Shape
}

// NewMemoCache builds a cache admitting up to maxCost total morph cost.
// Each cached output is weighted by its morph's declared Cost (minimum
// 1, so zero-cost morphs still occupy a slot).
func NewMemoCache(maxCost int64) (*MemoCache, error) {
	if maxCost < 1 {
		return nil, fmt.Errorf("pipeline: memo cache maxCost must be >= 1, got %d", maxCost)
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxCost * 10,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create memo cache: %w", err)
	}
	return &MemoCache{cache: cache}, nil
}

// Wait blocks until buffered writes are visible to Get. Intended for
// tests and shutdown paths; runs never need it.
func (c *MemoCache) Wait() { c.cache.Wait() }

// Close releases the cache's internal goroutines.
func (c *MemoCache) Close() { c.cache.Close() }

// through runs the morph through the cache: on a hit the cached output
// is returned (cloned, so callers cannot corrupt the cache); on a miss
// the transform runs once per key across concurrent callers and the
// output is stored. Shapes that cannot be fingerprinted bypass the
// cache entirely.
func (c *MemoCache) through(ctx context.Context, m *Morph, s Shape, rc RunContext) (Shape, bool, error) {
	material, ok := memoMaterial(m, s, rc)
	if !ok {
		out, err := m.transform(ctx, s, rc)
		return out, false, err
	}
	key := xxhash.Sum64String(material)

	if v, found := c.cache.Get(key); found {
		if e, isEntry := v.(memoEntry); isEntry && e.material == material {
			return e.shape.Clone(), true, nil
		}
	}

	v, err, _ := c.group.Do(material, func() (any, error) {
		out, err := m.transform(ctx, s, rc)
		if err != nil {
			return nil, err
		}
		cost := int64(m.meta.Cost)
		if cost < 1 {
			cost = 1
		}
		c.cache.Set(key, memoEntry{material: material, shape: out.Clone()}, cost)
		return out, nil
	})
	if err != nil {
		return Shape{}, false, err
	}
	return v.(Shape).Clone(), false, nil
}

// memoMaterial derives the canonical key material. encoding/json sorts
// map keys, so structurally equivalent shapes and context subsets
// always encode identically. Unencodable values (handles, funcs) make
// the morph uncacheable for that input.
func memoMaterial(m *Morph, s Shape, rc RunContext) (string, bool) {
	shapeJSON, err := json.Marshal(s)
	if err != nil {
		return "", false
	}
	ctxJSON, err := json.Marshal(rc.subset(m.meta.MemoKeys))
	if err != nil {
		return "", false
	}
	return m.name + "\x00" + string(shapeJSON) + "\x00" + string(ctxJSON), true
}
