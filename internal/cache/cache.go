// Package cache memoizes a window's raw result set so the remote datastore
// is queried at most once per window. Storage is pluggable; deleting the
// backing entry is the only invalidation path.
package cache

import (
	"context"
	"log"

	"github.com/stadslucht/pm25-extract/internal/airdata"
)

// Store is the contract a cache backend must satisfy. Get reports a miss
// with ok == false; errors are reserved for broken backends.
type Store interface {
	Get(ctx context.Context, key string) (records []airdata.RawRecord, ok bool, err error)
	Put(ctx context.Context, key string, records []airdata.RawRecord) error
}

// FetchFunc produces a window's raw result set on a cache miss.
type FetchFunc func(ctx context.Context, w airdata.Window) ([]airdata.RawRecord, error)

// Key derives a window's cache key from its literal bound strings.
// Equivalent-but-differently-formatted dates yield distinct keys on purpose.
func Key(w airdata.Window) string {
	return "api_cache_" + w.Start + "_to_" + w.End
}

// Cache resolves windows against a Store, falling back to a fetch function.
type Cache struct {
	store Store
}

// New wraps a Store.
func New(store Store) *Cache {
	return &Cache{store: store}
}

// Resolve returns the cached result set for w if one exists, never invoking
// fetch. Otherwise it invokes fetch and persists whatever comes back —
// empty and partial sets included — before returning it along with fetch's
// error, so the caller can keep partial data while still seeing the failure.
// A broken cache read falls through to a fetch rather than failing the
// window.
func (c *Cache) Resolve(ctx context.Context, w airdata.Window, fetch FetchFunc) ([]airdata.RawRecord, error) {
	key := Key(w)

	records, ok, err := c.store.Get(ctx, key)
	if err != nil {
		log.Printf("cache: read %s failed: %v", key, err)
	} else if ok {
		log.Printf("cache: hit for %s (%d records)", key, len(records))
		return records, nil
	}

	records, fetchErr := fetch(ctx, w)
	if err := c.store.Put(ctx, key, records); err != nil {
		log.Printf("cache: write %s failed: %v", key, err)
	}
	return records, fetchErr
}
