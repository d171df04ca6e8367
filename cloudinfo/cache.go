// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cloudinfo

import (
	"context"
	"log/slog"
	"sync"

	"github.com/storagebench/perfreport/internal/lookupdb"
	"golang.org/x/sync/singleflight"
)

// A Cache memoizes lookups by (kind, key). It is safe for concurrent
// use. The first value stored for a key is kept.
//
// If DB is set, values are also read from and written to it, so they
// survive the process.
type Cache struct {
	DB     *lookupdb.DB
	Logger *slog.Logger

	mu     sync.Mutex
	values map[cacheKey]string
	group  singleflight.Group
}

type cacheKey struct {
	kind, key string
}

// NewCache returns an empty Cache backed by db, which may be nil.
func NewCache(db *lookupdb.DB, logger *slog.Logger) *Cache {
	return &Cache{DB: db, Logger: logger}
}

func (c *Cache) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Get returns the value cached for (kind, key).
func (c *Cache) Get(ctx context.Context, kind, key string) (string, bool) {
	c.mu.Lock()
	v, ok := c.values[cacheKey{kind, key}]
	c.mu.Unlock()
	if ok || c.DB == nil {
		return v, ok
	}
	v, ok, err := c.DB.Get(ctx, kind, key)
	if err != nil {
		c.logger().WarnContext(ctx, "reading lookup cache", "kind", kind, "key", key, "err", err)
		return "", false
	}
	if ok {
		c.remember(kind, key, v)
	}
	return v, ok
}

// Put caches value for (kind, key) unless a value is already cached,
// and returns the cached value.
func (c *Cache) Put(ctx context.Context, kind, key, value string) string {
	value, added := c.remember(kind, key, value)
	if added && c.DB != nil {
		if err := c.DB.Put(ctx, kind, key, value); err != nil {
			c.logger().WarnContext(ctx, "writing lookup cache", "kind", kind, "key", key, "err", err)
		}
	}
	return value
}

func (c *Cache) remember(kind, key, value string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := cacheKey{kind, key}
	if v, ok := c.values[k]; ok {
		return v, false
	}
	if c.values == nil {
		c.values = make(map[cacheKey]string)
	}
	c.values[k] = value
	return value, true
}

// Do returns the cached value for (kind, key), calling lookup to
// compute it on a miss. Concurrent calls for the same key share one
// call to lookup.
func (c *Cache) Do(ctx context.Context, kind, key string, lookup func() string) string {
	if v, ok := c.Get(ctx, kind, key); ok {
		return v
	}
	v, _, _ := c.group.Do(kind+"\x00"+key, func() (any, error) {
		if v, ok := c.Get(ctx, kind, key); ok {
			return v, nil
		}
		return c.Put(ctx, kind, key, lookup()), nil
	})
	return v.(string)
}
