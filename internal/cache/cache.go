// Package cache is the advisory snapshot store for hot reads. It is never
// load-bearing: a nil *Cache is valid and every method on it is a no-op, so
// callers fall through to the relational store.
package cache

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Collection keys, one per cached read. Writes invalidate by table via
// TableKeys; there is no partial invalidation.
const (
	KeyCarBrands     = "car_brands:all"
	KeyCarModels     = "car_models:all"
	KeyProductBrands = "product_brands:all"
	KeyCategories    = "categories:all"
	KeyCategoryTree  = "categories:tree"
	productPrefix    = "products:detail:"
)

func ProductKey(id string) string {
	return productPrefix + id
}

// TableKeys maps a syncable table to every collection key a write to it must
// drop. Products have no collection key; their detail keys are swept by
// prefix.
var TableKeys = map[string][]string{
	"car_brands":     {KeyCarBrands},
	"car_models":     {KeyCarModels},
	"product_brands": {KeyProductBrands},
	"categories":     {KeyCategories, KeyCategoryTree},
	"products":       nil,
}

// Cache holds marshaled JSON snapshots with a TTL bound, so even a missed
// invalidation heals itself.
type Cache struct {
	lru *expirable.LRU[string, []byte]
}

func New(size int, ttl time.Duration) *Cache {
	return &Cache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

func (c *Cache) Set(key string, snapshot []byte) {
	if c == nil {
		return
	}
	c.lru.Add(key, snapshot)
}

// InvalidateTable drops every collection key for the table; for products it
// also sweeps all detail keys. Correctness over hit rate.
func (c *Cache) InvalidateTable(table string) {
	if c == nil {
		return
	}
	for _, key := range TableKeys[table] {
		c.lru.Remove(key)
	}
	if table == "products" {
		for _, key := range c.lru.Keys() {
			if strings.HasPrefix(key, productPrefix) {
				c.lru.Remove(key)
			}
		}
	}
}

func (c *Cache) Invalidate(key string) {
	if c == nil {
		return
	}
	c.lru.Remove(key)
}
