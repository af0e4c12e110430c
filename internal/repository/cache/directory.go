// Package cache keeps hot reference data in memory in front of the
// PostgreSQL directories. Store and employee rows change rarely and every
// check-in reads both.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/dgraph-io/ristretto"
)

const (
	storePrefix    = "store:"
	employeePrefix = "employee:"
)

// Cache is a TTL cache shared by the directory decorators.
type Cache struct {
	c   *ristretto.Cache
	ttl time.Duration
}

func New(maxEntries int64, ttl time.Duration) (*Cache, error) {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
		// cost counts entries, not bytes
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create directory cache: %w", err)
	}
	return &Cache{c: c, ttl: ttl}, nil
}

func (c *Cache) get(key string) (interface{}, bool) {
	return c.c.Get(key)
}

func (c *Cache) set(key string, v interface{}) {
	if c.ttl > 0 {
		c.c.SetWithTTL(key, v, 1, c.ttl)
		return
	}
	c.c.Set(key, v, 1)
}

// Wait blocks until pending writes are visible to Get.
func (c *Cache) Wait() {
	c.c.Wait()
}

// InvalidateStore drops a cached store, e.g. after its geofence moved.
func (c *Cache) InvalidateStore(id string) {
	c.c.Del(storePrefix + id)
}

func (c *Cache) Close() {
	c.c.Close()
}

type storeDirectory struct {
	next  attendance.StoreDirectory
	cache *Cache
}

// NewStoreDirectory caches successful lookups of next. Misses and errors are not cached.
func NewStoreDirectory(next attendance.StoreDirectory, cache *Cache) attendance.StoreDirectory {
	return &storeDirectory{next: next, cache: cache}
}

func (d *storeDirectory) GetByID(ctx context.Context, id string) (attendance.Store, error) {
	if v, ok := d.cache.get(storePrefix + id); ok {
		if s, ok := v.(attendance.Store); ok {
			return s, nil
		}
	}
	s, err := d.next.GetByID(ctx, id)
	if err != nil {
		return attendance.Store{}, err
	}
	d.cache.set(storePrefix+id, s)
	return s, nil
}

type employeeDirectory struct {
	next  attendance.EmployeeDirectory
	cache *Cache
}

func NewEmployeeDirectory(next attendance.EmployeeDirectory, cache *Cache) attendance.EmployeeDirectory {
	return &employeeDirectory{next: next, cache: cache}
}

func (d *employeeDirectory) GetByID(ctx context.Context, id string) (attendance.Employee, error) {
	if v, ok := d.cache.get(employeePrefix + id); ok {
		if e, ok := v.(attendance.Employee); ok {
			return e, nil
		}
	}
	e, err := d.next.GetByID(ctx, id)
	if err != nil {
		return attendance.Employee{}, err
	}
	d.cache.set(employeePrefix+id, e)
	return e, nil
}
