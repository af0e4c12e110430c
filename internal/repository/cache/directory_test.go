package cache

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStores struct {
	calls  int
	stores map[string]attendance.Store
}

func (c *countingStores) GetByID(_ context.Context, id string) (attendance.Store, error) {
	c.calls++
	s, ok := c.stores[id]
	if !ok {
		return attendance.Store{}, attendance.ErrStoreNotFound
	}
	return s, nil
}

type countingEmployees struct {
	calls int
}

func (c *countingEmployees) GetByID(_ context.Context, id string) (attendance.Employee, error) {
	c.calls++
	return attendance.Employee{ID: id, StoreID: "s1"}, nil
}

func TestStoreDirectory_CachesHits(t *testing.T) {
	c, err := New(100, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	next := &countingStores{stores: map[string]attendance.Store{"s1": {ID: "s1", Name: "Main"}}}
	dir := NewStoreDirectory(next, c)
	ctx := context.Background()

	s, err := dir.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Main", s.Name)
	c.Wait()

	s, err = dir.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Main", s.Name)
	assert.Equal(t, 1, next.calls)

	c.InvalidateStore("s1")
	_, err = dir.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestStoreDirectory_DoesNotCacheMisses(t *testing.T) {
	c, err := New(100, 0)
	require.NoError(t, err)
	defer c.Close()

	next := &countingStores{stores: map[string]attendance.Store{}}
	dir := NewStoreDirectory(next, c)

	for i := 0; i < 2; i++ {
		_, err := dir.GetByID(context.Background(), "nope")
		assert.ErrorIs(t, err, attendance.ErrStoreNotFound)
		c.Wait()
	}
	assert.Equal(t, 2, next.calls)
}

func TestEmployeeDirectory_CachesHits(t *testing.T) {
	c, err := New(100, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	next := &countingEmployees{}
	dir := NewEmployeeDirectory(next, c)
	ctx := context.Background()

	_, err = dir.GetByID(ctx, "e1")
	require.NoError(t, err)
	c.Wait()
	emp, err := dir.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "s1", emp.StoreID)
	assert.Equal(t, 1, next.calls)
}
