package kv

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_GetSet(t *testing.T) {
	s := New[string, int]()

	s.Set("foo", 42)
	val, ok := s.Get("foo")
	assert.True(t, ok)
	assert.Equal(t, 42, val)

	_, ok = s.Get("bar")
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	s := New[string, string]()
	s.Set("key", "value")

	s.Delete("key")
	s.Delete("missing")

	_, ok := s.Get("key")
	assert.False(t, ok)
	assert.Empty(t, s.Keys())
}

func TestStore_SetBatch(t *testing.T) {
	s := New[string, int]()

	s.SetBatch([]string{"c", "a", "b", "missing"}, map[string]int{
		"a": 1,
		"b": 2,
		"c": 3,
	})

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"c", "a", "b"}, s.Keys())

	val, _ := s.Get("b")
	assert.Equal(t, 2, val)
}

func TestStore_Clear(t *testing.T) {
	s := New[string, int]()
	s.Set("a", 1)
	s.Set("b", 2)

	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Keys())
}

func TestStore_KeysKeepInsertionOrder(t *testing.T) {
	s := New[string, int]()
	s.Set("b", 1)
	s.Set("a", 2)
	s.Set("c", 3)
	s.Set("b", 4) // overwrite keeps position
	s.Delete("a")
	s.Set("a", 5)

	assert.Equal(t, []string{"b", "c", "a"}, s.Keys())

	v, _ := s.Get("b")
	assert.Equal(t, 4, v)
}

func TestStore_Range(t *testing.T) {
	s := New[string, int]()
	s.Set("x", 1)
	s.Set("y", 2)
	s.Set("z", 3)

	var seen []string
	s.Range(func(k string, v int) bool {
		seen = append(seen, k)
		return k != "y"
	})
	assert.Equal(t, []string{"x", "y"}, seen)

	// fn may write back into the store
	s.Range(func(k string, v int) bool {
		s.Set(k, v*10)
		return true
	})
	v, _ := s.Get("z")
	assert.Equal(t, 30, v)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New[int, int]()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Set(n, n*2)
		}(i)
	}

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Get(n)
		}(i)
	}

	wg.Wait()

	assert.Equal(t, 100, s.Len())
	assert.Len(t, s.Keys(), 100)
}
