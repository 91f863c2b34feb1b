package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreBasics(t *testing.T) {
	db := MemStore()

	k, v := []byte("hello"), []byte("world")
	assert.Nil(t, db.Get(k))
	assert.False(t, db.Has(k))

	db.Set(k, v)
	assert.Equal(t, v, db.Get(k))
	assert.True(t, db.Has(k))

	db.Delete(k)
	assert.Nil(t, db.Get(k))
	assert.False(t, db.Has(k))
}

func TestCacheWrapWriteAndDiscard(t *testing.T) {
	db := MemStore()
	db.Set([]byte("base"), []byte("1"))

	t.Run("discard drops writes", func(t *testing.T) {
		cache := db.CacheWrap()
		cache.Set([]byte("extra"), []byte("2"))
		cache.Delete([]byte("base"))

		assert.Equal(t, []byte("2"), cache.Get([]byte("extra")))
		assert.Nil(t, cache.Get([]byte("base")))

		cache.Discard()
		assert.Nil(t, db.Get([]byte("extra")))
		assert.Equal(t, []byte("1"), db.Get([]byte("base")))
	})

	t.Run("write applies changes", func(t *testing.T) {
		cache := db.CacheWrap()
		cache.Set([]byte("extra"), []byte("2"))
		cache.Delete([]byte("base"))
		cache.Write()

		assert.Equal(t, []byte("2"), db.Get([]byte("extra")))
		assert.Nil(t, db.Get([]byte("base")))
	})
}

func TestCacheWrapShadowsBacking(t *testing.T) {
	db := MemStore()
	db.Set([]byte("a"), []byte("old"))

	cache := db.CacheWrap()
	cache.Set([]byte("a"), []byte("new"))
	assert.Equal(t, []byte("new"), cache.Get([]byte("a")))

	// a delete in the cache hides the backing value
	cache.Delete([]byte("a"))
	assert.Nil(t, cache.Get([]byte("a")))
	assert.False(t, cache.Has([]byte("a")))
	assert.Equal(t, []byte("old"), db.Get([]byte("a")))
}

func TestIteratorMergesCacheAndBacking(t *testing.T) {
	db := MemStore()
	db.Set([]byte("a"), []byte("1"))
	db.Set([]byte("c"), []byte("3"))

	cache := db.CacheWrap()
	cache.Set([]byte("b"), []byte("2"))
	cache.Delete([]byte("c"))
	cache.Set([]byte("d"), []byte("4"))

	var keys []string
	it := cache.Iterator(nil, nil)
	for ; it.Valid(); it.Next() {
		keys = append(keys, string(it.Key()))
	}
	it.Close()
	assert.Equal(t, []string{"a", "b", "d"}, keys)
}

func TestIteratorRange(t *testing.T) {
	db := MemStore()
	for _, k := range []string{"a", "b", "c", "d"} {
		db.Set([]byte(k), []byte{1})
	}

	var keys []string
	it := db.Iterator([]byte("b"), []byte("d"))
	for ; it.Valid(); it.Next() {
		keys = append(keys, string(it.Key()))
	}
	it.Close()
	// start inclusive, end exclusive
	assert.Equal(t, []string{"b", "c"}, keys)
}

func TestReverseIterator(t *testing.T) {
	db := MemStore()
	for _, k := range []string{"a", "b", "c"} {
		db.Set([]byte(k), []byte{1})
	}

	var keys []string
	it := db.ReverseIterator(nil, nil)
	for ; it.Valid(); it.Next() {
		keys = append(keys, string(it.Key()))
	}
	it.Close()
	require.Equal(t, []string{"c", "b", "a"}, keys)
}
