package store

import "github.com/custodia-one/custos"

// Move references for all storage types into this package
// for shorter names everywhere.

type KVStore = custos.KVStore
type ReadOnlyKVStore = custos.ReadOnlyKVStore
type Iterator = custos.Iterator
type CacheableKVStore = custos.CacheableKVStore
type KVCacheWrap = custos.KVCacheWrap
type CommitKVStore = custos.CommitKVStore
type CommitID = custos.CommitID
type Model = custos.Model

// SetDeleter is the write-only part of a KVStore.
type SetDeleter interface {
	Set(key, value []byte)
	Delete(key []byte)
}

// Batch can write multiple ops to a store, to be applied in one shot
// with Write.
type Batch interface {
	SetDeleter
	Write()
}
