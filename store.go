package custos

// KVStore is a simple interface to get/set data.
//
// For simplicity, we require all backing stores to implement this
// interface. They *may* implement other methods as well, but at least
// these are required.
type KVStore interface {
	ReadOnlyKVStore

	// Set sets the key. Panics on nil key.
	Set(key, value []byte)

	// Delete deletes the key. Panics on nil key.
	Delete(key []byte)
}

// ReadOnlyKVStore is the subset of KVStore needed for queries.
type ReadOnlyKVStore interface {
	// Get returns nil iff key doesn't exist. Panics on nil key.
	Get(key []byte) []byte

	// Has checks if a key exists. Panics on nil key.
	Has(key []byte) bool

	// Iterator over a domain of keys in ascending order. End is
	// exclusive. A nil start is interpreted as the smallest key, a
	// nil end as one past the largest key.
	// CONTRACT: no writes may happen within a domain while an
	// iterator exists over it.
	Iterator(start, end []byte) Iterator

	// ReverseIterator over a domain of keys in descending order. End
	// is exclusive.
	ReverseIterator(start, end []byte) Iterator
}

// Model groups a relevant key-value pair, as stored or iterated over.
type Model struct {
	Key   []byte
	Value []byte
}

/*
Iterator allows us to access a set of items within a range of keys.
These may all be preloaded, or loaded on demand.

  var itr Iterator = ...
  defer itr.Close()

  for ; itr.Valid(); itr.Next() {
    k, v := itr.Key(), itr.Value()
    // ...
  }
*/
type Iterator interface {
	// Valid returns whether the current position is valid.
	// Once invalid, an Iterator is forever invalid.
	Valid() bool

	// Next moves the iterator to the next sequential key in the
	// database, as defined by order of iteration.
	// If Valid returns false, this method will panic.
	Next()

	// Key returns the key of the cursor.
	// If Valid returns false, this method will panic.
	// CONTRACT: key readonly []byte
	Key() (key []byte)

	// Value returns the value of the cursor.
	// If Valid returns false, this method will panic.
	// CONTRACT: value readonly []byte
	Value() (value []byte)

	// Close releases the Iterator.
	Close()
}

// CacheableKVStore is a KVStore that supports CacheWrapping.
//
// CacheWrap() should not return a Committer, since Commit() on
// cache-wraps makes no sense.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap allows us to maintain a scratch-pad of uncommitted data
// that we can view with all queries.
//
// At the end, call Write to use the cached data, or Discard to drop
// it. This is the mechanism that gives one instruction all-or-nothing
// semantics: every mutation of a Deliver call lands in a cache wrap
// that is only written through when the handler returns no error.
type KVCacheWrap interface {
	// CacheableKVStore allows us to use this Cache recursively.
	CacheableKVStore

	// Write syncs with the underlying store.
	Write()

	// Discard invalidates this CacheWrap and releases all data.
	Discard()
}

// CommitKVStore is a store that can persist state to disk, load on
// start up, and maintain some history.
type CommitKVStore interface {
	// Get returns the value at last committed state.
	// Returns nil iff key doesn't exist. Panics on nil key.
	Get(key []byte) []byte

	// CacheWrap returns a scratch-pad to perform actions on.
	CacheWrap() KVCacheWrap

	// Commit the next version to disk, and returns info.
	Commit() CommitID

	// LoadLatestVersion loads the latest persisted version. If there
	// was a crash during the last commit, it is guaranteed to return
	// a stable state, even if older.
	LoadLatestVersion() error

	// LatestVersion returns info on the latest version saved to disk.
	LatestVersion() CommitID
}

// CommitID contains the tree version number and its merkle root.
type CommitID struct {
	Version int64
	Hash    []byte
}
