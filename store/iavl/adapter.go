// Package iavl wraps an immutable merkle tree as the commit store of
// the application. Every Commit persists a new version of the tree to
// disk and returns its root hash.
package iavl

import (
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"

	"github.com/custodia-one/custos/store"
)

// default number of nodes kept in memory cache
const cacheSize = 10000

// CommitStore manages an iavl committed state.
type CommitStore struct {
	tree *iavl.MutableTree
}

var _ store.CommitKVStore = (*CommitStore)(nil)

// NewCommitStore creates a new store with disk backing under the
// given directory.
func NewCommitStore(dir, name string) *CommitStore {
	db := dbm.NewDB(name, dbm.GoLevelDBBackend, dir)
	tree := iavl.NewMutableTree(db, cacheSize)
	return &CommitStore{tree: tree}
}

// MockCommitStore returns a commit store without disk backing, to be
// used in tests.
func MockCommitStore() *CommitStore {
	db := dbm.NewMemDB()
	tree := iavl.NewMutableTree(db, cacheSize)
	return &CommitStore{tree: tree}
}

// Get returns the value from the working tree.
// Returns nil iff key doesn't exist. Panics on nil key.
func (s *CommitStore) Get(key []byte) []byte {
	_, value := s.tree.Get(key)
	return value
}

// Commit saves the next version to disk, and returns info.
func (s *CommitStore) Commit() store.CommitID {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		panic(err)
	}
	return store.CommitID{
		Version: version,
		Hash:    hash,
	}
}

// LoadLatestVersion loads the latest persisted version. If there was
// a crash during the last commit, it is guaranteed to return a stable
// state, even if older.
func (s *CommitStore) LoadLatestVersion() error {
	_, err := s.tree.Load()
	return err
}

// LatestVersion returns info on the latest version saved to disk.
func (s *CommitStore) LatestVersion() store.CommitID {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}
}

// CacheWrap gives us a savepoint to perform actions on. The returned
// wrap buffers all writes in a btree and only applies them to the
// working tree on Write.
func (s *CommitStore) CacheWrap() store.KVCacheWrap {
	reader := treeReader{tree: s.tree}
	batch := store.NewNonAtomicBatch(treeWriter{tree: s.tree})
	return store.NewBTreeCacheWrap(reader, batch, nil)
}

// treeReader adapts the read methods of the working tree to the
// ReadOnlyKVStore interface.
type treeReader struct {
	tree *iavl.MutableTree
}

var _ store.ReadOnlyKVStore = treeReader{}

func (r treeReader) Get(key []byte) []byte {
	_, value := r.tree.Get(key)
	return value
}

func (r treeReader) Has(key []byte) bool {
	return r.tree.Has(key)
}

func (r treeReader) Iterator(start, end []byte) store.Iterator {
	var res []store.Model
	add := func(key []byte, value []byte) bool {
		res = append(res, store.Model{Key: key, Value: value})
		return false
	}
	r.tree.IterateRange(start, end, true, add)
	return store.NewSliceIterator(res)
}

func (r treeReader) ReverseIterator(start, end []byte) store.Iterator {
	var res []store.Model
	add := func(key []byte, value []byte) bool {
		res = append(res, store.Model{Key: key, Value: value})
		return false
	}
	r.tree.IterateRange(start, end, false, add)
	return store.NewSliceIterator(res)
}

// treeWriter adapts the write methods of the working tree to the
// SetDeleter interface consumed by a batch.
type treeWriter struct {
	tree *iavl.MutableTree
}

var _ store.SetDeleter = treeWriter{}

func (w treeWriter) Set(key, value []byte) {
	w.tree.Set(key, value)
}

func (w treeWriter) Delete(key []byte) {
	w.tree.Remove(key)
}
