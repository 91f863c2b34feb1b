package app

import (
	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
)

// CommitStore handles loading from a CommitKVStore, maintaining
// different CacheWraps for Deliver and Check, and returning useful
// state info.
type CommitStore struct {
	committed custos.CommitKVStore
	deliver   custos.KVCacheWrap
	check     custos.KVCacheWrap
}

// NewCommitStore loads the CommitKVStore from disk or panics. It sets
// up the deliver and check caches.
func NewCommitStore(store custos.CommitKVStore) *CommitStore {
	if err := store.LoadLatestVersion(); err != nil {
		panic(err)
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
		check:     store.CacheWrap(),
	}
}

// CommitInfo returns the current height and hash
func (cs *CommitStore) CommitInfo() custos.CommitID {
	return cs.committed.LatestVersion()
}

// Commit will flush deliver to the underlying store and commit it to
// disk. It then regenerates new deliver/check caches.
func (cs *CommitStore) Commit() custos.CommitID {
	cs.deliver.Write()
	cs.check.Discard()

	res := cs.committed.Commit()

	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
	return res
}

// CheckStore returns a store implementation that must be used during
// the checking phase.
func (cs *CommitStore) CheckStore() custos.CacheableKVStore {
	return cs.check
}

// DeliverStore returns a store implementation that must be used during
// the delivery phase.
func (cs *CommitStore) DeliverStore() custos.CacheableKVStore {
	return cs.deliver
}

// QueryStore returns a fresh read-only view over the committed state.
func (cs *CommitStore) QueryStore() custos.ReadOnlyKVStore {
	return cs.committed.CacheWrap()
}

//------- storing chainID ---------

// _cs: is a prefix for internal data
const chainIDKey = "_cs:chainID"

// loadChainID returns the chain id stored if any
func loadChainID(kv custos.KVStore) string {
	v := kv.Get([]byte(chainIDKey))
	return string(v)
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv custos.KVStore, chainID string) error {
	if !custos.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	if kv.Has(k) {
		return errors.Wrap(errors.ErrImmutable, "chain id already set")
	}
	kv.Set(k, []byte(chainID))
	return nil
}
