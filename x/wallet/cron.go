package wallet

import (
	"github.com/tendermint/tendermint/libs/common"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
)

// Reaper walks the pending operation bucket at the beginning of every
// block and drops operations whose deadline passed, releasing any
// config lock they held. Signers may still reap explicitly, the ticker
// only makes sure garbage does not pile up.
type Reaper struct {
	wallets WalletBucket
	ops     OpBucket
}

var _ custos.Ticker = (*Reaper)(nil)

// NewReaper initializes a Reaper.
func NewReaper() *Reaper {
	return &Reaper{
		wallets: NewWalletBucket(),
		ops:     NewOpBucket(),
	}
}

// Tick implements custos.Ticker.
func (r *Reaper) Tick(ctx custos.Context, store custos.CacheableKVStore) custos.TickResult {
	var res custos.TickResult
	blockTime, ok := custos.BlockTime(ctx)
	if !ok {
		return res
	}
	now := custos.AsUnixTime(blockTime)
	logger := custos.GetLogger(ctx)

	expired, err := r.expired(store, now)
	if err != nil {
		logger.Error("cannot scan pending operations", "err", err)
		return res
	}

	for _, id := range expired {
		if err := r.reap(store, id); err != nil {
			logger.Error("cannot reap operation", "op", custos.Address(id).String(), "err", err)
			continue
		}
		res.Tags = append(res.Tags, common.KVPair{
			Key:   []byte("wallet:reaped"),
			Value: id,
		})
	}
	return res
}

// expired collects the ids of all pending operations past their
// deadline. Collect first, mutate later, the store forbids writes
// under an open iterator.
func (r *Reaper) expired(db custos.ReadOnlyKVStore, now custos.UnixTime) ([][]byte, error) {
	prefix := r.ops.DBKey(nil)
	end := make([]byte, len(prefix))
	copy(end, prefix)
	end[len(end)-1]++

	var ids [][]byte
	it := db.Iterator(prefix, end)
	defer it.Close()
	for ; it.Valid(); it.Next() {
		var op PendingOp
		if err := op.Unmarshal(it.Value()); err != nil {
			return nil, errors.Wrap(err, "corrupted operation record")
		}
		if !WithinWindow(now, op.Deadline) {
			id := append([]byte(nil), it.Key()[len(prefix):]...)
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// reap drops one expired operation and releases the config lock if it
// was the pending config update.
func (r *Reaper) reap(db custos.KVStore, id []byte) error {
	op, err := r.ops.GetOp(db, id)
	if err != nil {
		return err
	}
	if err := r.ops.Delete(db, id); err != nil {
		return err
	}
	if op.Kind != KindConfigUpdate {
		return nil
	}
	w, err := r.wallets.GetWallet(db, op.WalletID)
	if err != nil {
		return err
	}
	if w.ConfigLocked {
		w.ConfigLocked = false
		return r.wallets.Save(db, op.WalletID, w)
	}
	return nil
}
