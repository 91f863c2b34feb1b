// Package ledger keeps the funds held by on chain addresses. It backs
// the wallet extension with the fund moving primitive that finalized
// transfer operations call into.
package ledger

import (
	"encoding/binary"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
	"github.com/custodia-one/custos/orm"
)

const (
	recBalance   byte = 1
	schemaV1     byte = 1
	balanceSize       = 2 + 8
)

// Balance is the amount of one asset held by one address. The address
// and the asset are part of the record key, not the record itself.
type Balance struct {
	Amount uint64
}

var _ orm.CloneableData = (*Balance)(nil)

// Validate implements x.Validater.
func (b *Balance) Validate() error {
	return nil
}

// Copy produces an independent copy.
func (b *Balance) Copy() orm.CloneableData {
	return &Balance{Amount: b.Amount}
}

// Marshal implements custos.Persistent.
func (b *Balance) Marshal() ([]byte, error) {
	raw := make([]byte, balanceSize)
	raw[0] = recBalance
	raw[1] = schemaV1
	binary.BigEndian.PutUint64(raw[2:], b.Amount)
	return raw, nil
}

// Unmarshal implements custos.Persistent.
func (b *Balance) Unmarshal(raw []byte) error {
	if len(raw) != balanceSize {
		return errors.Wrapf(errors.ErrSchema, "record size %d, want %d", len(raw), balanceSize)
	}
	if raw[0] != recBalance {
		return errors.Wrapf(errors.ErrSchema, "record discriminant %d, want %d", raw[0], recBalance)
	}
	if raw[1] != schemaV1 {
		return errors.Wrapf(errors.ErrSchema, "schema version %d", raw[1])
	}
	b.Amount = binary.BigEndian.Uint64(raw[2:])
	return nil
}

// BalanceBucket stores balances keyed by holder address plus asset.
type BalanceBucket struct {
	orm.Bucket
}

// NewBalanceBucket initializes a BalanceBucket.
func NewBalanceBucket() BalanceBucket {
	return BalanceBucket{
		Bucket: orm.NewBucket("balance", orm.NewSimpleObj(nil, &Balance{})),
	}
}

// BalanceKey builds the composite key of a balance record.
func BalanceKey(addr custos.Address, assetKey []byte) []byte {
	key := make([]byte, 0, len(addr)+len(assetKey))
	key = append(key, addr...)
	return append(key, assetKey...)
}

// GetBalance loads a balance record. A missing record is a zero
// balance, not an error.
func (b BalanceBucket) GetBalance(db custos.ReadOnlyKVStore, addr custos.Address, assetKey []byte) (*Balance, error) {
	obj, err := b.Bucket.Get(db, BalanceKey(addr, assetKey))
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return &Balance{}, nil
	}
	bal, ok := obj.Value().(*Balance)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", obj.Value())
	}
	return bal, nil
}

// Save persists a balance record. A zero balance deletes the record
// instead.
func (b BalanceBucket) Save(db custos.KVStore, addr custos.Address, assetKey []byte, bal *Balance) error {
	if bal.Amount == 0 {
		return b.Bucket.Delete(db, BalanceKey(addr, assetKey))
	}
	return b.Bucket.Save(db, orm.NewSimpleObj(BalanceKey(addr, assetKey), bal))
}
