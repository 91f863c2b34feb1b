package wallet

import (
	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
	"github.com/custodia-one/custos/orm"
)

// WalletBucket stores wallet records keyed by an 8 byte sequence id.
type WalletBucket struct {
	orm.Bucket
	idSeq orm.Sequence
}

// NewWalletBucket initializes a WalletBucket.
func NewWalletBucket() WalletBucket {
	b := orm.NewBucket("wallet", orm.NewSimpleObj(nil, &Wallet{}))
	return WalletBucket{
		Bucket: b,
		idSeq:  b.Sequence("id"),
	}
}

// Create persists a new wallet under the next sequence id and returns
// the id.
func (b WalletBucket) Create(db custos.KVStore, w *Wallet) ([]byte, error) {
	id := b.idSeq.NextVal(db)
	obj := orm.NewSimpleObj(id, w)
	if err := b.Bucket.Save(db, obj); err != nil {
		return nil, err
	}
	return id, nil
}

// Save persists an existing wallet under its id.
func (b WalletBucket) Save(db custos.KVStore, id []byte, w *Wallet) error {
	return b.Bucket.Save(db, orm.NewSimpleObj(id, w))
}

// GetWallet loads the wallet with the given id, or ErrNotFound.
func (b WalletBucket) GetWallet(db custos.ReadOnlyKVStore, id []byte) (*Wallet, error) {
	obj, err := b.Bucket.Get(db, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "wallet %X", id)
	}
	w, ok := obj.Value().(*Wallet)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", obj.Value())
	}
	return w, nil
}

// AccountBucket stores balance account records keyed by wallet id
// plus the account guid hash.
type AccountBucket struct {
	orm.Bucket
}

// NewAccountBucket initializes an AccountBucket.
func NewAccountBucket() AccountBucket {
	return AccountBucket{
		Bucket: orm.NewBucket("acct", orm.NewSimpleObj(nil, &BalanceAccount{})),
	}
}

// AccountKey builds the composite key of a balance account.
func AccountKey(walletID, guidHash []byte) []byte {
	key := make([]byte, 0, len(walletID)+len(guidHash))
	key = append(key, walletID...)
	return append(key, guidHash...)
}

// Save persists a balance account under its wallet.
func (b AccountBucket) Save(db custos.KVStore, walletID []byte, a *BalanceAccount) error {
	return b.Bucket.Save(db, orm.NewSimpleObj(AccountKey(walletID, a.GUIDHash), a))
}

// GetAccount loads a balance account, or ErrNotFound.
func (b AccountBucket) GetAccount(db custos.ReadOnlyKVStore, walletID, guidHash []byte) (*BalanceAccount, error) {
	obj, err := b.Bucket.Get(db, AccountKey(walletID, guidHash))
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "balance account %X", guidHash)
	}
	a, ok := obj.Value().(*BalanceAccount)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", obj.Value())
	}
	return a, nil
}

// Has returns true if a balance account exists.
func (b AccountBucket) Has(db custos.ReadOnlyKVStore, walletID, guidHash []byte) (bool, error) {
	obj, err := b.Bucket.Get(db, AccountKey(walletID, guidHash))
	if err != nil {
		return false, err
	}
	return obj != nil, nil
}

// BookBucket stores the dapp book of each wallet, keyed by wallet id.
type BookBucket struct {
	orm.Bucket
}

// NewBookBucket initializes a BookBucket.
func NewBookBucket() BookBucket {
	return BookBucket{
		Bucket: orm.NewBucket("dappbook", orm.NewSimpleObj(nil, &DAppBook{})),
	}
}

// Save persists the dapp book of a wallet.
func (b BookBucket) Save(db custos.KVStore, walletID []byte, book *DAppBook) error {
	return b.Bucket.Save(db, orm.NewSimpleObj(walletID, book))
}

// GetBook loads the dapp book of a wallet. A wallet without a stored
// book has an empty one.
func (b BookBucket) GetBook(db custos.ReadOnlyKVStore, walletID []byte) (*DAppBook, error) {
	obj, err := b.Bucket.Get(db, walletID)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return &DAppBook{}, nil
	}
	book, ok := obj.Value().(*DAppBook)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", obj.Value())
	}
	return book, nil
}

// OpBucket stores pending operations keyed by an 8 byte sequence id.
type OpBucket struct {
	orm.Bucket
	idSeq orm.Sequence
}

// NewOpBucket initializes an OpBucket.
func NewOpBucket() OpBucket {
	b := orm.NewBucket("pendop", orm.NewSimpleObj(nil, &PendingOp{}))
	return OpBucket{
		Bucket: b,
		idSeq:  b.Sequence("id"),
	}
}

// Create persists a new pending operation under the next sequence id
// and returns the id.
func (b OpBucket) Create(db custos.KVStore, op *PendingOp) ([]byte, error) {
	id := b.idSeq.NextVal(db)
	if err := b.Bucket.Save(db, orm.NewSimpleObj(id, op)); err != nil {
		return nil, err
	}
	return id, nil
}

// Save persists an existing operation under its id.
func (b OpBucket) Save(db custos.KVStore, id []byte, op *PendingOp) error {
	return b.Bucket.Save(db, orm.NewSimpleObj(id, op))
}

// GetOp loads the pending operation with the given id, or
// ErrNotFound. Finalized operations are deleted, so a missing id
// means the operation does not exist anymore.
func (b OpBucket) GetOp(db custos.ReadOnlyKVStore, id []byte) (*PendingOp, error) {
	obj, err := b.Bucket.Get(db, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "operation %X", id)
	}
	op, ok := obj.Value().(*PendingOp)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", obj.Value())
	}
	return op, nil
}
