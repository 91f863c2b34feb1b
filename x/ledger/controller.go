package ledger

import (
	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
	"github.com/custodia-one/custos/x/wallet"
)

// Controller moves funds between addresses. It implements
// wallet.Mover.
type Controller struct {
	bucket BalanceBucket
}

var _ wallet.Mover = Controller{}

// NewController initializes a Controller.
func NewController() Controller {
	return Controller{bucket: NewBalanceBucket()}
}

// Balance returns the amount of the asset held by the address. A
// missing record is a zero balance.
func (c Controller) Balance(db custos.ReadOnlyKVStore, addr custos.Address, asset wallet.Asset) (uint64, error) {
	bal, err := c.bucket.GetBalance(db, addr, asset.Key())
	if err != nil {
		return 0, err
	}
	return bal.Amount, nil
}

// Deposit credits the address with the given amount. Used by genesis
// and by host runtime fund injection.
func (c Controller) Deposit(db custos.KVStore, addr custos.Address, asset wallet.Asset, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero amount")
	}
	key := asset.Key()
	bal, err := c.bucket.GetBalance(db, addr, key)
	if err != nil {
		return err
	}
	if bal.Amount+amount < bal.Amount {
		return errors.Wrap(errors.ErrOverflow, "balance")
	}
	bal.Amount += amount
	return c.bucket.Save(db, addr, key, bal)
}

// Move implements wallet.Mover. It debits src and credits dest
// atomically within the caller's cache wrap.
func (c Controller) Move(db custos.KVStore, src, dest custos.Address, asset wallet.Asset, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero amount")
	}
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if src.Equals(dest) {
		return errors.Wrap(errors.ErrInput, "source and destination are the same")
	}
	key := asset.Key()
	from, err := c.bucket.GetBalance(db, src, key)
	if err != nil {
		return err
	}
	if from.Amount < amount {
		return errors.Wrapf(errors.ErrAmount, "insufficient funds: have %d, want %d", from.Amount, amount)
	}
	to, err := c.bucket.GetBalance(db, dest, key)
	if err != nil {
		return err
	}
	if to.Amount+amount < to.Amount {
		return errors.Wrap(errors.ErrOverflow, "destination balance")
	}
	from.Amount -= amount
	to.Amount += amount
	if err := c.bucket.Save(db, src, key, from); err != nil {
		return err
	}
	return c.bucket.Save(db, dest, key, to)
}

// RegisterQuery installs the balance bucket on the query router.
func RegisterQuery(qr custos.QueryRouter) {
	NewBalanceBucket().Register("balances", qr)
}
