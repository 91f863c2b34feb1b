package ledger

import (
	"encoding/hex"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
	"github.com/custodia-one/custos/x/wallet"
)

// Initializer fulfils the custos.Initializer interface to load initial
// balances from the genesis file.
type Initializer struct{}

var _ custos.Initializer = (*Initializer)(nil)

// FromGenesis credits addresses declared under the "ledger" key.
//
//   "ledger": [
//     {"address": "C1F0AD...", "amount": 50000},
//     {"address": "57A9F3...", "mint": "A4...", "amount": 1200}
//   ]
//
// An entry without a mint credits the native asset.
func (*Initializer) FromGenesis(opts custos.Options, db custos.KVStore) error {
	var balances []struct {
		Address custos.Address `json:"address"`
		Mint    string         `json:"mint"`
		Amount  uint64         `json:"amount"`
	}
	if err := opts.ReadOptions("ledger", &balances); err != nil {
		return errors.Wrap(err, "cannot load ledger genesis")
	}
	ctrl := NewController()
	for i, decl := range balances {
		asset := wallet.Asset{Type: wallet.AssetNative, Mint: make([]byte, wallet.HashSize)}
		if decl.Mint != "" {
			mint, err := hex.DecodeString(decl.Mint)
			if err != nil {
				return errors.Wrapf(errors.ErrInput, "genesis balance %d mint", i)
			}
			asset = wallet.Asset{Type: wallet.AssetToken, Mint: mint}
		}
		if err := ctrl.Deposit(db, decl.Address, asset, decl.Amount); err != nil {
			return errors.Wrapf(err, "genesis balance %d", i)
		}
	}
	return nil
}
