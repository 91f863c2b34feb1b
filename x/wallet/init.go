package wallet

import (
	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
)

// Initializer fulfils the custos.Initializer interface to load initial
// wallets from the genesis file.
type Initializer struct{}

var _ custos.Initializer = (*Initializer)(nil)

// FromGenesis initializes wallets declared under the "wallet" key.
//
//   "wallet": [
//     {
//       "signers": ["C1F0AD...", "57A9F3..."],
//       "threshold": 2,
//       "guardian_mask": 1,
//       "approval_window": "24h"
//     }
//   ]
func (*Initializer) FromGenesis(opts custos.Options, db custos.KVStore) error {
	var wallets []struct {
		Signers        []custos.Address    `json:"signers"`
		Threshold      uint8               `json:"threshold"`
		GuardianMask   uint32              `json:"guardian_mask"`
		ApprovalWindow custos.UnixDuration `json:"approval_window"`
	}
	if err := opts.ReadOptions("wallet", &wallets); err != nil {
		return errors.Wrap(err, "cannot load wallet genesis")
	}
	bucket := NewWalletBucket()
	for i, decl := range wallets {
		w := &Wallet{
			Signers:        decl.Signers,
			Threshold:      decl.Threshold,
			GuardianMask:   decl.GuardianMask,
			ApprovalWindow: decl.ApprovalWindow,
			Version:        1,
		}
		if _, err := bucket.Create(db, w); err != nil {
			return errors.Wrapf(err, "genesis wallet %d", i)
		}
	}
	return nil
}
