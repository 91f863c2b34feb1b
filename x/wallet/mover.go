package wallet

import (
	"github.com/custodia-one/custos"
)

// Mover moves funds between ledger accounts. The wallet extension
// finalizes transfer operations by calling into it, the ledger
// extension provides the implementation.
type Mover interface {
	// Move debits amount of the asset from src and credits dest. It
	// returns ErrAmount when src does not hold enough funds.
	Move(db custos.KVStore, src, dest custos.Address, asset Asset, amount uint64) error
}

// AccountCondition derives the on chain identity of a balance
// account. Funds held by the account live under its address.
func AccountCondition(walletID, guidHash []byte) custos.Condition {
	data := make([]byte, 0, len(walletID)+len(guidHash))
	data = append(data, walletID...)
	data = append(data, guidHash...)
	return custos.NewCondition("wallet", "account", data)
}

// AccountAddress is the ledger address of a balance account.
func AccountAddress(walletID, guidHash []byte) custos.Address {
	return AccountCondition(walletID, guidHash).Address()
}
