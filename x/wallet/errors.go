package wallet

import "github.com/custodia-one/custos/errors"

// ErrPolicy is returned when an action violates the wallet policy,
// for example a transfer to a destination that is not whitelisted or
// a dapp transaction against a program missing from the dapp book.
var ErrPolicy = errors.Register(1201, "policy violation")
