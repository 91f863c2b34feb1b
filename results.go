package custos

import (
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
)

// CheckResult captures any non-error response from the Check phase of
// a handler.
type CheckResult struct {
	// Data is a machine-parseable return value, like id of created
	// entity.
	Data []byte
	// Log is human-readable informational string.
	Log string
	// GasAllocated is the maximum units of work we allow this tx to
	// perform.
	GasAllocated int64
}

// ToABCI maps our data into the ABCI response type.
func (c CheckResult) ToABCI() abci.ResponseCheckTx {
	return abci.ResponseCheckTx{
		Data:      c.Data,
		Log:       c.Log,
		GasWanted: c.GasAllocated,
	}
}

// DeliverResult captures any non-error response from the Deliver
// phase of a handler.
type DeliverResult struct {
	// Data is a machine-parseable return value, like the resulting
	// record version.
	Data []byte
	// Log is human-readable informational string.
	Log string
	// Tags are indexable information to be published with the result.
	Tags []common.KVPair
	// GasUsed is the units of work performed.
	GasUsed int64
}

// ToABCI maps our data into the ABCI response type.
func (d DeliverResult) ToABCI() abci.ResponseDeliverTx {
	return abci.ResponseDeliverTx{
		Data:    d.Data,
		Log:     d.Log,
		Tags:    d.Tags,
		GasUsed: d.GasUsed,
	}
}
