package custos

import "github.com/tendermint/tendermint/libs/common"

// Ticker is a code that is executed at the beginning of every block,
// before any transaction is processed. It can be used for tasks that
// should happen independent of submitted transactions, like garbage
// collecting expired entities.
type Ticker interface {
	// Tick is a method called at the beginning of the block. Returned
	// tags are included in the block begin response.
	Tick(ctx Context, store CacheableKVStore) TickResult
}

// TickResult is a report of changes applied by a Ticker run.
type TickResult struct {
	// Tags contains a list of tags that were produced during the
	// execution.
	Tags []common.KVPair
}
