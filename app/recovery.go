package app

import (
	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
)

// Recovery is a decorator to recover from panics in transactions, so
// we can log them as errors
type Recovery struct{}

var _ custos.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into normal errors
func (r Recovery) Check(ctx custos.Context, store custos.KVStore, tx custos.Tx, next custos.Checker) (res custos.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

// Deliver turns panics into normal errors
func (r Recovery) Deliver(ctx custos.Context, store custos.KVStore, tx custos.Tx, next custos.Deliverer) (res custos.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}
