package custtest

import "github.com/custodia-one/custos"

// Handler implements a mock of custos.Handler, counting calls and
// returning declared results.
type Handler struct {
	checkCall   int
	CheckResult custos.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult custos.DeliverResult
	DeliverErr    error

	// CheckCtx and DeliverCtx capture the context of the most recent
	// call, so that tests can inspect what decorators injected.
	CheckCtx   custos.Context
	DeliverCtx custos.Context
}

var _ custos.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx custos.Context, db custos.KVStore, tx custos.Tx) (custos.CheckResult, error) {
	h.checkCall++
	h.CheckCtx = ctx
	return h.CheckResult, h.CheckErr
}

func (h *Handler) Deliver(ctx custos.Context, db custos.KVStore, tx custos.Tx) (custos.DeliverResult, error) {
	h.deliverCall++
	h.DeliverCtx = ctx
	return h.DeliverResult, h.DeliverErr
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}

// Decorator implements a mock of custos.Decorator, counting calls and
// passing through to the next handler.
type Decorator struct {
	checkCall   int
	deliverCall int
}

var _ custos.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx custos.Context, db custos.KVStore, tx custos.Tx, next custos.Checker) (custos.CheckResult, error) {
	d.checkCall++
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx custos.Context, db custos.KVStore, tx custos.Tx, next custos.Deliverer) (custos.DeliverResult, error) {
	d.deliverCall++
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CheckCallCount() int {
	return d.checkCall
}

func (d *Decorator) DeliverCallCount() int {
	return d.deliverCall
}

func (d *Decorator) CallCount() int {
	return d.checkCall + d.deliverCall
}
