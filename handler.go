package custos

// Handler is a core engine that can process a few specific messages.
// This could represent "move funds" or "update the wallet policy".
type Handler interface {
	Checker
	Deliverer
}

// Checker is a subset of Handler to verify the validity of a
// transaction. It is its own interface to allow better type control
// in the next arguments in Decorator.
type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (CheckResult, error)
}

// Deliverer is a subset of Handler to execute a transaction. It is
// its own interface to allow better type control in the next
// arguments in Decorator.
type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (DeliverResult, error)
}

// Decorator wraps a Handler to provide common functionality like
// recovery or signer extraction to many Handlers.
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (DeliverResult, error)
}

// Registry is an interface to register your handler,
// the setup side of a Router.
type Registry interface {
	Handle(path string, h Handler)
}
