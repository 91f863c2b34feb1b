/*
Package custos defines the common interfaces that weave together the
subpackages of a deterministic, account-based ledger application.

The package intentionally contains no business logic. It declares how
transactions are shaped (Tx, Msg), how state is accessed (KVStore and
friends), how handlers process instructions (Handler, Decorator) and
how signer identities authenticated by the host runtime are
represented (Condition, Address). Extensions under x/ implement the
actual state transitions against these interfaces.

Context is passed through context.Context between the app, middleware
and handlers. For every value XYZ of type T supported in a context
there are two functions:

  WithXYZ(Context, T) Context
  XYZ(Context) (val T, ok bool)
*/
package custos
