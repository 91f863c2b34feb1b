/*
Package app wires the custodial wallet extensions into a runnable
ABCI application. It composes the decorator stack, the message router,
the query router and the persistent store.
*/
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/app"
	"github.com/custodia-one/custos/store/iavl"
	"github.com/custodia-one/custos/x"
	"github.com/custodia-one/custos/x/ledger"
	"github.com/custodia-one/custos/x/sigs"
	"github.com/custodia-one/custos/x/wallet"
)

// Authenticator returns the signature based authentication used by all
// handlers.
func Authenticator() x.Authenticator {
	return sigs.Authenticate{}
}

// LedgerControl returns the fund moving controller.
func LedgerControl() ledger.Controller {
	return ledger.NewController()
}

// Chain returns the decorator stack every transaction passes through.
func Chain(authFn x.Authenticator) app.Decorators {
	return app.ChainDecorators(
		app.NewLogging(),
		app.NewRecovery(),
		// on CheckTx, bad tx don't affect state
		app.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		// on DeliverTx, a failing message leaves no partial writes
		app.NewSavepoint().OnDeliver(),
	)
}

// Router returns the message router with all extensions registered.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()
	wallet.RegisterRoutes(r, authFn, LedgerControl())
	return r
}

// QueryRouter returns the query router with all extensions registered.
func QueryRouter() custos.QueryRouter {
	r := custos.NewQueryRouter()
	wallet.RegisterQuery(r)
	ledger.RegisterQuery(r)
	return r
}

// Stack wires up the standard router with the standard decorator
// chain. This can be passed into BaseApp.
func Stack() custos.Handler {
	authFn := Authenticator()
	return Chain(authFn).WithHandler(Router(authFn))
}

// Application constructs a basic ABCI application with the given
// arguments. If you are not sure what to use for the Handler, just
// use Stack().
func Application(name string, h custos.Handler, tx custos.TxDecoder, dbPath string, debug bool) (app.BaseApp, error) {
	ctx := context.Background()
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	store := app.NewStoreApp(name, kv, QueryRouter(), ctx)
	store = store.WithInit(app.ChainInitializers(
		&wallet.Initializer{},
		&ledger.Initializer{},
	))
	base := app.NewBaseApp(store, tx, h, wallet.NewReaper(), debug)
	return base, nil
}

// CommitKVStore returns an initialized KVStore that persists the data
// under the given path. An empty path returns a memory backed store
// for tests.
func CommitKVStore(dbPath string) (custos.CommitKVStore, error) {
	if dbPath == "" {
		return iavl.MockCommitStore(), nil
	}

	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("invalid database name: %s", path)
	}

	// Some external calls accidentally add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name), nil
}
