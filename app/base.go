package app

import (
	abci "github.com/tendermint/tendermint/abci/types"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
)

// BaseApp adds DeliverTx, CheckTx, and BeginBlock handlers to the
// storage and query functionality of StoreApp
type BaseApp struct {
	*StoreApp
	decoder custos.TxDecoder
	handler custos.Handler
	ticker  custos.Ticker
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp constructs a basic abci application
func NewBaseApp(
	store *StoreApp,
	decoder custos.TxDecoder,
	handler custos.Handler,
	ticker custos.Ticker,
	debug bool,
) BaseApp {
	return BaseApp{
		StoreApp: store,
		decoder:  decoder,
		handler:  handler,
		ticker:   ticker,
		debug:    debug,
	}
}

// DeliverTx - ABCI - dispatches to the handler
func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return custos.DeliverTxError(err, b.debug)
	}

	ctx := custos.WithLogInfo(b.BlockContext(),
		"call", "deliver_tx",
		"path", custos.GetPath(tx))

	res, err := b.handler.Deliver(ctx, b.DeliverStore(), tx)
	return custos.DeliverOrError(res, err, b.debug)
}

// CheckTx - ABCI - dispatches to the handler
func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return custos.CheckTxError(err, b.debug)
	}

	ctx := custos.WithLogInfo(b.BlockContext(),
		"call", "check_tx",
		"path", custos.GetPath(tx))

	res, err := b.handler.Check(ctx, b.CheckStore(), tx)
	return custos.CheckOrError(res, err, b.debug)
}

// BeginBlock - ABCI - sets up the block context and runs the ticker
func (b BaseApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	b.StoreApp.BeginBlock(req)

	var response abci.ResponseBeginBlock
	if b.ticker != nil {
		ctx := custos.WithLogInfo(b.BlockContext(), "call", "begin_block")
		tr := b.ticker.Tick(ctx, b.DeliverStore())
		response.Tags = append(response.Tags, tr.Tags...)
	}
	return response
}

// loadTx calls the decoder, and captures any panics
func (b BaseApp) loadTx(txBytes []byte) (tx custos.Tx, err error) {
	defer errors.Recover(&err)
	tx, err = b.decoder(txBytes)
	return
}
