package app

import (
	"encoding/json"
	"fmt"
	"strings"

	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
)

// StoreApp contains a data store and all info needed to perform
// queries and handshakes.
//
// It should be embedded in another struct for CheckTx, DeliverTx and
// initializing state from the genesis. Errors on ABCI steps that take
// no user input (Info, InitChain, BeginBlock, EndBlock, Commit) are
// handled as panics, as there is no way for the consensus engine to
// handle them gracefully.
type StoreApp struct {
	logger log.Logger

	// name is what is returned from abci.Info
	name string

	// Database state (committed, check, deliver....)
	store *CommitStore

	// Code to initialize from a genesis file
	initializer custos.Initializer

	// How to handle queries
	queryRouter custos.QueryRouter

	// chainID is loaded from db in initialization
	// saved once in InitChain
	chainID string

	// baseContext contains context info that is valid for the
	// lifetime of this app (eg. chainID)
	baseContext custos.Context

	// blockContext contains context info that is valid for the
	// current block (eg. height, time), reset on BeginBlock
	blockContext custos.Context
}

// NewStoreApp initializes this app into a ready state with some
// defaults.
//
// Panics if unable to properly load the state from the given store.
func NewStoreApp(name string, store custos.CommitKVStore, queryRouter custos.QueryRouter, baseContext custos.Context) *StoreApp {
	s := &StoreApp{
		name: name,
		// note: panics if trouble initializing from store
		store:       NewCommitStore(store),
		queryRouter: queryRouter,
		baseContext: baseContext,
	}
	s = s.WithLogger(log.NewNopLogger())

	// load the chainID from the db
	s.chainID = loadChainID(s.DeliverStore())
	if s.chainID != "" {
		s.baseContext = custos.WithChainID(s.baseContext, s.chainID)
	}

	// get the most recent height
	info := s.store.CommitInfo()
	s.blockContext = custos.WithHeight(s.baseContext, info.Version)
	return s
}

// GetChainID returns the current chainID
func (s *StoreApp) GetChainID() string {
	return s.chainID
}

// WithInit is used to set the init function we call on InitChain
func (s *StoreApp) WithInit(init custos.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// WithLogger sets the logger on the StoreApp and returns it, to make
// it easy to chain in initialization.
//
// Also sets the baseContext logger.
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.baseContext = custos.WithLogger(s.baseContext, logger)
	s.logger = logger
	return s
}

// Logger returns the application base logger
func (s *StoreApp) Logger() log.Logger {
	return s.logger
}

// BlockContext returns the block context for public use
func (s *StoreApp) BlockContext() custos.Context {
	return s.blockContext
}

// DeliverStore returns the current DeliverTx cache for methods
func (s *StoreApp) DeliverStore() custos.CacheableKVStore {
	return s.store.DeliverStore()
}

// CheckStore returns the current CheckTx cache for methods
func (s *StoreApp) CheckStore() custos.CacheableKVStore {
	return s.store.CheckStore()
}

// parseAppState is called from InitChain, the first time the chain
// starts, and not on restarts.
func (s *StoreApp) parseAppState(data []byte, chainID string, init custos.Initializer) error {
	if s.chainID != "" {
		return errors.Wrapf(errors.ErrState, "appState previously loaded for chain: %s", s.chainID)
	}
	if len(data) == 0 {
		return errors.Wrap(errors.ErrEmpty, "app_state not set in genesis.json")
	}

	var appState custos.Options
	if err := json.Unmarshal(data, &appState); err != nil {
		return errors.Wrap(err, "parse app_state")
	}

	if err := s.storeChainID(chainID); err != nil {
		return err
	}

	return init.FromGenesis(appState, s.DeliverStore())
}

// storeChainID stores the chain id and updates the context
func (s *StoreApp) storeChainID(chainID string) error {
	s.chainID = chainID
	if err := saveChainID(s.DeliverStore(), s.chainID); err != nil {
		return err
	}
	s.baseContext = custos.WithChainID(s.baseContext, s.chainID)
	return nil
}

//----------------------- ABCI ---------------------

// Info implements abci.Application. It returns the height and hash,
// as well as the abci name and version.
func (s *StoreApp) Info(req abci.RequestInfo) abci.ResponseInfo {
	info := s.store.CommitInfo()

	s.logger.Info("Info synced",
		"height", info.Version,
		"hash", fmt.Sprintf("%X", info.Hash))

	return abci.ResponseInfo{
		Data:             s.name,
		LastBlockHeight:  info.Version,
		LastBlockAppHash: info.Hash,
	}
}

// SetOption - ABCI
func (s *StoreApp) SetOption(res abci.RequestSetOption) abci.ResponseSetOption {
	return abci.ResponseSetOption{Log: "Not Implemented"}
}

// Query gets data from the app store.
// A query request has the following elements:
// * Path - the type of query
// * Data - what to query, interpreted based on Path
// * Height - the block height to query (if 0 most recent)
// * Prove - if true, also return a proof
//
// Path may be "/", or "/<bucket>". It may be followed by "?prefix" to
// make a prefix query.
//
// Key and Value in the result are always serialized ResultSet objects,
// able to support 0 to N values. They must be the same size.
func (s *StoreApp) Query(reqQuery abci.RequestQuery) (resQuery abci.ResponseQuery) {
	path, mod := splitPath(reqQuery.Path)
	qh := s.queryRouter.Handler(path)
	if qh == nil {
		code, _ := errors.ABCIInfo(errors.ErrNotFound, false)
		resQuery.Code = code
		resQuery.Log = fmt.Sprintf("unexpected query path: %v", reqQuery.Path)
		return
	}

	info := s.store.CommitInfo()
	resQuery.Height = info.Version
	db := s.store.QueryStore()

	models, err := qh.Query(db, mod, reqQuery.Data)
	if err != nil {
		return queryError(err)
	}

	resQuery.Key, err = ResultsFromKeys(models).Marshal()
	if err != nil {
		return queryError(err)
	}
	resQuery.Value, err = ResultsFromValues(models).Marshal()
	if err != nil {
		return queryError(err)
	}

	return resQuery
}

// splitPath splits out the real path along with the query modifier
// (everything after the ?)
func splitPath(path string) (string, string) {
	var mod string
	chunks := strings.SplitN(path, "?", 2)
	if len(chunks) == 2 {
		path = chunks[0]
		mod = chunks[1]
	}
	return path, mod
}

func queryError(err error) abci.ResponseQuery {
	code, log := errors.ABCIInfo(err, false)
	return abci.ResponseQuery{
		Log:  log,
		Code: code,
	}
}

// Commit implements abci.Application
func (s *StoreApp) Commit() (res abci.ResponseCommit) {
	commitID := s.store.Commit()

	s.logger.Debug("Commit synced",
		"height", commitID.Version,
		"hash", fmt.Sprintf("%X", commitID.Hash),
	)

	return abci.ResponseCommit{Data: commitID.Hash}
}

// InitChain implements ABCI. It parses the genesis app state. Panics
// on failure as there is no way to recover from an invalid genesis.
func (s *StoreApp) InitChain(req abci.RequestInitChain) (res abci.ResponseInitChain) {
	if err := s.parseAppState(req.AppStateBytes, req.ChainId, s.initializer); err != nil {
		panic(err)
	}
	return abci.ResponseInitChain{}
}

// BeginBlock implements ABCI and sets up the blockContext
func (s *StoreApp) BeginBlock(req abci.RequestBeginBlock) (res abci.ResponseBeginBlock) {
	ctx := custos.WithHeight(s.baseContext, req.Header.GetHeight())
	ctx = custos.WithBlockTime(ctx, req.Header.Time)
	s.blockContext = ctx
	return
}

// EndBlock - ABCI
func (s *StoreApp) EndBlock(_ abci.RequestEndBlock) (res abci.ResponseEndBlock) {
	return
}
