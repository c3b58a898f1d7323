package app

import (
	"encoding/json"
	"fmt"
	"strings"

	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp contains a data store and all info needed
// to perform queries and handshakes.
//
// It should be embedded in another struct for CheckTx,
// DeliverTx and initializing state from the genesis.
//
// Errors on ABCI steps that do not take user input (Info, InitChain,
// BeginBlock, EndBlock and Commit) cannot be reported to tendermint, so
// they cause a panic.
type StoreApp struct {
	logger log.Logger

	// name is what is returned from abci.Info
	name string

	// Database state (committed, check, deliver....)
	store *CommitStore

	// Code to initialize from a genesis file
	initializer tokenswap.Initializer

	// How to handle queries
	queryRouter tokenswap.QueryRouter

	// chainID is loaded from db in initialization
	// saved once in parseAppState
	chainID string

	// baseContext contains context info that is valid for
	// lifetime of this app (eg. chainID)
	baseContext tokenswap.Context

	// blockContext contains context info that is valid for the
	// current block (eg. height, time), reset on BeginBlock
	blockContext tokenswap.Context
}

// NewStoreApp initializes this app into a ready state with some defaults.
// It fails if the state cannot be loaded from the given store.
func NewStoreApp(name string, store tokenswap.CommitKVStore, queryRouter tokenswap.QueryRouter, baseContext tokenswap.Context) (*StoreApp, error) {
	cs, err := NewCommitStore(store)
	if err != nil {
		return nil, err
	}
	s := &StoreApp{
		name:        name,
		store:       cs,
		queryRouter: queryRouter,
		baseContext: baseContext,
	}
	s = s.WithLogger(log.NewNopLogger())

	s.chainID, err = loadChainID(s.DeliverStore())
	if err != nil {
		return nil, err
	}
	if s.chainID != "" {
		s.baseContext = tokenswap.WithChainID(s.baseContext, s.chainID)
	}

	info, err := s.store.CommitInfo()
	if err != nil {
		return nil, errors.Wrap(err, "commit info")
	}
	s.blockContext = tokenswap.WithHeight(s.baseContext, info.Version)
	return s, nil
}

// GetChainID returns the current chainID
func (s *StoreApp) GetChainID() string {
	return s.chainID
}

// WithInit is used to set the init function we call
func (s *StoreApp) WithInit(init tokenswap.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// parseAppState is called from InitChain, the first time the chain
// starts, and not on restarts.
func (s *StoreApp) parseAppState(data []byte, chainID string, init tokenswap.Initializer) error {
	if s.chainID != "" {
		return errors.Wrapf(errors.ErrState, "app state previously loaded for chain %s", s.chainID)
	}
	if len(data) == 0 {
		return errors.Wrap(errors.ErrState, "app_state not set in genesis.json, please initialize application before launching the blockchain")
	}
	if init == nil {
		return errors.Wrap(errors.ErrHuman, "initializer not set")
	}

	var appState tokenswap.Options
	if err := json.Unmarshal(data, &appState); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := s.storeChainID(chainID); err != nil {
		return err
	}
	return init.FromGenesis(appState, s.DeliverStore())
}

// store chainID and update context
func (s *StoreApp) storeChainID(chainID string) error {
	if err := saveChainID(s.DeliverStore(), chainID); err != nil {
		return err
	}
	s.chainID = chainID
	s.baseContext = tokenswap.WithChainID(s.baseContext, s.chainID)
	return nil
}

// WithLogger sets the logger on the StoreApp and returns it,
// to make it easy to chain in initialization
//
// also sets baseContext logger
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.baseContext = tokenswap.WithLogger(s.baseContext, logger)
	s.logger = logger
	return s
}

// Logger returns the application base logger
func (s *StoreApp) Logger() log.Logger {
	return s.logger
}

// BlockContext returns the block context for public use
func (s *StoreApp) BlockContext() tokenswap.Context {
	return s.blockContext
}

// DeliverStore returns the current DeliverTx cache for methods
func (s *StoreApp) DeliverStore() tokenswap.CacheableKVStore {
	return s.store.DeliverStore()
}

// CheckStore returns the current CheckTx cache for methods
func (s *StoreApp) CheckStore() tokenswap.CacheableKVStore {
	return s.store.CheckStore()
}

//----------------------- ABCI ---------------------

// Info implements abci.Application. It returns the height and hash,
// as well as the abci name and version.
//
// The height is the block that holds the transactions, not the apphash itself.
func (s *StoreApp) Info(req abci.RequestInfo) abci.ResponseInfo {
	info, err := s.store.CommitInfo()
	if err != nil {
		// Read comment on type header
		panic(err)
	}

	s.logger.Info("Info synced",
		"height", info.Version,
		"hash", fmt.Sprintf("%X", info.Hash))

	return abci.ResponseInfo{
		Data:             s.name,
		Version:          tokenswap.Version(),
		LastBlockHeight:  info.Version,
		LastBlockAppHash: info.Hash,
	}
}

// SetOption is not supported. All configuration is provided by the
// genesis file and the daemon configuration.
func (s *StoreApp) SetOption(res abci.RequestSetOption) abci.ResponseSetOption {
	return abci.ResponseSetOption{Log: "Not Implemented"}
}

/*
Query gets data from the app store.
A query request has the following elements:
* Path - the type of query
* Data - what to query, interpreted based on Path

Path may be "/<bucket>" or "/<bucket>/<index>", for example "/offers" or
"/holdings/owner". It may be followed by "?prefix" to make a prefix query.

Key and Value in Results are always serialized ResultSet
objects, able to support 0 to N values. They must be the
same size. This makes things a little more difficult for
simple queries, but provides a consistent interface.

Queries always read the latest committed state.
*/
func (s *StoreApp) Query(reqQuery abci.RequestQuery) abci.ResponseQuery {
	path, mod := splitPath(reqQuery.Path)
	qh := s.queryRouter.Handler(path)
	if qh == nil {
		return queryError(errors.Wrapf(errors.ErrNotFound, "unexpected query path: %s", reqQuery.Path))
	}

	info, err := s.store.CommitInfo()
	if err != nil {
		return queryError(err)
	}
	db := s.store.committed.CacheWrap()
	defer db.Discard()

	models, err := qh.Query(db, mod, reqQuery.Data)
	if err != nil {
		return queryError(err)
	}

	res := abci.ResponseQuery{Height: info.Version}
	if res.Key, err = ResultsFromKeys(models).Marshal(); err != nil {
		return queryError(err)
	}
	if res.Value, err = ResultsFromValues(models).Marshal(); err != nil {
		return queryError(err)
	}
	return res
}

// splitPath splits out the real path along with the query
// modifier (everything after the ?)
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
func (s *StoreApp) Commit() abci.ResponseCommit {
	commitID, err := s.store.Commit()
	if err != nil {
		// Read comment on type header
		panic(err)
	}

	s.logger.Debug("Commit synced",
		"height", commitID.Version,
		"hash", fmt.Sprintf("%X", commitID.Hash),
	)
	return abci.ResponseCommit{Data: commitID.Hash}
}

// InitChain implements ABCI. It loads the app_state section of the
// genesis file using the registered initializer.
func (s *StoreApp) InitChain(req abci.RequestInitChain) abci.ResponseInitChain {
	if err := s.parseAppState(req.AppStateBytes, req.ChainId, s.initializer); err != nil {
		// Read comment on type header
		panic(err)
	}
	return abci.ResponseInitChain{}
}

// BeginBlock implements ABCI. It sets up the block context.
func (s *StoreApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	ctx := tokenswap.WithHeight(s.baseContext, req.Header.GetHeight())
	ctx = tokenswap.WithBlockTime(ctx, req.Header.GetTime())
	s.blockContext = ctx
	return abci.ResponseBeginBlock{}
}

// EndBlock implements ABCI. The application never changes the
// validator set.
func (s *StoreApp) EndBlock(_ abci.RequestEndBlock) abci.ResponseEndBlock {
	return abci.ResponseEndBlock{}
}
