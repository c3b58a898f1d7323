/*
Package swapd links together all the various components
to construct the swapd app.
*/
package swapd

import (
	"context"
	"path/filepath"

	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/app"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/store/badgerdb"
	"github.com/iov-one/tokenswap/store/iavl"
	"github.com/iov-one/tokenswap/x"
	"github.com/iov-one/tokenswap/x/holding"
	"github.com/iov-one/tokenswap/x/mint"
	"github.com/iov-one/tokenswap/x/offer"
	"github.com/iov-one/tokenswap/x/sigs"
	"github.com/iov-one/tokenswap/x/utils"
	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// Name is returned by the abci Info call.
const Name = "swapd"

// Store backends supported by CommitKVStore.
const (
	BackendIAVL   = "iavl"
	BackendBadger = "badger"
)

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return sigs.Authenticate{}
}

// Chain returns a chain of decorators, to handle authentication,
// logging, metrics and recovery. metrics may be nil.
func Chain(metrics *app.Metrics) app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		metrics,
		utils.NewActionTagger(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		// on DeliverTx, bad tx will increment nonce
		// even if the message fails
		utils.NewSavepoint().OnDeliver(),
	)
}

// Router returns a router dispatching to all handlers of the mint,
// holding and offer extensions.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()
	holdings := holding.NewController(authFn)
	mint.RegisterRoutes(r, authFn)
	holding.RegisterRoutes(r, authFn, holdings)
	offer.RegisterRoutes(r, authFn, offer.NewController(authFn, holdings))
	return r
}

// QueryRouter returns a default query router,
// allowing access to "/auth", "/mints", "/holdings", "/offers" and
// "/offerconf"
func QueryRouter() tokenswap.QueryRouter {
	r := tokenswap.NewQueryRouter()
	r.RegisterAll(
		sigs.RegisterQuery,
		mint.RegisterQuery,
		holding.RegisterQuery,
		offer.RegisterQuery,
	)
	return r
}

// Initializers returns the initializers of all extensions. Mints are
// created first because holdings refer to them.
func Initializers() tokenswap.Initializer {
	return app.ChainInitializers(
		mint.Initializer{},
		holding.Initializer{},
		offer.Initializer{},
	)
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into BaseApp.
func Stack(metrics *app.Metrics) tokenswap.Handler {
	authFn := Authenticator()
	return Chain(metrics).WithHandler(Router(authFn))
}

// Application constructs a basic ABCI application with
// the given arguments. If you are not sure what to use
// for the Handler, just use Stack().
func Application(h tokenswap.Handler, kv tokenswap.CommitKVStore, logger log.Logger, debug bool) (app.BaseApp, error) {
	store, err := app.NewStoreApp(Name, kv, QueryRouter(), context.Background())
	if err != nil {
		return app.BaseApp{}, err
	}
	store.WithInit(Initializers()).WithLogger(logger)
	return app.NewBaseApp(store, TxDecoder, h, debug), nil
}

// CommitKVStore opens the state database of given backend in the home
// directory. An empty home opens an in memory database.
func CommitKVStore(backend, home string, logger log.Logger) (tokenswap.CommitKVStore, error) {
	switch backend {
	case BackendIAVL, "":
		if home == "" {
			return iavl.NewCommitStoreFromDB(dbm.NewMemDB()), nil
		}
		return iavl.NewCommitStore(filepath.Join(home, "data"), "swapd")
	case BackendBadger:
		var dir string
		if home != "" {
			dir = filepath.Join(home, "data", "swapd.badger")
		}
		return badgerdb.Open(dir, logger)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown store backend %q", backend)
	}
}
