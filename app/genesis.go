package app

import (
	"encoding/json"
	"io/ioutil"

	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

// Genesis is the part of the tendermint genesis file the application
// reads.
type Genesis struct {
	ChainID  string          `json:"chain_id"`
	AppState json.RawMessage `json:"app_state"`
}

// loadGenesis tries to load a given file into a Genesis struct
func loadGenesis(filePath string) (Genesis, error) {
	var gen Genesis

	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "cannot parse genesis file: %s", err)
	}
	return gen, nil
}

// LoadGenesis initializes the state from a genesis file, the same way
// InitChain does with the app_state provided by tendermint.
func (s *StoreApp) LoadGenesis(filePath string, init tokenswap.Initializer) error {
	gen, err := loadGenesis(filePath)
	if err != nil {
		return err
	}
	return s.parseAppState(gen.AppState, gen.ChainID, init)
}

// ChainInitializers lets you initialize many extensions with one function.
// Initializers are called in order.
func ChainInitializers(inits ...tokenswap.Initializer) tokenswap.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []tokenswap.Initializer
}

// FromGenesis will pass opts to all Initializers in the list,
// aborting at the first error.
func (c chainInitializer) FromGenesis(opts tokenswap.Options, kv tokenswap.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}
