package server

import (
	"encoding/json"
	"io/ioutil"

	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/store"
)

// ValidateGenesis runs the initializer against the app_state of every
// given genesis file. Nothing is persisted.
func ValidateGenesis(ini tokenswap.Initializer, genesisPaths []string) error {
	if len(genesisPaths) == 0 {
		return errors.Wrap(errors.ErrEmpty, "genesis file path")
	}
	for _, path := range genesisPaths {
		if err := validateGenesis(ini, path); err != nil {
			return errors.Wrap(err, path)
		}
	}
	return nil
}

func validateGenesis(ini tokenswap.Initializer, genesisPath string) error {
	b, err := ioutil.ReadFile(genesisPath)
	if err != nil {
		return errors.Wrap(errors.ErrInput, "cannot read genesis file")
	}

	var genesis struct {
		State tokenswap.Options `json:"app_state"`
	}
	if err := json.Unmarshal(b, &genesis); err != nil {
		return errors.Wrap(errors.ErrInput, "cannot JSON deserialize genesis")
	}
	if len(genesis.State) == 0 {
		return errors.Wrap(errors.ErrEmpty, "app_state")
	}

	// Use in memory store because we want to discard the result.
	db := store.MemStore()

	if err := ini.FromGenesis(genesis.State, db); err != nil {
		return errors.Wrap(err, "cannot initialize from genesis")
	}
	return nil
}
