package offer

import (
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

const optKey = "offer"

// Initializer fulfils the Initializer interface to load the offer
// configuration from the genesis file.
type Initializer struct{}

var _ tokenswap.Initializer = Initializer{}

// FromGenesis stores the configuration found under "offer". Missing
// values fall back to the defaults.
func (Initializer) FromGenesis(opts tokenswap.Options, db tokenswap.KVStore) error {
	conf := DefaultConfiguration()
	if err := opts.ReadOptions(optKey, &conf); err != nil {
		return err
	}
	if err := NewConfigurationBucket().Save(db, conf); err != nil {
		return errors.Wrap(err, "offer configuration")
	}
	return nil
}
