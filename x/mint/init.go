package mint

import (
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

const optKey = "mints"

// GenesisMint is used to parse the json from genesis file.
type GenesisMint struct {
	Ticker    string            `json:"ticker"`
	Name      string            `json:"name"`
	Decimals  uint32            `json:"decimals"`
	Authority tokenswap.Address `json:"authority"`
}

// Initializer fulfils the Initializer interface to load mints from the
// genesis file
type Initializer struct{}

var _ tokenswap.Initializer = Initializer{}

// FromGenesis will parse the mints from genesis and save them to the
// database
func (Initializer) FromGenesis(opts tokenswap.Options, db tokenswap.KVStore) error {
	var mints []GenesisMint
	if err := opts.ReadOptions(optKey, &mints); err != nil {
		return err
	}
	bucket := NewBucket()
	for i, g := range mints {
		m := &Mint{
			Ticker:    g.Ticker,
			Name:      g.Name,
			Decimals:  g.Decimals,
			Authority: g.Authority,
		}
		if err := bucket.Create(db, m); err != nil {
			return errors.Wrapf(err, "mint #%d", i)
		}
	}
	return nil
}
