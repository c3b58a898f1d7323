package holding

import (
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/mint"
)

const optKey = "holdings"

// GenesisHolding is used to parse the json from genesis file. Amount is a
// human readable decimal in whole units of the mint, for example "1.5".
type GenesisHolding struct {
	Owner  tokenswap.Address `json:"owner"`
	Mint   string            `json:"mint"`
	Amount string            `json:"amount"`
}

// Initializer fulfils the Initializer interface to load holdings from the
// genesis file. Mints must be initialized first.
type Initializer struct{}

var _ tokenswap.Initializer = Initializer{}

// FromGenesis will parse initial holdings from genesis and save them to
// the database
func (Initializer) FromGenesis(opts tokenswap.Options, db tokenswap.KVStore) error {
	var holdings []GenesisHolding
	if err := opts.ReadOptions(optKey, &holdings); err != nil {
		return err
	}
	mints := mint.NewBucket()
	// Issuing in genesis requires no signature.
	ctrl := Controller{holdings: NewBucket(), mints: mints}
	for i, g := range holdings {
		if err := g.Owner.Validate(); err != nil {
			return errors.Wrapf(err, "holding #%d owner", i)
		}
		m, err := mints.Get(db, g.Mint)
		if err != nil {
			return errors.Wrapf(err, "holding #%d", i)
		}
		amount, err := mint.Parse(g.Amount, m.Decimals)
		if err != nil {
			return errors.Wrapf(err, "holding #%d amount", i)
		}
		if amount == 0 {
			if _, err := ctrl.Open(db, g.Owner, g.Mint); err != nil {
				return errors.Wrapf(err, "holding #%d", i)
			}
			continue
		}
		if err := ctrl.Issue(db, g.Owner, g.Mint, amount); err != nil {
			return errors.Wrapf(err, "holding #%d", i)
		}
	}
	return nil
}
