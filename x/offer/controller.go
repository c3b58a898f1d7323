package offer

import (
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/orm"
	"github.com/iov-one/tokenswap/store"
	"github.com/iov-one/tokenswap/x"
	"github.com/iov-one/tokenswap/x/holding"
	"github.com/iov-one/tokenswap/x/mint"
)

// Controller owns the lifecycle of offers and their vaults. Every operation
// either applies all of its writes or none of them.
type Controller struct {
	auth     x.Authenticator
	holdings holding.Controller
	offers   Bucket
	conf     ConfigurationBucket
	mints    mint.Bucket
	// open counts the open offers of every maker.
	open orm.Counter
}

// NewController returns an offer controller that moves value through
// holdings and authorizes callers with auth.
func NewController(auth x.Authenticator, holdings holding.Controller) Controller {
	return Controller{
		auth:     auth,
		holdings: holdings,
		offers:   NewBucket(),
		conf:     NewConfigurationBucket(),
		mints:    mint.NewBucket(),
		open:     orm.NewCounter("offers"),
	}
}

// Make opens a new offer of amountA of mintA in exchange for amountB of
// mintB and locks the offered amount in the offer vault. The maker must
// have signed the request.
func (c Controller) Make(ctx tokenswap.Context, db tokenswap.KVStore, maker tokenswap.Address, id uint64, mintA, mintB string, amountA, amountB uint64) (*Offer, error) {
	var offer *Offer
	err := atomically(db, func(db tokenswap.KVStore) error {
		var err error
		offer, err = c.make(ctx, db, maker, id, mintA, mintB, amountA, amountB)
		return err
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

func (c Controller) make(ctx tokenswap.Context, db tokenswap.KVStore, maker tokenswap.Address, id uint64, mintA, mintB string, amountA, amountB uint64) (*Offer, error) {
	if !c.auth.HasAddress(ctx, maker) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "maker signature required")
	}
	if mintA == mintB {
		return nil, errors.Wrapf(ErrInvalidTokenMint, "%s offered for itself", mintA)
	}
	conf, err := c.conf.Load(db)
	if err != nil {
		return nil, err
	}
	if amountA < conf.MinTransferAmount {
		return nil, errors.Wrapf(ErrInvalidAmount, "offered amount below %d", conf.MinTransferAmount)
	}
	if amountB < conf.MinTransferAmount {
		return nil, errors.Wrapf(ErrInvalidAmount, "wanted amount below %d", conf.MinTransferAmount)
	}
	ma, err := c.mints.Get(db, mintA)
	if err != nil {
		return nil, errors.Wrap(err, "offered mint")
	}
	mb, err := c.mints.Get(db, mintB)
	if err != nil {
		return nil, errors.Wrap(err, "wanted mint")
	}
	balance, err := c.holdings.Balance(db, maker, mintA)
	if err != nil {
		return nil, err
	}
	if balance < amountA {
		return nil, errors.Wrapf(ErrInsufficientMakerBalance, "balance %s %s, offered %s",
			mint.Format(balance, ma.Decimals), ma.Ticker, mint.Format(amountA, ma.Decimals))
	}

	d, err := Derive(maker, id)
	if err != nil {
		return nil, errors.Wrap(err, "offer address")
	}
	addr := d.Address()
	offer := &Offer{
		ID:      id,
		Maker:   maker,
		MintA:   mintA,
		MintB:   mintB,
		AmountA: amountA,
		AmountB: amountB,
		Nonce:   uint32(d.Nonce),
	}
	if err := c.offers.Insert(db, addr, offer); err != nil {
		return nil, errors.Wrapf(err, "offer %d of %s", id, maker)
	}
	if _, err := c.open.Increment(db, maker, conf.MaxOffersPerMaker); err != nil {
		if errors.ErrOverflow.Is(err) {
			return nil, errors.Wrapf(ErrTooManyOffers, "limit of %d open offers", conf.MaxOffersPerMaker)
		}
		return nil, err
	}

	from, err := c.holdings.Open(db, maker, mintA)
	if err != nil {
		return nil, errors.Wrap(err, "maker holding")
	}
	vault, err := c.holdings.OpenVault(db, addr, mintA)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open vault")
	}
	if err := c.transfer(ctx, db, from, vault, amountA, maker, nil); err != nil {
		return nil, errors.Wrap(err, "cannot fund vault")
	}

	tokenswap.GetLogger(ctx).Info("offer made",
		"offer", addr,
		"maker", maker,
		"id", id,
		"offered", mint.Format(amountA, ma.Decimals)+" "+ma.Ticker,
		"wanted", mint.Format(amountB, mb.Decimals)+" "+mb.Ticker)
	return offer, nil
}

// Take settles the offer made by maker under id. The wanted amount moves
// from the taker to the maker and the whole vault moves to the taker. The
// offer and its vault are removed. The taker must have signed the request.
func (c Controller) Take(ctx tokenswap.Context, db tokenswap.KVStore, taker, maker tokenswap.Address, id uint64) (*Offer, error) {
	var offer *Offer
	err := atomically(db, func(db tokenswap.KVStore) error {
		var err error
		offer, err = c.take(ctx, db, taker, maker, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

func (c Controller) take(ctx tokenswap.Context, db tokenswap.KVStore, taker, maker tokenswap.Address, id uint64) (*Offer, error) {
	offer, addr, err := c.resolve(db, maker, id)
	if err != nil {
		return nil, err
	}
	if !c.auth.HasAddress(ctx, taker) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "taker signature required")
	}
	vault, err := c.lockedVault(db, addr, offer)
	if err != nil {
		return nil, err
	}
	balance, err := c.holdings.Balance(db, taker, offer.MintB)
	if err != nil {
		return nil, err
	}
	if balance < offer.AmountB {
		return nil, errors.Wrapf(ErrInsufficientTakerBalance, "balance %d, wanted %d", balance, offer.AmountB)
	}

	// Either party may not hold the mint it receives yet.
	received, err := c.holdings.Open(db, taker, offer.MintA)
	if err != nil {
		return nil, errors.Wrap(err, "taker holding")
	}
	paid, err := c.holdings.Open(db, offer.Maker, offer.MintB)
	if err != nil {
		return nil, errors.Wrap(err, "maker holding")
	}
	payer, err := c.holdings.Open(db, taker, offer.MintB)
	if err != nil {
		return nil, errors.Wrap(err, "taker holding")
	}

	if err := c.transfer(ctx, db, payer, paid, offer.AmountB, taker, nil); err != nil {
		return nil, errors.Wrap(err, "cannot pay maker")
	}
	proof := offer.Derivation()
	if err := c.transfer(ctx, db, vault, received, vault.Balance, addr, &proof); err != nil {
		return nil, errors.Wrap(err, "cannot release vault")
	}
	if err := c.destroy(ctx, db, addr, offer); err != nil {
		return nil, err
	}

	tokenswap.GetLogger(ctx).Info("offer taken", "offer", addr, "maker", offer.Maker, "taker", taker)
	return offer, nil
}

// Refund returns the vault of the offer made by maker under id to the
// maker and removes the offer. Only the maker can refund.
func (c Controller) Refund(ctx tokenswap.Context, db tokenswap.KVStore, caller, maker tokenswap.Address, id uint64) (*Offer, error) {
	return c.withdraw(ctx, db, caller, maker, id, "offer refunded")
}

// Cancel is the same operation as Refund.
func (c Controller) Cancel(ctx tokenswap.Context, db tokenswap.KVStore, caller, maker tokenswap.Address, id uint64) (*Offer, error) {
	return c.withdraw(ctx, db, caller, maker, id, "offer cancelled")
}

func (c Controller) withdraw(ctx tokenswap.Context, db tokenswap.KVStore, caller, maker tokenswap.Address, id uint64, event string) (*Offer, error) {
	var offer *Offer
	err := atomically(db, func(db tokenswap.KVStore) error {
		var err error
		offer, err = c.refund(ctx, db, caller, maker, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	tokenswap.GetLogger(ctx).Info(event, "offer", offer.Address(), "maker", offer.Maker)
	return offer, nil
}

func (c Controller) refund(ctx tokenswap.Context, db tokenswap.KVStore, caller, maker tokenswap.Address, id uint64) (*Offer, error) {
	offer, addr, err := c.resolve(db, maker, id)
	if err != nil {
		return nil, err
	}
	if !offer.Maker.Equals(caller) || !c.auth.HasAddress(ctx, caller) {
		return nil, errors.Wrapf(ErrUnauthorizedRefund, "%s is not the maker", caller)
	}
	vault, err := c.lockedVault(db, addr, offer)
	if err != nil {
		return nil, err
	}
	// The maker may have closed the emptied holding after making the
	// offer.
	dest, err := c.holdings.Open(db, offer.Maker, offer.MintA)
	if err != nil {
		return nil, errors.Wrap(err, "maker holding")
	}
	proof := offer.Derivation()
	if err := c.transfer(ctx, db, vault, dest, vault.Balance, addr, &proof); err != nil {
		return nil, errors.Wrap(err, "cannot release vault")
	}
	if err := c.destroy(ctx, db, addr, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// Get returns the offer made by maker under id.
func (c Controller) Get(db tokenswap.ReadOnlyKVStore, maker tokenswap.Address, id uint64) (*Offer, error) {
	offer, _, err := c.resolve(db, maker, id)
	return offer, err
}

// Vault returns the holding that keeps the locked amount of the offer made
// by maker under id.
func (c Controller) Vault(db tokenswap.ReadOnlyKVStore, maker tokenswap.Address, id uint64) (*holding.Holding, error) {
	offer, addr, err := c.resolve(db, maker, id)
	if err != nil {
		return nil, err
	}
	return c.holdings.Vault(db, addr, offer.MintA)
}

// Configuration returns the limits applied to new offers.
func (c Controller) Configuration(db tokenswap.ReadOnlyKVStore) (Configuration, error) {
	return c.conf.Load(db)
}

func (c Controller) resolve(db tokenswap.ReadOnlyKVStore, maker tokenswap.Address, id uint64) (*Offer, tokenswap.Address, error) {
	d, err := Derive(maker, id)
	if err != nil {
		return nil, nil, errors.Wrap(err, "offer address")
	}
	addr := d.Address()
	offer, err := c.offers.Get(db, addr)
	if err != nil {
		return nil, nil, err
	}
	return offer, addr, nil
}

// lockedVault returns the vault of offer, which must hold a balance.
func (c Controller) lockedVault(db tokenswap.ReadOnlyKVStore, addr tokenswap.Address, offer *Offer) (*holding.Holding, error) {
	switch vault, err := c.holdings.Vault(db, addr, offer.MintA); {
	case err == nil:
		if vault.Balance == 0 {
			return nil, errors.Wrap(ErrEmptyVault, "nothing locked")
		}
		return vault, nil
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrap(ErrEmptyVault, "vault does not exist")
	default:
		return nil, err
	}
}

// transfer moves amount between two holdings of the same mint.
func (c Controller) transfer(ctx tokenswap.Context, db tokenswap.KVStore, from, to *holding.Holding, amount uint64, authority tokenswap.Address, proof *tokenswap.Derivation) error {
	src, err := from.Address()
	if err != nil {
		return err
	}
	dst, err := to.Address()
	if err != nil {
		return err
	}
	return c.holdings.Transfer(ctx, db, holding.Transfer{
		From:      src,
		To:        dst,
		Amount:    amount,
		Mint:      from.Mint,
		Authority: authority,
		Proof:     proof,
	})
}

// destroy closes the drained vault and removes the offer record.
func (c Controller) destroy(ctx tokenswap.Context, db tokenswap.KVStore, addr tokenswap.Address, offer *Offer) error {
	vault, err := holding.VaultAddress(addr, offer.MintA)
	if err != nil {
		return err
	}
	proof := offer.Derivation()
	err = c.holdings.Close(ctx, db, holding.Close{
		Holding:     vault,
		Authority:   addr,
		Destination: offer.Maker,
		Proof:       &proof,
	})
	if err != nil {
		return errors.Wrap(err, "cannot close vault")
	}
	if err := c.offers.Delete(db, addr); err != nil {
		return errors.Wrap(err, "cannot delete offer")
	}
	if _, err := c.open.Decrement(db, offer.Maker); err != nil {
		return errors.Wrap(err, "open offers counter")
	}
	return nil
}

// atomically runs fn on a cache of db and writes the cache down only if fn
// succeeds.
func atomically(db tokenswap.KVStore, fn func(tokenswap.KVStore) error) error {
	cstore, ok := db.(tokenswap.CacheableKVStore)
	if !ok {
		cstore = store.BTreeCacheable{KVStore: db}
	}
	cache := cstore.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "cannot commit")
	}
	return nil
}
