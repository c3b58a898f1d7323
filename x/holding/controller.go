package holding

import (
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x"
	"github.com/iov-one/tokenswap/x/mint"
)

// Transfer describes a single value movement between two holdings of the
// same mint.
type Transfer struct {
	// From and To are holding addresses.
	From tokenswap.Address
	To   tokenswap.Address

	Amount uint64
	Mint   string

	// Authority must be the owner of the source holding.
	Authority tokenswap.Address
	// Proof, when set, authorizes a derived Authority instead of a
	// signature. It must reproduce Authority.
	Proof *tokenswap.Derivation
}

// Close describes the removal of an empty holding.
type Close struct {
	Holding     tokenswap.Address
	Authority   tokenswap.Address
	Destination tokenswap.Address
	Proof       *tokenswap.Derivation
}

// Controller is the only way to move value between holdings. It validates
// precision consistency and the authority of every source.
type Controller struct {
	auth     x.Authenticator
	holdings Bucket
	mints    mint.Bucket
}

// NewController returns a controller that authorizes signers with auth.
func NewController(auth x.Authenticator) Controller {
	return Controller{
		auth:     auth,
		holdings: NewBucket(),
		mints:    mint.NewBucket(),
	}
}

// Transfer moves t.Amount of t.Mint from t.From to t.To. Both holdings
// must exist and record the same precision as the mint.
func (c Controller) Transfer(ctx tokenswap.Context, db tokenswap.KVStore, t Transfer) error {
	if t.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "transfer of zero")
	}
	m, err := c.mints.Get(db, t.Mint)
	if err != nil {
		return err
	}
	from, err := c.load(db, t.From, "source")
	if err != nil {
		return err
	}
	to, err := c.load(db, t.To, "destination")
	if err != nil {
		return err
	}
	if err := checkHolds(m, from); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := checkHolds(m, to); err != nil {
		return errors.Wrap(err, "destination")
	}
	if err := c.authorize(ctx, from, t.Authority, t.Proof); err != nil {
		return err
	}
	if from.Balance < t.Amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %s, transfer %s",
			mint.Format(from.Balance, m.Decimals), mint.Format(t.Amount, m.Decimals))
	}
	if t.From.Equals(t.To) {
		return nil
	}
	if to.Balance+t.Amount < to.Balance {
		return errors.Wrap(errors.ErrOverflow, "destination balance")
	}
	from.Balance -= t.Amount
	to.Balance += t.Amount
	if err := c.holdings.Put(db, t.From, from); err != nil {
		return errors.Wrap(err, "cannot save source")
	}
	if err := c.holdings.Put(db, t.To, to); err != nil {
		return errors.Wrap(err, "cannot save destination")
	}
	return nil
}

// Close removes an empty holding. Callers must drain it first.
func (c Controller) Close(ctx tokenswap.Context, db tokenswap.KVStore, cl Close) error {
	h, err := c.load(db, cl.Holding, "holding")
	if err != nil {
		return err
	}
	if err := cl.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if err := c.authorize(ctx, h, cl.Authority, cl.Proof); err != nil {
		return err
	}
	if h.Balance != 0 {
		return errors.Wrapf(errors.ErrState, "cannot close holding with balance %s", mint.Format(h.Balance, h.Decimals))
	}
	if err := c.holdings.Delete(db, cl.Holding); err != nil {
		return errors.Wrap(err, "cannot delete holding")
	}
	tokenswap.GetLogger(ctx).Debug("holding closed",
		"holding", cl.Holding, "mint", h.Mint, "destination", cl.Destination)
	return nil
}

// Open returns the holding of ticker owned by owner, creating an empty one
// if it does not exist yet.
func (c Controller) Open(db tokenswap.KVStore, owner tokenswap.Address, ticker string) (*Holding, error) {
	return c.open(db, owner, ticker, false)
}

// OpenVault returns the vault of ticker owned by owner, creating an empty
// one if it does not exist yet. Vaults live apart from regular holdings,
// so sending to owner never credits its vault.
func (c Controller) OpenVault(db tokenswap.KVStore, owner tokenswap.Address, ticker string) (*Holding, error) {
	return c.open(db, owner, ticker, true)
}

func (c Controller) open(db tokenswap.KVStore, owner tokenswap.Address, ticker string, vault bool) (*Holding, error) {
	m, err := c.mints.Get(db, ticker)
	if err != nil {
		return nil, err
	}
	h := &Holding{Owner: owner, Mint: m.Ticker, Decimals: m.Decimals, Vault: vault}
	addr, err := h.Address()
	if err != nil {
		return nil, err
	}
	switch stored, err := c.holdings.Get(db, addr); {
	case err == nil:
		if err := checkHolds(m, stored); err != nil {
			return nil, err
		}
		return stored, nil
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}
	if err := c.holdings.Put(db, addr, h); err != nil {
		return nil, errors.Wrap(err, "cannot open holding")
	}
	return h, nil
}

// Holding returns the holding of ticker owned by owner. It fails with
// ErrNotFound if there is none.
func (c Controller) Holding(db tokenswap.ReadOnlyKVStore, owner tokenswap.Address, ticker string) (*Holding, error) {
	addr, err := Address(owner, ticker)
	if err != nil {
		return nil, err
	}
	return c.holdings.Get(db, addr)
}

// Vault returns the vault of ticker owned by owner. It fails with
// ErrNotFound if there is none.
func (c Controller) Vault(db tokenswap.ReadOnlyKVStore, owner tokenswap.Address, ticker string) (*Holding, error) {
	addr, err := VaultAddress(owner, ticker)
	if err != nil {
		return nil, err
	}
	return c.holdings.Get(db, addr)
}

// Balance returns the balance of ticker owned by owner. A missing holding
// has zero balance.
func (c Controller) Balance(db tokenswap.ReadOnlyKVStore, owner tokenswap.Address, ticker string) (uint64, error) {
	switch h, err := c.Holding(db, owner, ticker); {
	case err == nil:
		return h.Balance, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

// Issue creates amount of new supply of ticker in the holding of owner.
// Authorization of the mint authority is a concern of the caller.
func (c Controller) Issue(db tokenswap.KVStore, owner tokenswap.Address, ticker string, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "issue of zero")
	}
	h, err := c.Open(db, owner, ticker)
	if err != nil {
		return err
	}
	if h.Balance+amount < h.Balance {
		return errors.Wrap(errors.ErrOverflow, "balance")
	}
	h.Balance += amount
	return c.holdings.Save(db, h)
}

func (c Controller) load(db tokenswap.ReadOnlyKVStore, addr tokenswap.Address, name string) (*Holding, error) {
	h, err := c.holdings.Get(db, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", name, addr)
	}
	return h, nil
}

// authorize checks that authority owns h and that it either signed the
// request or is proven by a derivation.
func (c Controller) authorize(ctx tokenswap.Context, h *Holding, authority tokenswap.Address, proof *tokenswap.Derivation) error {
	if !h.Owner.Equals(authority) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is not the holding owner", authority)
	}
	if proof != nil {
		if !proof.Proves(authority) {
			return errors.Wrap(errors.ErrUnauthorized, "derivation does not prove the authority")
		}
		return nil
	}
	if !c.auth.HasAddress(ctx, authority) {
		return errors.Wrapf(errors.ErrUnauthorized, "%s did not sign", authority)
	}
	return nil
}

func checkHolds(m *mint.Mint, h *Holding) error {
	if h.Mint != m.Ticker {
		return errors.Wrapf(mint.ErrInvalidTokenMint, "holding of %s, want %s", h.Mint, m.Ticker)
	}
	if h.Decimals != m.Decimals {
		return errors.Wrapf(ErrInvalidTokenDecimals, "holding has %d decimals, mint %s has %d",
			h.Decimals, m.Ticker, m.Decimals)
	}
	return nil
}
