package offer

import (
	"context"
	"testing"

	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/store"
	"github.com/iov-one/tokenswap/weavetest"
	"github.com/iov-one/tokenswap/x/holding"
	"github.com/iov-one/tokenswap/x/mint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture is a store with two mints, XXX without decimals and YYY with two
// decimals. The maker holds 100 XXX and the taker holds 50 YYY.
type fixture struct {
	db       tokenswap.CacheableKVStore
	auth     *weavetest.CtxAuth
	holdings holding.Controller
	ctrl     Controller

	maker    tokenswap.Condition
	taker    tokenswap.Condition
	stranger tokenswap.Condition
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	f := &fixture{
		db:       store.MemStore(),
		auth:     &weavetest.CtxAuth{Key: "auth"},
		maker:    weavetest.NewCondition(),
		taker:    weavetest.NewCondition(),
		stranger: weavetest.NewCondition(),
	}
	f.holdings = holding.NewController(f.auth)
	f.ctrl = NewController(f.auth, f.holdings)

	authority := weavetest.NewCondition().Address()
	mints := mint.NewBucket()
	require.NoError(t, mints.Create(f.db, &mint.Mint{Ticker: "XXX", Name: "x token", Authority: authority}))
	require.NoError(t, mints.Create(f.db, &mint.Mint{Ticker: "YYY", Name: "y token", Decimals: 2, Authority: authority}))
	require.NoError(t, f.holdings.Issue(f.db, f.maker.Address(), "XXX", 100))
	require.NoError(t, f.holdings.Issue(f.db, f.taker.Address(), "YYY", 50))
	return f
}

// signed returns a context authenticated by given conditions.
func (f *fixture) signed(conds ...tokenswap.Condition) tokenswap.Context {
	return f.auth.SetConditions(context.Background(), conds...)
}

func (f *fixture) balance(t testing.TB, owner tokenswap.Condition, ticker string) uint64 {
	t.Helper()
	return f.balanceOf(t, owner.Address(), ticker)
}

func (f *fixture) balanceOf(t testing.TB, owner tokenswap.Address, ticker string) uint64 {
	t.Helper()
	b, err := f.holdings.Balance(f.db, owner, ticker)
	require.NoError(t, err)
	return b
}

func (f *fixture) make(t testing.TB, id uint64, amountA, amountB uint64) *Offer {
	t.Helper()
	o, err := f.ctrl.Make(f.signed(f.maker), f.db, f.maker.Address(), id, "XXX", "YYY", amountA, amountB)
	require.NoError(t, err)
	return o
}

func (f *fixture) vaultBalance(t testing.TB, id uint64) uint64 {
	t.Helper()
	v, err := f.ctrl.Vault(f.db, f.maker.Address(), id)
	require.NoError(t, err)
	return v.Balance
}

func assertGone(t testing.TB, f *fixture, id uint64) {
	t.Helper()
	_, err := f.ctrl.Get(f.db, f.maker.Address(), id)
	assert.True(t, errors.ErrNotFound.Is(err), "offer still resolves: %+v", err)
	assert.True(t, ErrOfferAlreadyTaken.Is(err), "want offer already taken: %+v", err)

	d, err := Derive(f.maker.Address(), id)
	require.NoError(t, err)
	_, err = f.holdings.Vault(f.db, d.Address(), "XXX")
	assert.True(t, errors.ErrNotFound.Is(err), "vault still exists: %+v", err)
}

func TestMakeOffer(t *testing.T) {
	f := newFixture(t)
	o := f.make(t, 1, 60, 30)

	d, err := Derive(f.maker.Address(), 1)
	require.NoError(t, err)
	assert.Equal(t, d.Address(), o.Address())
	assert.Equal(t, uint32(d.Nonce), o.Nonce)
	require.NoError(t, o.Derivation().Verify())

	got, err := f.ctrl.Get(f.db, f.maker.Address(), 1)
	require.NoError(t, err)
	assert.Equal(t, &Offer{
		ID:      1,
		Maker:   f.maker.Address(),
		MintA:   "XXX",
		MintB:   "YYY",
		AmountA: 60,
		AmountB: 30,
		Nonce:   uint32(d.Nonce),
	}, got)

	assert.Equal(t, uint64(60), f.vaultBalance(t, 1))
	assert.Equal(t, uint64(40), f.balance(t, f.maker, "XXX"))

	vault, err := f.ctrl.Vault(f.db, f.maker.Address(), 1)
	require.NoError(t, err)
	assert.Equal(t, o.Address(), vault.Owner, "vault must be owned by the offer")
}

func TestMakeOfferFailures(t *testing.T) {
	cases := map[string]struct {
		signer  func(f *fixture) tokenswap.Condition
		id      uint64
		mintA   string
		mintB   string
		amountA uint64
		amountB uint64
		wantErr *errors.Error
	}{
		"same mint": {
			mintA:   "XXX",
			mintB:   "XXX",
			amountA: 10,
			amountB: 10,
			wantErr: ErrInvalidTokenMint,
		},
		"nothing offered": {
			mintA:   "XXX",
			mintB:   "YYY",
			amountA: 0,
			amountB: 10,
			wantErr: ErrInvalidAmount,
		},
		"nothing wanted": {
			mintA:   "XXX",
			mintB:   "YYY",
			amountA: 10,
			amountB: 0,
			wantErr: ErrInvalidAmount,
		},
		"offered more than owned": {
			mintA:   "XXX",
			mintB:   "YYY",
			amountA: 101,
			amountB: 10,
			wantErr: ErrInsufficientMakerBalance,
		},
		"offered mint not held": {
			mintA:   "YYY",
			mintB:   "XXX",
			amountA: 1,
			amountB: 10,
			wantErr: ErrInsufficientMakerBalance,
		},
		"unknown wanted mint": {
			mintA:   "XXX",
			mintB:   "ZZZ",
			amountA: 10,
			amountB: 10,
			wantErr: ErrInvalidTokenMint,
		},
		"maker did not sign": {
			signer:  func(f *fixture) tokenswap.Condition { return f.stranger },
			mintA:   "XXX",
			mintB:   "YYY",
			amountA: 10,
			amountB: 10,
			wantErr: errors.ErrUnauthorized,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			signer := f.maker
			if tc.signer != nil {
				signer = tc.signer(f)
			}
			_, err := f.ctrl.Make(f.signed(signer), f.db, f.maker.Address(), tc.id, tc.mintA, tc.mintB, tc.amountA, tc.amountB)
			require.Error(t, err)
			assert.True(t, tc.wantErr.Is(err), "got %+v", err)

			// Nothing may be left behind.
			_, err = f.ctrl.Get(f.db, f.maker.Address(), tc.id)
			assert.True(t, errors.ErrNotFound.Is(err))
			assert.Equal(t, uint64(100), f.balance(t, f.maker, "XXX"))
			open, err := f.ctrl.open.Get(f.db, f.maker.Address())
			require.NoError(t, err)
			assert.Equal(t, uint64(0), open)
		})
	}
}

func TestMakeDuplicateOffer(t *testing.T) {
	f := newFixture(t)
	f.make(t, 7, 10, 10)

	_, err := f.ctrl.Make(f.signed(f.maker), f.db, f.maker.Address(), 7, "XXX", "YYY", 20, 20)
	assert.True(t, errors.ErrDuplicate.Is(err), "got %+v", err)
	assert.Equal(t, uint64(10), f.vaultBalance(t, 7))
	assert.Equal(t, uint64(90), f.balance(t, f.maker, "XXX"))

	// The same ID of another maker is a different offer.
	require.NoError(t, f.holdings.Issue(f.db, f.stranger.Address(), "XXX", 5))
	_, err = f.ctrl.Make(f.signed(f.stranger), f.db, f.stranger.Address(), 7, "XXX", "YYY", 5, 5)
	require.NoError(t, err)
}

func TestSendToOfferAddressDoesNotFundVault(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.holdings.Issue(f.db, f.stranger.Address(), "XXX", 5))
	d, err := Derive(f.maker.Address(), 3)
	require.NoError(t, err)

	// a stranger credits the address of an offer that does not exist yet
	_, err = f.holdings.Open(f.db, d.Address(), "XXX")
	require.NoError(t, err)
	require.NoError(t, f.holdings.Transfer(f.signed(f.stranger), f.db, holding.Transfer{
		From:      mustHoldingAddr(t, f.stranger.Address(), "XXX"),
		To:        mustHoldingAddr(t, d.Address(), "XXX"),
		Amount:    1,
		Mint:      "XXX",
		Authority: f.stranger.Address(),
	}))

	f.make(t, 3, 10, 10)
	assert.Equal(t, uint64(10), f.vaultBalance(t, 3))
	assert.Equal(t, uint64(1), f.balanceOf(t, d.Address(), "XXX"))

	_, err = f.ctrl.Take(f.signed(f.taker), f.db, f.taker.Address(), f.maker.Address(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), f.balance(t, f.taker, "XXX"))
	assertGone(t, f, 3)
}

func TestTakeOffer(t *testing.T) {
	f := newFixture(t)
	f.make(t, 1, 100, 50)
	assert.Equal(t, uint64(0), f.balance(t, f.maker, "XXX"))
	assert.Equal(t, uint64(100), f.vaultBalance(t, 1))

	settled, err := f.ctrl.Take(f.signed(f.taker), f.db, f.taker.Address(), f.maker.Address(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), settled.ID)

	assert.Equal(t, uint64(100), f.balance(t, f.taker, "XXX"))
	assert.Equal(t, uint64(0), f.balance(t, f.taker, "YYY"))
	assert.Equal(t, uint64(50), f.balance(t, f.maker, "YYY"))
	assert.Equal(t, uint64(0), f.balance(t, f.maker, "XXX"))
	assertGone(t, f, 1)

	open, err := f.ctrl.open.Get(f.db, f.maker.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), open)
}

func TestTakeOfferFailures(t *testing.T) {
	cases := map[string]struct {
		// prepare runs after the offer was made and before it is taken.
		prepare func(t *testing.T, f *fixture)
		signer  func(f *fixture) tokenswap.Condition
		wantErr *errors.Error
	}{
		"insufficient taker balance": {
			prepare: func(t *testing.T, f *fixture) {
				_, err := f.holdings.Open(f.db, f.maker.Address(), "YYY")
				require.NoError(t, err)
				ctx := f.signed(f.taker)
				require.NoError(t, f.holdings.Transfer(ctx, f.db, holding.Transfer{
					From:      mustHoldingAddr(t, f.taker.Address(), "YYY"),
					To:        mustHoldingAddr(t, f.maker.Address(), "YYY"),
					Amount:    1,
					Mint:      "YYY",
					Authority: f.taker.Address(),
				}))
			},
			wantErr: ErrInsufficientTakerBalance,
		},
		"taker did not sign": {
			signer:  func(f *fixture) tokenswap.Condition { return f.stranger },
			wantErr: errors.ErrUnauthorized,
		},
		"empty vault": {
			prepare: func(t *testing.T, f *fixture) {
				drainVault(t, f, 1)
			},
			wantErr: ErrEmptyVault,
		},
		"vault precision changed": {
			prepare: func(t *testing.T, f *fixture) {
				changeDecimals(t, f, "XXX", 3)
			},
			wantErr: ErrInvalidTokenDecimals,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.make(t, 1, 100, 50)
			if tc.prepare != nil {
				tc.prepare(t, f)
			}
			takerY := f.balance(t, f.taker, "YYY")
			makerY := f.balance(t, f.maker, "YYY")
			vault, err := f.ctrl.Vault(f.db, f.maker.Address(), 1)
			require.NoError(t, err)

			signer := f.taker
			if tc.signer != nil {
				signer = tc.signer(f)
			}
			_, err = f.ctrl.Take(f.signed(signer), f.db, f.taker.Address(), f.maker.Address(), 1)
			require.Error(t, err)
			assert.True(t, tc.wantErr.Is(err), "got %+v", err)

			// The offer stays open and no leg of the swap is applied.
			_, err = f.ctrl.Get(f.db, f.maker.Address(), 1)
			require.NoError(t, err)
			after, err := f.ctrl.Vault(f.db, f.maker.Address(), 1)
			require.NoError(t, err)
			assert.Equal(t, vault.Balance, after.Balance)
			assert.Equal(t, takerY, f.balance(t, f.taker, "YYY"))
			assert.Equal(t, makerY, f.balance(t, f.maker, "YYY"))
			assert.Equal(t, uint64(0), f.balance(t, f.taker, "XXX"))
		})
	}
}

func TestRefundOffer(t *testing.T) {
	for _, op := range []string{"refund", "cancel"} {
		t.Run(op, func(t *testing.T) {
			f := newFixture(t)
			f.make(t, 4, 70, 10)
			withdraw := f.ctrl.Refund
			if op == "cancel" {
				withdraw = f.ctrl.Cancel
			}

			_, err := withdraw(f.signed(f.stranger), f.db, f.stranger.Address(), f.maker.Address(), 4)
			assert.True(t, ErrUnauthorizedRefund.Is(err), "stranger: %+v", err)

			// Naming the maker without its signature is not enough.
			_, err = withdraw(f.signed(f.stranger), f.db, f.maker.Address(), f.maker.Address(), 4)
			assert.True(t, ErrUnauthorizedRefund.Is(err), "unsigned maker: %+v", err)
			assert.Equal(t, uint64(70), f.vaultBalance(t, 4))

			o, err := withdraw(f.signed(f.maker), f.db, f.maker.Address(), f.maker.Address(), 4)
			require.NoError(t, err)
			assert.Equal(t, uint64(4), o.ID)
			assert.Equal(t, uint64(100), f.balance(t, f.maker, "XXX"))
			assertGone(t, f, 4)
		})
	}
}

func TestRefundEmptyVault(t *testing.T) {
	f := newFixture(t)
	f.make(t, 1, 10, 10)
	drainVault(t, f, 1)

	_, err := f.ctrl.Refund(f.signed(f.maker), f.db, f.maker.Address(), f.maker.Address(), 1)
	assert.True(t, ErrEmptyVault.Is(err), "got %+v", err)
	_, err = f.ctrl.Get(f.db, f.maker.Address(), 1)
	require.NoError(t, err)
}

func TestRefundReopensClosedHolding(t *testing.T) {
	f := newFixture(t)
	f.make(t, 1, 100, 10)

	addr := mustHoldingAddr(t, f.maker.Address(), "XXX")
	require.NoError(t, f.holdings.Close(f.signed(f.maker), f.db, holding.Close{
		Holding:     addr,
		Authority:   f.maker.Address(),
		Destination: f.maker.Address(),
	}))

	_, err := f.ctrl.Refund(f.signed(f.maker), f.db, f.maker.Address(), f.maker.Address(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), f.balance(t, f.maker, "XXX"))
}

func TestRefundIntoMismatchedHolding(t *testing.T) {
	f := newFixture(t)
	f.make(t, 1, 60, 10)

	// maker holding out of step with the mint precision
	require.NoError(t, holding.NewBucket().Save(f.db, &holding.Holding{
		Owner:    f.maker.Address(),
		Mint:     "XXX",
		Decimals: 3,
		Balance:  40,
	}))

	_, err := f.ctrl.Refund(f.signed(f.maker), f.db, f.maker.Address(), f.maker.Address(), 1)
	assert.True(t, holding.ErrInvalidTokenDecimals.Is(err), "got %+v", err)
	assert.Equal(t, uint64(60), f.vaultBalance(t, 1))
}

func TestSettleOnlyOnce(t *testing.T) {
	type settle func(f *fixture) error
	take := func(f *fixture) error {
		_, err := f.ctrl.Take(f.signed(f.taker), f.db, f.taker.Address(), f.maker.Address(), 1)
		return err
	}
	refund := func(f *fixture) error {
		_, err := f.ctrl.Refund(f.signed(f.maker), f.db, f.maker.Address(), f.maker.Address(), 1)
		return err
	}
	cancel := func(f *fixture) error {
		_, err := f.ctrl.Cancel(f.signed(f.maker), f.db, f.maker.Address(), f.maker.Address(), 1)
		return err
	}

	cases := map[string]struct {
		first, second settle
	}{
		"take twice":          {first: take, second: take},
		"refund twice":        {first: refund, second: refund},
		"cancel twice":        {first: cancel, second: cancel},
		"refund after take":   {first: take, second: refund},
		"take after cancel":   {first: cancel, second: take},
		"cancel after refund": {first: refund, second: cancel},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			// Enough to take the offer twice if it were possible.
			require.NoError(t, f.holdings.Issue(f.db, f.taker.Address(), "YYY", 50))
			f.make(t, 1, 10, 10)

			require.NoError(t, tc.first(f))
			takerX := f.balance(t, f.taker, "XXX")
			makerX := f.balance(t, f.maker, "XXX")

			err := tc.second(f)
			assert.True(t, errors.ErrNotFound.Is(err), "got %+v", err)
			assert.True(t, ErrOfferAlreadyTaken.Is(err), "got %+v", err)
			assert.Equal(t, takerX, f.balance(t, f.taker, "XXX"))
			assert.Equal(t, makerX, f.balance(t, f.maker, "XXX"))
		})
	}
}

func TestMaxOffersPerMaker(t *testing.T) {
	f := newFixture(t)
	for id := uint64(1); id <= MaxOffersPerMaker; id++ {
		f.make(t, id, 1, 1)
	}
	assert.Equal(t, uint64(0), f.balance(t, f.maker, "XXX"))
	require.NoError(t, f.holdings.Issue(f.db, f.maker.Address(), "XXX", 1))

	_, err := f.ctrl.Make(f.signed(f.maker), f.db, f.maker.Address(), 1000, "XXX", "YYY", 1, 1)
	assert.True(t, ErrTooManyOffers.Is(err), "got %+v", err)

	// Settling an offer frees a slot.
	_, err = f.ctrl.Refund(f.signed(f.maker), f.db, f.maker.Address(), f.maker.Address(), 1)
	require.NoError(t, err)
	f.make(t, 1000, 2, 1)
}

func TestConfiguration(t *testing.T) {
	f := newFixture(t)
	conf, err := f.ctrl.Configuration(f.db)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfiguration(), conf)

	require.NoError(t, NewConfigurationBucket().Save(f.db, Configuration{MinTransferAmount: 10, MaxOffersPerMaker: 2}))

	_, err = f.ctrl.Make(f.signed(f.maker), f.db, f.maker.Address(), 1, "XXX", "YYY", 9, 10)
	assert.True(t, ErrInvalidAmount.Is(err), "got %+v", err)
	_, err = f.ctrl.Make(f.signed(f.maker), f.db, f.maker.Address(), 1, "XXX", "YYY", 10, 9)
	assert.True(t, ErrInvalidAmount.Is(err), "got %+v", err)

	f.make(t, 1, 10, 10)
	f.make(t, 2, 10, 10)
	_, err = f.ctrl.Make(f.signed(f.maker), f.db, f.maker.Address(), 3, "XXX", "YYY", 10, 10)
	assert.True(t, ErrTooManyOffers.Is(err), "got %+v", err)

	err = NewConfigurationBucket().Save(f.db, Configuration{MaxOffersPerMaker: 2})
	assert.True(t, errors.ErrAmount.Is(err), "zero minimum accepted: %+v", err)
}

func TestOfferSerialization(t *testing.T) {
	o := Offer{
		ID:      1 << 40,
		Maker:   weavetest.NewCondition().Address(),
		MintA:   "ABC",
		MintB:   "DEF",
		AmountA: 12,
		AmountB: 34,
		Nonce:   254,
	}
	raw, err := o.Marshal()
	require.NoError(t, err)
	var got Offer
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, o, got)
}

func TestOfferWireFormat(t *testing.T) {
	o := Offer{
		ID:      7,
		Maker:   tokenswap.Address("maker"),
		MintA:   "XXX",
		MintB:   "YYY",
		AmountA: 1,
		AmountB: 2,
		Nonce:   254,
	}
	raw, err := o.Marshal()
	require.NoError(t, err)

	want := []byte{0x08, 0x07, 0x12, 0x05}
	want = append(want, "maker"...)
	want = append(want, 0x1a, 0x03)
	want = append(want, "XXX"...)
	want = append(want, 0x22, 0x03)
	want = append(want, "YYY"...)
	want = append(want, 0x28, 0x01, 0x30, 0x02, 0x38, 0xfe, 0x01)
	assert.Equal(t, want, raw)

	// zero values are not written
	raw, err = (&Offer{MintA: "XXX"}).Marshal()
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0x1a, 0x03}, "XXX"...), raw)
}

func mustHoldingAddr(t testing.TB, owner tokenswap.Address, ticker string) tokenswap.Address {
	t.Helper()
	addr, err := holding.Address(owner, ticker)
	require.NoError(t, err)
	return addr
}

// drainVault sets the vault balance to zero, bypassing the controller.
func drainVault(t testing.TB, f *fixture, id uint64) {
	t.Helper()
	v, err := f.ctrl.Vault(f.db, f.maker.Address(), id)
	require.NoError(t, err)
	v.Balance = 0
	require.NoError(t, holding.NewBucket().Save(f.db, v))
}

// changeDecimals replaces the precision of a registered mint.
func changeDecimals(t testing.TB, f *fixture, ticker string, decimals uint32) {
	t.Helper()
	b := mint.NewBucket()
	m, err := b.Get(f.db, ticker)
	require.NoError(t, err)
	m.Decimals = decimals
	require.NoError(t, b.Put(f.db, []byte(ticker), m))
}
