package holding

import (
	"context"
	"testing"

	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/store"
	"github.com/iov-one/tokenswap/weavetest"
	"github.com/iov-one/tokenswap/x/mint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMint(t testing.TB, db tokenswap.KVStore, ticker string, decimals uint32) *mint.Mint {
	t.Helper()
	m := &mint.Mint{
		Ticker:    ticker,
		Name:      ticker + " token",
		Decimals:  decimals,
		Authority: weavetest.NewCondition().Address(),
	}
	require.NoError(t, mint.NewBucket().Create(db, m))
	return m
}

func holdingAddr(t testing.TB, owner tokenswap.Address, ticker string) tokenswap.Address {
	t.Helper()
	addr, err := Address(owner, ticker)
	require.NoError(t, err)
	return addr
}

func TestTransfer(t *testing.T) {
	alice := weavetest.NewCondition()
	bob := weavetest.NewCondition()
	vault, err := tokenswap.FindDerivation("offer", alice.Address(), []byte{1})
	require.NoError(t, err)
	otherVault, err := tokenswap.FindDerivation("offer", alice.Address(), []byte{2})
	require.NoError(t, err)

	cases := map[string]struct {
		signers     []tokenswap.Condition
		// prepare may modify the state after the default setup.
		prepare     func(t *testing.T, db tokenswap.KVStore)
		transfer    func(t *testing.T) Transfer
		wantErr     *errors.Error
		wantFrom    uint64
		wantTo      uint64
		fromOwner   tokenswap.Address
		destination tokenswap.Address
	}{
		"signed transfer": {
			signers: []tokenswap.Condition{alice},
			transfer: func(t *testing.T) Transfer {
				return Transfer{
					From:      holdingAddr(t, alice.Address(), "ABC"),
					To:        holdingAddr(t, bob.Address(), "ABC"),
					Amount:    40,
					Mint:      "ABC",
					Authority: alice.Address(),
				}
			},
			fromOwner:   alice.Address(),
			destination: bob.Address(),
			wantFrom:    60,
			wantTo:      40,
		},
		"missing signature": {
			signers: []tokenswap.Condition{bob},
			transfer: func(t *testing.T) Transfer {
				return Transfer{
					From:      holdingAddr(t, alice.Address(), "ABC"),
					To:        holdingAddr(t, bob.Address(), "ABC"),
					Amount:    40,
					Mint:      "ABC",
					Authority: alice.Address(),
				}
			},
			wantErr: errors.ErrUnauthorized,
		},
		"authority is not the owner": {
			signers: []tokenswap.Condition{bob},
			transfer: func(t *testing.T) Transfer {
				return Transfer{
					From:      holdingAddr(t, alice.Address(), "ABC"),
					To:        holdingAddr(t, bob.Address(), "ABC"),
					Amount:    40,
					Mint:      "ABC",
					Authority: bob.Address(),
				}
			},
			wantErr: errors.ErrUnauthorized,
		},
		"insufficient balance": {
			signers: []tokenswap.Condition{alice},
			transfer: func(t *testing.T) Transfer {
				return Transfer{
					From:      holdingAddr(t, alice.Address(), "ABC"),
					To:        holdingAddr(t, bob.Address(), "ABC"),
					Amount:    101,
					Mint:      "ABC",
					Authority: alice.Address(),
				}
			},
			wantErr: errors.ErrInsufficientAmount,
		},
		"zero amount": {
			signers: []tokenswap.Condition{alice},
			transfer: func(t *testing.T) Transfer {
				return Transfer{
					From:      holdingAddr(t, alice.Address(), "ABC"),
					To:        holdingAddr(t, bob.Address(), "ABC"),
					Mint:      "ABC",
					Authority: alice.Address(),
				}
			},
			wantErr: errors.ErrAmount,
		},
		"destination not opened": {
			signers: []tokenswap.Condition{alice},
			transfer: func(t *testing.T) Transfer {
				return Transfer{
					From:      holdingAddr(t, alice.Address(), "ABC"),
					To:        holdingAddr(t, weavetest.NewCondition().Address(), "ABC"),
					Amount:    1,
					Mint:      "ABC",
					Authority: alice.Address(),
				}
			},
			wantErr: errors.ErrNotFound,
		},
		"holding of another mint": {
			signers: []tokenswap.Condition{alice},
			transfer: func(t *testing.T) Transfer {
				return Transfer{
					From:      holdingAddr(t, alice.Address(), "ABC"),
					To:        holdingAddr(t, bob.Address(), "XYZ"),
					Amount:    1,
					Mint:      "ABC",
					Authority: alice.Address(),
				}
			},
			wantErr: mint.ErrInvalidTokenMint,
		},
		"mint precision changed": {
			signers: []tokenswap.Condition{alice},
			prepare: func(t *testing.T, db tokenswap.KVStore) {
				b := mint.NewBucket()
				m, err := b.Get(db, "ABC")
				require.NoError(t, err)
				m.Decimals = 4
				require.NoError(t, b.Put(db, []byte(m.Ticker), m))
			},
			transfer: func(t *testing.T) Transfer {
				return Transfer{
					From:      holdingAddr(t, alice.Address(), "ABC"),
					To:        holdingAddr(t, bob.Address(), "ABC"),
					Amount:    1,
					Mint:      "ABC",
					Authority: alice.Address(),
				}
			},
			wantErr: ErrInvalidTokenDecimals,
		},
		"derived owner with proof": {
			transfer: func(t *testing.T) Transfer {
				return Transfer{
					From:      holdingAddr(t, vault.Address(), "ABC"),
					To:        holdingAddr(t, bob.Address(), "ABC"),
					Amount:    30,
					Mint:      "ABC",
					Authority: vault.Address(),
					Proof:     &vault,
				}
			},
			fromOwner:   vault.Address(),
			destination: bob.Address(),
			wantFrom:    20,
			wantTo:      30,
		},
		"derived owner with a proof of another address": {
			transfer: func(t *testing.T) Transfer {
				return Transfer{
					From:      holdingAddr(t, vault.Address(), "ABC"),
					To:        holdingAddr(t, bob.Address(), "ABC"),
					Amount:    30,
					Mint:      "ABC",
					Authority: vault.Address(),
					Proof:     &otherVault,
				}
			},
			wantErr: errors.ErrUnauthorized,
		},
		"derived owner with a forged nonce": {
			transfer: func(t *testing.T) Transfer {
				forged := vault
				forged.Nonce--
				return Transfer{
					From:      holdingAddr(t, vault.Address(), "ABC"),
					To:        holdingAddr(t, bob.Address(), "ABC"),
					Amount:    30,
					Mint:      "ABC",
					Authority: vault.Address(),
					Proof:     &forged,
				}
			},
			wantErr: errors.ErrUnauthorized,
		},
		"derived owner without proof": {
			signers: []tokenswap.Condition{alice},
			transfer: func(t *testing.T) Transfer {
				return Transfer{
					From:      holdingAddr(t, vault.Address(), "ABC"),
					To:        holdingAddr(t, bob.Address(), "ABC"),
					Amount:    30,
					Mint:      "ABC",
					Authority: vault.Address(),
				}
			},
			wantErr: errors.ErrUnauthorized,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			createMint(t, db, "ABC", 2)
			createMint(t, db, "XYZ", 2)

			ctrl := NewController(&weavetest.Auth{Signers: tc.signers})
			require.NoError(t, ctrl.Issue(db, alice.Address(), "ABC", 100))
			require.NoError(t, ctrl.Issue(db, vault.Address(), "ABC", 50))
			_, err := ctrl.Open(db, bob.Address(), "ABC")
			require.NoError(t, err)
			_, err = ctrl.Open(db, bob.Address(), "XYZ")
			require.NoError(t, err)
			if tc.prepare != nil {
				tc.prepare(t, db)
			}

			err = ctrl.Transfer(context.Background(), db, tc.transfer(t))
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
				return
			}
			require.NoError(t, err)

			from, err := ctrl.Balance(db, tc.fromOwner, "ABC")
			require.NoError(t, err)
			assert.Equal(t, tc.wantFrom, from)
			to, err := ctrl.Balance(db, tc.destination, "ABC")
			require.NoError(t, err)
			assert.Equal(t, tc.wantTo, to)
		})
	}
}

func TestTransferToSelfKeepsBalance(t *testing.T) {
	db := store.MemStore()
	createMint(t, db, "ABC", 0)
	alice := weavetest.NewCondition()
	ctrl := NewController(&weavetest.Auth{Signer: alice})
	require.NoError(t, ctrl.Issue(db, alice.Address(), "ABC", 10))

	addr := holdingAddr(t, alice.Address(), "ABC")
	err := ctrl.Transfer(context.Background(), db, Transfer{
		From:      addr,
		To:        addr,
		Amount:    10,
		Mint:      "ABC",
		Authority: alice.Address(),
	})
	require.NoError(t, err)
	balance, err := ctrl.Balance(db, alice.Address(), "ABC")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), balance)
}

func TestClose(t *testing.T) {
	db := store.MemStore()
	createMint(t, db, "ABC", 0)
	alice := weavetest.NewCondition()
	bob := weavetest.NewCondition()
	ctx := context.Background()
	ctrl := NewController(&weavetest.Auth{Signer: alice})

	require.NoError(t, ctrl.Issue(db, alice.Address(), "ABC", 5))
	addr := holdingAddr(t, alice.Address(), "ABC")

	err := ctrl.Close(ctx, db, Close{Holding: addr, Authority: alice.Address(), Destination: alice.Address()})
	assert.True(t, errors.ErrState.Is(err), "non empty holding closed: %+v", err)

	_, err = ctrl.Open(db, bob.Address(), "ABC")
	require.NoError(t, err)
	require.NoError(t, ctrl.Transfer(ctx, db, Transfer{
		From:      addr,
		To:        holdingAddr(t, bob.Address(), "ABC"),
		Amount:    5,
		Mint:      "ABC",
		Authority: alice.Address(),
	}))

	err = ctrl.Close(ctx, db, Close{Holding: addr, Authority: bob.Address(), Destination: bob.Address()})
	assert.True(t, errors.ErrUnauthorized.Is(err), "got %+v", err)

	err = ctrl.Close(ctx, db, Close{Holding: addr, Authority: alice.Address()})
	assert.True(t, errors.ErrEmpty.Is(err), "missing destination: %+v", err)

	require.NoError(t, ctrl.Close(ctx, db, Close{Holding: addr, Authority: alice.Address(), Destination: alice.Address()}))
	_, err = ctrl.Holding(db, alice.Address(), "ABC")
	assert.True(t, errors.ErrNotFound.Is(err))

	err = ctrl.Close(ctx, db, Close{Holding: addr, Authority: alice.Address(), Destination: alice.Address()})
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestOpen(t *testing.T) {
	db := store.MemStore()
	createMint(t, db, "ABC", 3)
	owner := weavetest.NewCondition().Address()
	ctrl := NewController(&weavetest.Auth{})

	h, err := ctrl.Open(db, owner, "ABC")
	require.NoError(t, err)
	assert.Equal(t, &Holding{Owner: owner, Mint: "ABC", Decimals: 3}, h)

	require.NoError(t, ctrl.Issue(db, owner, "ABC", 7))
	again, err := ctrl.Open(db, owner, "ABC")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), again.Balance, "open must not reset an existing holding")

	_, err = ctrl.Open(db, owner, "NOPE")
	assert.True(t, mint.ErrInvalidTokenMint.Is(err))

	list, err := NewBucket().ByOwner(db, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ABC", list[0].Mint)
}

func TestVaultIsApartFromHolding(t *testing.T) {
	db := store.MemStore()
	createMint(t, db, "ABC", 2)
	ctrl := NewController(&weavetest.Auth{})
	d, err := tokenswap.FindDerivation("offer", weavetest.NewCondition().Address(), []byte{1})
	require.NoError(t, err)
	owner := d.Address()

	_, err = ctrl.Vault(db, owner, "ABC")
	assert.True(t, errors.ErrNotFound.Is(err))

	// credits sent to the owner do not reach its vault
	require.NoError(t, ctrl.Issue(db, owner, "ABC", 5))
	vault, err := ctrl.OpenVault(db, owner, "ABC")
	require.NoError(t, err)
	assert.True(t, vault.Vault)
	assert.Equal(t, uint64(0), vault.Balance)
	assert.Equal(t, uint32(2), vault.Decimals)

	addr, err := vault.Address()
	require.NoError(t, err)
	assert.NotEqual(t, holdingAddr(t, owner, "ABC"), addr)

	stored, err := ctrl.Vault(db, owner, "ABC")
	require.NoError(t, err)
	assert.Equal(t, vault, stored)
	balance, err := ctrl.Balance(db, owner, "ABC")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), balance)

	list, err := NewBucket().ByOwner(db, owner)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestBalanceOfMissingHolding(t *testing.T) {
	db := store.MemStore()
	createMint(t, db, "ABC", 0)
	ctrl := NewController(&weavetest.Auth{})

	balance, err := ctrl.Balance(db, weavetest.NewCondition().Address(), "ABC")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)
}

func TestIssueOverflow(t *testing.T) {
	db := store.MemStore()
	createMint(t, db, "ABC", 0)
	owner := weavetest.NewCondition().Address()
	ctrl := NewController(&weavetest.Auth{})

	require.NoError(t, ctrl.Issue(db, owner, "ABC", ^uint64(0)))
	err := ctrl.Issue(db, owner, "ABC", 1)
	assert.True(t, errors.ErrOverflow.Is(err))

	err = ctrl.Issue(db, owner, "ABC", 0)
	assert.True(t, errors.ErrAmount.Is(err))
}

func TestHoldingSerialization(t *testing.T) {
	h := Holding{
		Owner:    weavetest.NewCondition().Address(),
		Mint:     "ABC",
		Decimals: 6,
		Balance:  123456789,
	}
	raw, err := h.Marshal()
	require.NoError(t, err)
	var got Holding
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, h, got)
}
