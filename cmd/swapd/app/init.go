package swapd

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/app"
	"github.com/iov-one/tokenswap/crypto"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/holding"
	"github.com/iov-one/tokenswap/x/mint"
	"github.com/iov-one/tokenswap/x/offer"
	"github.com/stellar/go/exp/crypto/derivation"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// DefaultTicker is the mint created by GenInitOptions when no ticker is
// given.
const DefaultTicker = "SWP"

// appState is the layout of the genesis app_state understood by the
// initializers of this application.
type appState struct {
	Offer    offer.Configuration      `json:"offer"`
	Mints    []mint.GenesisMint       `json:"mints"`
	Holdings []holding.GenesisHolding `json:"holdings"`
}

// GenInitOptions produces the app_state of a dev chain: a single mint and
// one rich account owning it.
//
// args may hold the ticker and the hex encoded owner address. When no
// address is given a new key is generated and printed to out, so it can be
// imported into a client.
func GenInitOptions(out io.Writer, args []string) (json.RawMessage, error) {
	ticker := DefaultTicker
	if len(args) > 0 {
		ticker = args[0]
		if !mint.IsTicker(ticker) {
			return nil, errors.Wrapf(mint.ErrInvalidTokenMint, "ticker %q", ticker)
		}
	}

	var owner tokenswap.Address
	if len(args) > 1 {
		raw, err := hex.DecodeString(args[1])
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "address %q", args[1])
		}
		owner = tokenswap.Address(raw)
		if err := owner.Validate(); err != nil {
			return nil, err
		}
	} else {
		addr, keys, err := GenerateKey()
		if err != nil {
			return nil, err
		}
		owner = addr
		fmt.Fprintln(out, keys)
	}

	state := appState{
		Offer: offer.DefaultConfiguration(),
		Mints: []mint.GenesisMint{
			{Ticker: ticker, Name: ticker + " token", Decimals: 9, Authority: owner},
		},
		Holdings: []holding.GenesisHolding{
			{Owner: owner, Mint: ticker, Amount: "123456789"},
		},
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(opts Options) (abci.Application, error) {
	kv, err := CommitKVStore(opts.Backend, opts.Home, opts.Logger)
	if err != nil {
		return nil, err
	}
	return Application(Stack(opts.Metrics), kv, opts.Logger, opts.Debug)
}

// Options configures the application built by GenerateApp.
type Options struct {
	// Home is the directory holding the data dir. Empty for a memory
	// store.
	Home    string
	Backend string
	Logger  log.Logger
	Debug   bool
	// Metrics is optional.
	Metrics *app.Metrics
}

// KeyPath is the SLIP-10 path keys are derived for from a wallet seed.
const KeyPath = "m/44'/234'/0'"

// AddressPrefix is the human readable part of bech32 addresses.
const AddressPrefix = "swap"

type output struct {
	Address tokenswap.Address `json:"address"`
	Bech32  string            `json:"bech32"`
	Seed    string            `json:"seed"`
	Pubkey  string            `json:"pub_key"`
	Secret  string            `json:"secret"`
}

// DeriveKey returns the ed25519 key found at KeyPath for the seed.
func DeriveKey(seed []byte) (*crypto.PrivateKey, error) {
	k, err := derivation.DeriveForPath(KeyPath, seed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "derive key: %s", err)
	}
	return crypto.PrivKeyEd25519FromSeed(k.Key)
}

// GenerateKey returns the address of a key derived from a new random
// seed, along with a json representation of the seed and keys. Fund
// this address in genesis and import the keys in a client to use them.
func GenerateKey() (tokenswap.Address, string, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, "", errors.Wrap(errors.ErrInput, err.Error())
	}
	privKey, err := DeriveKey(seed)
	if err != nil {
		return nil, "", err
	}
	pubKey := privKey.PublicKey()
	addr := pubKey.Address()
	b32, err := addr.Bech32(AddressPrefix)
	if err != nil {
		return nil, "", err
	}

	out := output{
		Address: addr,
		Bech32:  b32,
		Seed:    hex.EncodeToString(seed),
		Pubkey:  hex.EncodeToString(pubKey.Ed25519),
		Secret:  hex.EncodeToString(privKey.Ed25519),
	}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrInput, err.Error())
	}
	return addr, string(keys), nil
}
