package swapd

import (
	"encoding/hex"
	"strings"

	"github.com/iov-one/tokenswap/commands"
	"github.com/iov-one/tokenswap/crypto"
	"github.com/iov-one/tokenswap/x/holding"
	"github.com/iov-one/tokenswap/x/mint"
	"github.com/iov-one/tokenswap/x/offer"
	"github.com/iov-one/tokenswap/x/sigs"
)

// we fix the private keys here for deterministic output with the same encoding
// these are not secure at all, but the only point is to check the format,
// which is easier when everything is reproduceable.
var (
	maker = makePrivKey("1234567890")
	taker = makePrivKey("F00BA411")
)

// makePrivKey repeats the string as long as needed to get 64 digits, then
// parses it as hex. It uses this repeated string as a "random" seed
// for the private key.
func makePrivKey(seed string) *crypto.PrivateKey {
	rep := 64/len(seed) + 1
	in := strings.Repeat(seed, rep)[:64]
	bin, err := hex.DecodeString(in)
	if err != nil {
		panic(err)
	}
	key, err := crypto.PrivKeyEd25519FromSeed(bin)
	if err != nil {
		panic(err)
	}
	return key
}

// Examples generates some example structs to dump out with testgen
func Examples() []commands.Example {
	makerAddr := maker.PublicKey().Address()
	takerAddr := taker.PublicKey().Address()

	createMint := &mint.CreateMintMsg{
		Ticker:    "XXX",
		Name:      "Example X",
		Decimals:  6,
		Authority: makerAddr,
	}
	send := &holding.SendMsg{
		Mint:        "XXX",
		Source:      makerAddr,
		Destination: takerAddr,
		Amount:      2500000,
		Memo:        "Test payment",
	}
	makeMsg := &offer.MakeOfferMsg{
		OfferID: 1,
		MintA:   "XXX",
		MintB:   "YYY",
		AmountA: 1000000,
		AmountB: 250,
	}
	takeMsg := &offer.TakeOfferMsg{Maker: makerAddr, OfferID: 1}

	unsigned := Tx{Msg: makeMsg}
	signed := unsigned
	sig, err := sigs.SignTx(maker, &signed, "test-123", 17)
	if err != nil {
		panic(err)
	}
	signed.Signatures = []*sigs.StdSignature{sig}

	takeTx := Tx{Msg: takeMsg}
	sig, err = sigs.SignTx(taker, &takeTx, "test-123", 0)
	if err != nil {
		panic(err)
	}
	takeTx.Signatures = []*sigs.StdSignature{sig}

	return []commands.Example{
		{Filename: "pub_key", Obj: maker.PublicKey()},
		{Filename: "user", Obj: &sigs.UserData{Pubkey: maker.PublicKey(), Sequence: 17}},
		{Filename: "create_mint_msg", Obj: createMint},
		{Filename: "send_msg", Obj: send},
		{Filename: "make_offer_msg", Obj: makeMsg},
		{Filename: "unsigned_tx", Obj: &unsigned},
		{Filename: "signed_tx", Obj: &signed},
		{Filename: "take_offer_tx", Obj: &takeTx},
	}
}
