package swapd

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/tokenswap/crypto"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/weavetest"
	"github.com/iov-one/tokenswap/x/holding"
	"github.com/iov-one/tokenswap/x/offer"
	"github.com/iov-one/tokenswap/x/sigs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxSignBytesIgnoreSignatures(t *testing.T) {
	key := crypto.GenPrivKeyEd25519()
	tx := &Tx{Msg: &offer.TakeOfferMsg{Maker: key.PublicKey().Address(), OfferID: 3}}
	unsigned, err := tx.GetSignBytes()
	require.NoError(t, err)

	sig, err := sigs.SignTx(key, tx, "test-chain", 0)
	require.NoError(t, err)
	tx.Signatures = append(tx.Signatures, sig)
	signed, err := tx.GetSignBytes()
	require.NoError(t, err)
	assert.Equal(t, unsigned, signed)

	raw, err := tx.Marshal()
	require.NoError(t, err)
	decoded, err := TxDecoder(raw)
	require.NoError(t, err)
	msg, err := decoded.GetMsg()
	require.NoError(t, err)
	assert.Equal(t, tx.Msg, msg)
	assert.Equal(t, "offer/take", msg.Path())
	require.Len(t, decoded.(*Tx).GetSignatures(), 1)
	assert.Equal(t, sig.Pubkey, decoded.(*Tx).GetSignatures()[0].Pubkey)
}

func TestTxWireFormat(t *testing.T) {
	closeMsg := &holding.CloseMsg{Mint: "XXX"}
	first, err := closeMsg.Marshal()
	require.NoError(t, err)

	// field 32, length delimited
	want := proto.NewBuffer(nil)
	require.NoError(t, want.EncodeVarint(32<<3|proto.WireBytes))
	require.NoError(t, want.EncodeRawBytes(first))
	raw, err := (&Tx{Msg: closeMsg}).Marshal()
	require.NoError(t, err)
	assert.Equal(t, want.Bytes(), raw)

	// a second message field replaces the first one
	cancelMsg := &offer.CancelOfferMsg{OfferID: 1}
	second, err := cancelMsg.Marshal()
	require.NoError(t, err)
	require.NoError(t, want.EncodeVarint(43<<3|proto.WireBytes))
	require.NoError(t, want.EncodeRawBytes(second))

	decoded, err := TxDecoder(want.Bytes())
	require.NoError(t, err)
	msg, err := decoded.GetMsg()
	require.NoError(t, err)
	assert.Equal(t, cancelMsg, msg)

	// signatures cover the message that is executed
	signBytes, err := decoded.(*Tx).GetSignBytes()
	require.NoError(t, err)
	expected, err := (&Tx{Msg: cancelMsg}).Marshal()
	require.NoError(t, err)
	assert.Equal(t, expected, signBytes)
}

func TestEmptyTx(t *testing.T) {
	tx, err := TxDecoder(nil)
	require.NoError(t, err)
	_, err = tx.GetMsg()
	assert.True(t, errors.ErrState.Is(err), "got %+v", err)

	_, err = (&Tx{Msg: &weavetest.Msg{RoutePath: "test/unknown"}}).Marshal()
	assert.True(t, errors.ErrMsg.Is(err), "got %+v", err)
}

func TestExamplesEncode(t *testing.T) {
	for _, ex := range Examples() {
		raw, err := ex.Obj.Marshal()
		require.NoError(t, err, ex.Filename)
		if tx, ok := ex.Obj.(*Tx); ok {
			decoded, err := TxDecoder(raw)
			require.NoError(t, err, ex.Filename)
			assert.Equal(t, tx.Signatures, decoded.(*Tx).Signatures, ex.Filename)
		}
	}
}
