package swapd

import (
	"github.com/gogo/protobuf/proto"
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/codec"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/holding"
	"github.com/iov-one/tokenswap/x/mint"
	"github.com/iov-one/tokenswap/x/offer"
	"github.com/iov-one/tokenswap/x/sigs"
)

// Tx is the transaction format of swapd. It carries exactly one message
// and the signatures authorizing it.
//
// On the wire every message type has its own field of a protobuf oneof.
// As with any oneof, when the input sets more than one of them the last
// one is kept.
type Tx struct {
	Signatures []*sigs.StdSignature
	Msg        tokenswap.Msg
}

// make sure tx fulfills all interfaces
var _ tokenswap.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (tokenswap.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, err
	}
	return tx, nil
}

// GetMsg returns the single message of this transaction.
func (tx *Tx) GetMsg() (tokenswap.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrState, "empty transaction")
	}
	return tx.Msg, nil
}

// GetSignatures returns the signatures of this transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the bytes to sign: the serialized transaction
// without any signatures.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	unsigned := Tx{Msg: tx.Msg}
	return unsigned.Marshal()
}

func (tx *Tx) Marshal() ([]byte, error) {
	sum, err := wrapMsg(tx.Msg)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(&txMsg{Signatures: tx.Signatures, Sum: sum})
}

func (tx *Tx) Unmarshal(raw []byte) error {
	*tx = Tx{}
	var m txMsg
	if err := codec.Unmarshal(raw, &m); err != nil {
		return err
	}
	tx.Signatures = m.Signatures
	tx.Msg = unwrapMsg(m.Sum)
	return nil
}

// txMsg is the wire form of Tx. Every supported message type has its own
// field of the sum, and at most one of them is set.
type txMsg struct {
	Signatures []*sigs.StdSignature `protobuf:"bytes,1,rep,name=signatures,proto3" json:"signatures,omitempty"`
	Sum        isTxSum              `protobuf_oneof:"sum"`
}

func (m *txMsg) Reset()         { *m = txMsg{} }
func (m *txMsg) String() string { return proto.CompactTextString(m) }
func (*txMsg) ProtoMessage()    {}

// XXX_OneofWrappers lists the sum types for gogo.
func (*txMsg) XXX_OneofWrappers() []interface{} {
	return []interface{}{
		(*txCreateMint)(nil),
		(*txIssue)(nil),
		(*txSend)(nil),
		(*txClose)(nil),
		(*txMakeOffer)(nil),
		(*txTakeOffer)(nil),
		(*txRefundOffer)(nil),
		(*txCancelOffer)(nil),
	}
}

type isTxSum interface {
	isTxSum()
}

type txCreateMint struct {
	CreateMintMsg *mint.CreateMintMsg `protobuf:"bytes,20,opt,name=create_mint_msg,proto3,oneof"`
}
type txIssue struct {
	IssueMsg *holding.IssueMsg `protobuf:"bytes,30,opt,name=issue_msg,proto3,oneof"`
}
type txSend struct {
	SendMsg *holding.SendMsg `protobuf:"bytes,31,opt,name=send_msg,proto3,oneof"`
}
type txClose struct {
	CloseMsg *holding.CloseMsg `protobuf:"bytes,32,opt,name=close_msg,proto3,oneof"`
}
type txMakeOffer struct {
	MakeOfferMsg *offer.MakeOfferMsg `protobuf:"bytes,40,opt,name=make_offer_msg,proto3,oneof"`
}
type txTakeOffer struct {
	TakeOfferMsg *offer.TakeOfferMsg `protobuf:"bytes,41,opt,name=take_offer_msg,proto3,oneof"`
}
type txRefundOffer struct {
	RefundOfferMsg *offer.RefundOfferMsg `protobuf:"bytes,42,opt,name=refund_offer_msg,proto3,oneof"`
}
type txCancelOffer struct {
	CancelOfferMsg *offer.CancelOfferMsg `protobuf:"bytes,43,opt,name=cancel_offer_msg,proto3,oneof"`
}

func (*txCreateMint) isTxSum()  {}
func (*txIssue) isTxSum()       {}
func (*txSend) isTxSum()        {}
func (*txClose) isTxSum()       {}
func (*txMakeOffer) isTxSum()   {}
func (*txTakeOffer) isTxSum()   {}
func (*txRefundOffer) isTxSum() {}
func (*txCancelOffer) isTxSum() {}

// wrapMsg returns the sum field holding msg. A nil msg leaves the sum
// empty.
func wrapMsg(msg tokenswap.Msg) (isTxSum, error) {
	switch m := msg.(type) {
	case nil:
		return nil, nil
	case *mint.CreateMintMsg:
		return &txCreateMint{CreateMintMsg: m}, nil
	case *holding.IssueMsg:
		return &txIssue{IssueMsg: m}, nil
	case *holding.SendMsg:
		return &txSend{SendMsg: m}, nil
	case *holding.CloseMsg:
		return &txClose{CloseMsg: m}, nil
	case *offer.MakeOfferMsg:
		return &txMakeOffer{MakeOfferMsg: m}, nil
	case *offer.TakeOfferMsg:
		return &txTakeOffer{TakeOfferMsg: m}, nil
	case *offer.RefundOfferMsg:
		return &txRefundOffer{RefundOfferMsg: m}, nil
	case *offer.CancelOfferMsg:
		return &txCancelOffer{CancelOfferMsg: m}, nil
	}
	return nil, errors.WithType(errors.ErrMsg, msg)
}

func unwrapMsg(sum isTxSum) tokenswap.Msg {
	switch s := sum.(type) {
	case *txCreateMint:
		return s.CreateMintMsg
	case *txIssue:
		return s.IssueMsg
	case *txSend:
		return s.SendMsg
	case *txClose:
		return s.CloseMsg
	case *txMakeOffer:
		return s.MakeOfferMsg
	case *txTakeOffer:
		return s.TakeOfferMsg
	case *txRefundOffer:
		return s.RefundOfferMsg
	case *txCancelOffer:
		return s.CancelOfferMsg
	}
	return nil
}
