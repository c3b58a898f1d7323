package offer

import (
	"github.com/gogo/protobuf/proto"
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/codec"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/mint"
)

var (
	_ tokenswap.Msg = (*MakeOfferMsg)(nil)
	_ tokenswap.Msg = (*TakeOfferMsg)(nil)
	_ tokenswap.Msg = (*RefundOfferMsg)(nil)
	_ tokenswap.Msg = (*CancelOfferMsg)(nil)
)

// MakeOfferMsg opens a new offer. Maker defaults to the main signer.
type MakeOfferMsg struct {
	Maker   tokenswap.Address `protobuf:"bytes,1,opt,name=maker,proto3" json:"maker,omitempty"`
	OfferID uint64            `protobuf:"varint,2,opt,name=offer_id,proto3" json:"offer_id,omitempty"`
	MintA   string            `protobuf:"bytes,3,opt,name=mint_a,proto3" json:"mint_a,omitempty"`
	MintB   string            `protobuf:"bytes,4,opt,name=mint_b,proto3" json:"mint_b,omitempty"`
	AmountA uint64            `protobuf:"varint,5,opt,name=amount_a,proto3" json:"amount_a,omitempty"`
	AmountB uint64            `protobuf:"varint,6,opt,name=amount_b,proto3" json:"amount_b,omitempty"`
}

func (MakeOfferMsg) Path() string {
	return "offer/make"
}

func (m *MakeOfferMsg) Validate() error {
	var errs error
	if m.Maker != nil {
		errs = errors.AppendField(errs, "Maker", m.Maker.Validate())
	}
	if !mint.IsTicker(m.MintA) {
		errs = errors.AppendField(errs, "MintA", errors.Wrapf(ErrInvalidTokenMint, "ticker %q", m.MintA))
	}
	if !mint.IsTicker(m.MintB) {
		errs = errors.AppendField(errs, "MintB", errors.Wrapf(ErrInvalidTokenMint, "ticker %q", m.MintB))
	}
	if m.MintA == m.MintB {
		errs = errors.AppendField(errs, "MintB", errors.Wrap(ErrInvalidTokenMint, "same as offered mint"))
	}
	if m.AmountA == 0 {
		errs = errors.AppendField(errs, "AmountA", ErrInvalidAmount)
	}
	if m.AmountB == 0 {
		errs = errors.AppendField(errs, "AmountB", ErrInvalidAmount)
	}
	return errs
}

func (m *MakeOfferMsg) Marshal() ([]byte, error) {
	return codec.Marshal((*makeOfferMsg)(m))
}

func (m *MakeOfferMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*makeOfferMsg)(m))
}

// TakeOfferMsg settles an open offer. Taker defaults to the main signer.
type TakeOfferMsg struct {
	Taker   tokenswap.Address `protobuf:"bytes,1,opt,name=taker,proto3" json:"taker,omitempty"`
	Maker   tokenswap.Address `protobuf:"bytes,2,opt,name=maker,proto3" json:"maker,omitempty"`
	OfferID uint64            `protobuf:"varint,3,opt,name=offer_id,proto3" json:"offer_id,omitempty"`
}

func (TakeOfferMsg) Path() string {
	return "offer/take"
}

func (m *TakeOfferMsg) Validate() error {
	var errs error
	if m.Taker != nil {
		errs = errors.AppendField(errs, "Taker", m.Taker.Validate())
	}
	return errors.AppendField(errs, "Maker", m.Maker.Validate())
}

func (m *TakeOfferMsg) Marshal() ([]byte, error) {
	return codec.Marshal((*takeOfferMsg)(m))
}

func (m *TakeOfferMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*takeOfferMsg)(m))
}

// RefundOfferMsg returns the locked amount of an open offer to its maker.
// It must be signed by the maker.
type RefundOfferMsg struct {
	Maker   tokenswap.Address `protobuf:"bytes,1,opt,name=maker,proto3" json:"maker,omitempty"`
	OfferID uint64            `protobuf:"varint,2,opt,name=offer_id,proto3" json:"offer_id,omitempty"`
}

func (RefundOfferMsg) Path() string {
	return "offer/refund"
}

func (m *RefundOfferMsg) Validate() error {
	return errors.AppendField(nil, "Maker", m.Maker.Validate())
}

func (m *RefundOfferMsg) Marshal() ([]byte, error) {
	return codec.Marshal((*refundOfferMsg)(m))
}

func (m *RefundOfferMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*refundOfferMsg)(m))
}

// CancelOfferMsg has the same effect as RefundOfferMsg.
type CancelOfferMsg struct {
	Maker   tokenswap.Address `protobuf:"bytes,1,opt,name=maker,proto3" json:"maker,omitempty"`
	OfferID uint64            `protobuf:"varint,2,opt,name=offer_id,proto3" json:"offer_id,omitempty"`
}

func (CancelOfferMsg) Path() string {
	return "offer/cancel"
}

func (m *CancelOfferMsg) Validate() error {
	return errors.AppendField(nil, "Maker", m.Maker.Validate())
}

func (m *CancelOfferMsg) Marshal() ([]byte, error) {
	return codec.Marshal((*cancelOfferMsg)(m))
}

func (m *CancelOfferMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*cancelOfferMsg)(m))
}

// Types without the Marshal method, encoded by gogo.
type (
	makeOfferMsg   MakeOfferMsg
	takeOfferMsg   TakeOfferMsg
	refundOfferMsg RefundOfferMsg
	cancelOfferMsg CancelOfferMsg
)

func (m *makeOfferMsg) Reset()         { *m = makeOfferMsg{} }
func (m *makeOfferMsg) String() string { return proto.CompactTextString(m) }
func (*makeOfferMsg) ProtoMessage()    {}

func (m *takeOfferMsg) Reset()         { *m = takeOfferMsg{} }
func (m *takeOfferMsg) String() string { return proto.CompactTextString(m) }
func (*takeOfferMsg) ProtoMessage()    {}

func (m *refundOfferMsg) Reset()         { *m = refundOfferMsg{} }
func (m *refundOfferMsg) String() string { return proto.CompactTextString(m) }
func (*refundOfferMsg) ProtoMessage()    {}

func (m *cancelOfferMsg) Reset()         { *m = cancelOfferMsg{} }
func (m *cancelOfferMsg) String() string { return proto.CompactTextString(m) }
func (*cancelOfferMsg) ProtoMessage()    {}
