package holding

import (
	"github.com/gogo/protobuf/proto"
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/codec"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/x/mint"
)

const maxMemoSize = 128

var (
	_ tokenswap.Msg = (*IssueMsg)(nil)
	_ tokenswap.Msg = (*SendMsg)(nil)
	_ tokenswap.Msg = (*CloseMsg)(nil)
)

// IssueMsg creates new supply of a mint. It must be signed by the mint
// authority.
type IssueMsg struct {
	Mint   string            `protobuf:"bytes,1,opt,name=mint,proto3" json:"mint,omitempty"`
	Owner  tokenswap.Address `protobuf:"bytes,2,opt,name=owner,proto3" json:"owner,omitempty"`
	Amount uint64            `protobuf:"varint,3,opt,name=amount,proto3" json:"amount,omitempty"`
}

func (IssueMsg) Path() string {
	return "holding/issue"
}

func (m *IssueMsg) Validate() error {
	var errs error
	if !mint.IsTicker(m.Mint) {
		errs = errors.AppendField(errs, "Mint", errors.Wrapf(mint.ErrInvalidTokenMint, "ticker %q", m.Mint))
	}
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	if m.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	return errs
}

func (m *IssueMsg) Marshal() ([]byte, error) {
	return codec.Marshal((*issueMsg)(m))
}

func (m *IssueMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*issueMsg)(m))
}

// SendMsg moves value from a holding of the source to a holding of the
// destination. The destination holding is opened if needed.
type SendMsg struct {
	Mint        string            `protobuf:"bytes,1,opt,name=mint,proto3" json:"mint,omitempty"`
	Source      tokenswap.Address `protobuf:"bytes,2,opt,name=source,proto3" json:"source,omitempty"`
	Destination tokenswap.Address `protobuf:"bytes,3,opt,name=destination,proto3" json:"destination,omitempty"`
	Amount      uint64            `protobuf:"varint,4,opt,name=amount,proto3" json:"amount,omitempty"`
	Memo        string            `protobuf:"bytes,5,opt,name=memo,proto3" json:"memo,omitempty"`
}

func (SendMsg) Path() string {
	return "holding/send"
}

func (m *SendMsg) Validate() error {
	var errs error
	if !mint.IsTicker(m.Mint) {
		errs = errors.AppendField(errs, "Mint", errors.Wrapf(mint.ErrInvalidTokenMint, "ticker %q", m.Mint))
	}
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if m.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.Wrapf(errors.ErrInput, "longer than %d", maxMemoSize))
	}
	return errs
}

func (m *SendMsg) Marshal() ([]byte, error) {
	return codec.Marshal((*sendMsg)(m))
}

func (m *SendMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*sendMsg)(m))
}

// CloseMsg removes an empty holding of the signer.
type CloseMsg struct {
	Mint  string            `protobuf:"bytes,1,opt,name=mint,proto3" json:"mint,omitempty"`
	Owner tokenswap.Address `protobuf:"bytes,2,opt,name=owner,proto3" json:"owner,omitempty"`
}

func (CloseMsg) Path() string {
	return "holding/close"
}

func (m *CloseMsg) Validate() error {
	var errs error
	if !mint.IsTicker(m.Mint) {
		errs = errors.AppendField(errs, "Mint", errors.Wrapf(mint.ErrInvalidTokenMint, "ticker %q", m.Mint))
	}
	return errors.AppendField(errs, "Owner", m.Owner.Validate())
}

func (m *CloseMsg) Marshal() ([]byte, error) {
	return codec.Marshal((*closeMsg)(m))
}

func (m *CloseMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*closeMsg)(m))
}

// Types without the Marshal method, encoded by gogo.
type (
	issueMsg IssueMsg
	sendMsg  SendMsg
	closeMsg CloseMsg
)

func (m *issueMsg) Reset()         { *m = issueMsg{} }
func (m *issueMsg) String() string { return proto.CompactTextString(m) }
func (*issueMsg) ProtoMessage()    {}

func (m *sendMsg) Reset()         { *m = sendMsg{} }
func (m *sendMsg) String() string { return proto.CompactTextString(m) }
func (*sendMsg) ProtoMessage()    {}

func (m *closeMsg) Reset()         { *m = closeMsg{} }
func (m *closeMsg) String() string { return proto.CompactTextString(m) }
func (*closeMsg) ProtoMessage()    {}
