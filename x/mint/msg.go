package mint

import (
	"github.com/gogo/protobuf/proto"
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/codec"
	"github.com/iov-one/tokenswap/errors"
)

// CreateMintMsg registers a new mint. It must be signed by the authority.
type CreateMintMsg struct {
	Ticker    string            `protobuf:"bytes,1,opt,name=ticker,proto3" json:"ticker,omitempty"`
	Name      string            `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	Decimals  uint32            `protobuf:"varint,3,opt,name=decimals,proto3" json:"decimals,omitempty"`
	Authority tokenswap.Address `protobuf:"bytes,4,opt,name=authority,proto3" json:"authority,omitempty"`
}

// createMintMsg is CreateMintMsg without the Marshal method, encoded by
// gogo.
type createMintMsg CreateMintMsg

func (m *createMintMsg) Reset()         { *m = createMintMsg{} }
func (m *createMintMsg) String() string { return proto.CompactTextString(m) }
func (*createMintMsg) ProtoMessage()    {}

var _ tokenswap.Msg = (*CreateMintMsg)(nil)

func (CreateMintMsg) Path() string {
	return "mint/create"
}

func (m *CreateMintMsg) Validate() error {
	mint := Mint{Ticker: m.Ticker, Name: m.Name, Decimals: m.Decimals, Authority: m.Authority}
	if err := mint.Validate(); err != nil {
		return errors.Wrap(err, "mint")
	}
	return nil
}

func (m *CreateMintMsg) Marshal() ([]byte, error) {
	return codec.Marshal((*createMintMsg)(m))
}

func (m *CreateMintMsg) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*createMintMsg)(m))
}
