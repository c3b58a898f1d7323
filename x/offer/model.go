package offer

import (
	"encoding/binary"

	"github.com/gogo/protobuf/proto"
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/codec"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/orm"
	"github.com/iov-one/tokenswap/x/mint"
)

// derivationTag namespaces the derived offer addresses.
const derivationTag = "offer"

// Offer holds the immutable terms of an open trade. The record is stored
// under the address derived from its maker and ID, which is also the owner
// of its vault.
type Offer struct {
	ID      uint64            `protobuf:"varint,1,opt,name=id,proto3" json:"id,omitempty"`
	Maker   tokenswap.Address `protobuf:"bytes,2,opt,name=maker,proto3" json:"maker,omitempty"`
	MintA   string            `protobuf:"bytes,3,opt,name=mint_a,proto3" json:"mint_a,omitempty"`
	MintB   string            `protobuf:"bytes,4,opt,name=mint_b,proto3" json:"mint_b,omitempty"`
	AmountA uint64            `protobuf:"varint,5,opt,name=amount_a,proto3" json:"amount_a,omitempty"`
	AmountB uint64            `protobuf:"varint,6,opt,name=amount_b,proto3" json:"amount_b,omitempty"`
	// Nonce is the canonical derivation nonce of the offer address.
	Nonce uint32 `protobuf:"varint,7,opt,name=nonce,proto3" json:"nonce,omitempty"`
}

// offerMsg is Offer without the Marshal method, encoded by gogo.
type offerMsg Offer

func (m *offerMsg) Reset()         { *m = offerMsg{} }
func (m *offerMsg) String() string { return proto.CompactTextString(m) }
func (*offerMsg) ProtoMessage()    {}

var _ orm.Model = (*Offer)(nil)

func (o *Offer) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Maker", o.Maker.Validate())
	if !mint.IsTicker(o.MintA) {
		errs = errors.AppendField(errs, "MintA", errors.Wrapf(ErrInvalidTokenMint, "ticker %q", o.MintA))
	}
	if !mint.IsTicker(o.MintB) {
		errs = errors.AppendField(errs, "MintB", errors.Wrapf(ErrInvalidTokenMint, "ticker %q", o.MintB))
	}
	if o.MintA == o.MintB {
		errs = errors.AppendField(errs, "MintB", errors.Wrap(ErrInvalidTokenMint, "same as offered mint"))
	}
	if o.AmountA == 0 {
		errs = errors.AppendField(errs, "AmountA", ErrInvalidAmount)
	}
	if o.AmountB == 0 {
		errs = errors.AppendField(errs, "AmountB", ErrInvalidAmount)
	}
	if o.Nonce > 255 {
		errs = errors.AppendField(errs, "Nonce", errors.ErrOverflow)
	}
	return errs
}

// Derivation returns the derivation proof of the offer address, built
// from the stored nonce. Its Verify method fails if the stored nonce is not
// the canonical one.
func (o *Offer) Derivation() tokenswap.Derivation {
	return tokenswap.Derivation{
		Tag:   derivationTag,
		Seeds: seeds(o.Maker, o.ID),
		Nonce: uint8(o.Nonce),
	}
}

// Address returns the offer address.
func (o *Offer) Address() tokenswap.Address {
	d := o.Derivation()
	return d.Address()
}

func (o *Offer) Marshal() ([]byte, error) {
	return codec.Marshal((*offerMsg)(o))
}

func (o *Offer) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*offerMsg)(o))
}

// Derive returns the canonical derivation of the address of the offer
// made by maker under id.
func Derive(maker tokenswap.Address, id uint64) (tokenswap.Derivation, error) {
	return tokenswap.FindDerivation(derivationTag, seeds(maker, id)...)
}

func seeds(maker tokenswap.Address, id uint64) [][]byte {
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], id)
	return [][]byte{maker, raw[:]}
}

// Bucket stores offers under their derived address.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns the offers bucket.
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket("offers", &Offer{}),
	}
}

// Get loads the offer stored under addr.
func (b Bucket) Get(db tokenswap.ReadOnlyKVStore, addr tokenswap.Address) (*Offer, error) {
	var o Offer
	switch err := b.One(db, addr, &o); {
	case err == nil:
		return &o, nil
	case errors.ErrNotFound.Is(err):
		return nil, errOfferNotFound(addr)
	default:
		return nil, err
	}
}
