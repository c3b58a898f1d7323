package holding

import (
	"github.com/gogo/protobuf/proto"
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/codec"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/orm"
	"github.com/iov-one/tokenswap/x/mint"
)

// Holding is a balance of a single mint that belongs to a single owner. The
// owner is either a signer or a derived address.
type Holding struct {
	Owner    tokenswap.Address `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner,omitempty"`
	Mint     string            `protobuf:"bytes,2,opt,name=mint,proto3" json:"mint,omitempty"`
	Decimals uint32            `protobuf:"varint,3,opt,name=decimals,proto3" json:"decimals,omitempty"`
	Balance  uint64            `protobuf:"varint,4,opt,name=balance,proto3" json:"balance,omitempty"`
	// Vault holdings are stored under VaultAddress and can only be
	// credited through the controller, never by a send.
	Vault bool `protobuf:"varint,5,opt,name=vault,proto3" json:"vault,omitempty"`
}

// holdingMsg is Holding without the Marshal method, encoded by gogo.
type holdingMsg Holding

func (m *holdingMsg) Reset()         { *m = holdingMsg{} }
func (m *holdingMsg) String() string { return proto.CompactTextString(m) }
func (*holdingMsg) ProtoMessage()    {}

var _ orm.Model = (*Holding)(nil)

func (h *Holding) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", h.Owner.Validate())
	if !mint.IsTicker(h.Mint) {
		errs = errors.AppendField(errs, "Mint", errors.Wrapf(mint.ErrInvalidTokenMint, "ticker %q", h.Mint))
	}
	if h.Decimals > mint.MaxDecimals {
		errs = errors.AppendField(errs, "Decimals", ErrInvalidTokenDecimals)
	}
	return errs
}

// Address returns the key of this holding.
func (h *Holding) Address() (tokenswap.Address, error) {
	if h.Vault {
		return VaultAddress(h.Owner, h.Mint)
	}
	return Address(h.Owner, h.Mint)
}

func (h *Holding) Marshal() ([]byte, error) {
	return codec.Marshal((*holdingMsg)(h))
}

func (h *Holding) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*holdingMsg)(h))
}

// Tags namespacing the derived holding addresses.
const (
	derivationTag = "holding"
	vaultTag      = "vault"
)

// Derivation returns the derivation of the holding address for owner and
// ticker. There is at most one holding per owner and mint.
func Derivation(owner tokenswap.Address, ticker string) (tokenswap.Derivation, error) {
	return tokenswap.FindDerivation(derivationTag, owner, []byte(ticker))
}

// Address returns the address of the holding of ticker owned by owner.
func Address(owner tokenswap.Address, ticker string) (tokenswap.Address, error) {
	d, err := Derivation(owner, ticker)
	if err != nil {
		return nil, errors.Wrap(err, "holding address")
	}
	return d.Address(), nil
}

// VaultAddress returns the address of the vault of ticker owned by owner.
// It never equals an address returned by Address.
func VaultAddress(owner tokenswap.Address, ticker string) (tokenswap.Address, error) {
	d, err := tokenswap.FindDerivation(vaultTag, owner, []byte(ticker))
	if err != nil {
		return nil, errors.Wrap(err, "vault address")
	}
	return d.Address(), nil
}

// Bucket stores holdings under their derived address, with a secondary
// index on the owner.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns the holdings bucket.
func NewBucket() Bucket {
	b := orm.NewModelBucket("holdings", &Holding{}).
		WithIndex("owner", idxOwner, false)
	return Bucket{ModelBucket: b}
}

func idxOwner(m orm.Model) ([]byte, error) {
	h, ok := m.(*Holding)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return h.Owner, nil
}

// Get loads the holding stored under addr.
func (b Bucket) Get(db tokenswap.ReadOnlyKVStore, addr tokenswap.Address) (*Holding, error) {
	var h Holding
	if err := b.One(db, addr, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Save stores the holding under its derived address.
func (b Bucket) Save(db tokenswap.KVStore, h *Holding) error {
	addr, err := h.Address()
	if err != nil {
		return err
	}
	return b.Put(db, addr, h)
}

// ByOwner returns all holdings of owner.
func (b Bucket) ByOwner(db tokenswap.ReadOnlyKVStore, owner tokenswap.Address) ([]*Holding, error) {
	keys, err := b.ByIndex(db, "owner", owner)
	if err != nil {
		return nil, err
	}
	res := make([]*Holding, 0, len(keys))
	for _, k := range keys {
		h, err := b.Get(db, k)
		if err != nil {
			return nil, err
		}
		res = append(res, h)
	}
	return res, nil
}
