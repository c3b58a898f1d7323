package mint

import (
	"regexp"

	"github.com/gogo/protobuf/proto"
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/codec"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/orm"
)

// MaxDecimals is the greatest unit precision a mint may declare. Amounts
// are unsigned 64 bit integers, so a greater precision leaves no room for
// whole units.
const MaxDecimals = 18

var (
	// IsTicker returns true if the string is a valid mint identifier.
	IsTicker = regexp.MustCompile(`^[A-Z][A-Z0-9]{2,5}$`).MatchString

	isMintName = regexp.MustCompile(`^[A-Za-z0-9 \-_:]{3,32}$`).MatchString
)

// Mint describes a fungible asset type. Every holding of a mint records
// the mint decimals at the time it was opened.
type Mint struct {
	Ticker   string `protobuf:"bytes,1,opt,name=ticker,proto3" json:"ticker,omitempty"`
	Name     string `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	Decimals uint32 `protobuf:"varint,3,opt,name=decimals,proto3" json:"decimals,omitempty"`
	// Authority is the only address allowed to issue new supply.
	Authority tokenswap.Address `protobuf:"bytes,4,opt,name=authority,proto3" json:"authority,omitempty"`
}

// mintMsg is Mint without the Marshal method, encoded by gogo.
type mintMsg Mint

func (m *mintMsg) Reset()         { *m = mintMsg{} }
func (m *mintMsg) String() string { return proto.CompactTextString(m) }
func (*mintMsg) ProtoMessage()    {}

var _ orm.Model = (*Mint)(nil)

// Validate returns an error if any of the fields is invalid.
func (m *Mint) Validate() error {
	var errs error
	if !IsTicker(m.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.Wrapf(ErrInvalidTokenMint, "ticker %q", m.Ticker))
	}
	if !isMintName(m.Name) {
		errs = errors.AppendField(errs, "Name", errors.Wrapf(errors.ErrInput, "name %q", m.Name))
	}
	if m.Decimals > MaxDecimals {
		errs = errors.AppendField(errs, "Decimals", errors.Wrapf(errors.ErrInput, "greater than %d", MaxDecimals))
	}
	errs = errors.AppendField(errs, "Authority", m.Authority.Validate())
	return errs
}

func (m *Mint) Marshal() ([]byte, error) {
	return codec.Marshal((*mintMsg)(m))
}

func (m *Mint) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*mintMsg)(m))
}

// Bucket stores mints under their ticker.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns the mint registry.
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket("mints", &Mint{}),
	}
}

// Get returns the mint registered under ticker. An unknown ticker results
// in ErrInvalidTokenMint.
func (b Bucket) Get(db tokenswap.ReadOnlyKVStore, ticker string) (*Mint, error) {
	var m Mint
	switch err := b.One(db, []byte(ticker), &m); {
	case err == nil:
		return &m, nil
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrapf(ErrInvalidTokenMint, "unknown mint %q", ticker)
	default:
		return nil, err
	}
}

// Create registers a new mint. A ticker can be registered only once.
func (b Bucket) Create(db tokenswap.KVStore, m *Mint) error {
	return b.Insert(db, []byte(m.Ticker), m)
}
