package offer

import (
	"github.com/gogo/protobuf/proto"
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/codec"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/orm"
)

const (
	// MinTransferAmount is the default smallest amount an offer may lock
	// or request.
	MinTransferAmount = 1
	// MaxOffersPerMaker is the default limit of open offers of a single
	// maker.
	MaxOffersPerMaker = 100
)

var configurationKey = []byte("conf")

// Configuration holds the limits applied to every new offer.
type Configuration struct {
	MinTransferAmount uint64 `protobuf:"varint,1,opt,name=min_transfer_amount,proto3" json:"min_transfer_amount"`
	MaxOffersPerMaker uint64 `protobuf:"varint,2,opt,name=max_offers_per_maker,proto3" json:"max_offers_per_maker"`
}

// configurationMsg is Configuration without the Marshal method, encoded
// by gogo.
type configurationMsg Configuration

func (m *configurationMsg) Reset()         { *m = configurationMsg{} }
func (m *configurationMsg) String() string { return proto.CompactTextString(m) }
func (*configurationMsg) ProtoMessage()    {}

var _ orm.Model = (*Configuration)(nil)

// DefaultConfiguration returns the limits used when none were stored.
func DefaultConfiguration() Configuration {
	return Configuration{
		MinTransferAmount: MinTransferAmount,
		MaxOffersPerMaker: MaxOffersPerMaker,
	}
}

func (c *Configuration) Validate() error {
	var errs error
	if c.MinTransferAmount == 0 {
		errs = errors.AppendField(errs, "MinTransferAmount", errors.Wrap(errors.ErrAmount, "must be at least 1"))
	}
	if c.MaxOffersPerMaker == 0 {
		errs = errors.AppendField(errs, "MaxOffersPerMaker", errors.Wrap(errors.ErrInput, "must be at least 1"))
	}
	return errs
}

func (c *Configuration) Marshal() ([]byte, error) {
	return codec.Marshal((*configurationMsg)(c))
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*configurationMsg)(c))
}

// ConfigurationBucket stores the single offer Configuration.
type ConfigurationBucket struct {
	orm.ModelBucket
}

// NewConfigurationBucket returns the configuration bucket.
func NewConfigurationBucket() ConfigurationBucket {
	return ConfigurationBucket{
		ModelBucket: orm.NewModelBucket("offerconf", &Configuration{}),
	}
}

// Load returns the stored configuration, or the defaults if none was
// stored.
func (b ConfigurationBucket) Load(db tokenswap.ReadOnlyKVStore) (Configuration, error) {
	var c Configuration
	switch err := b.One(db, configurationKey, &c); {
	case err == nil:
		return c, nil
	case errors.ErrNotFound.Is(err):
		return DefaultConfiguration(), nil
	default:
		return Configuration{}, errors.Wrap(err, "offer configuration")
	}
}

// Save replaces the stored configuration.
func (b ConfigurationBucket) Save(db tokenswap.KVStore, c Configuration) error {
	return b.Put(db, configurationKey, &c)
}
