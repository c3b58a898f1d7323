package sigs

import (
	"github.com/gogo/protobuf/proto"
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/codec"
	"github.com/iov-one/tokenswap/crypto"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/orm"
)

// BucketName is where we store the accounts
const BucketName = "sigs"

// UserData keeps the replay protection state of a single public key.
type UserData struct {
	Pubkey   *crypto.PublicKey `protobuf:"bytes,1,opt,name=pubkey,proto3" json:"pubkey,omitempty"`
	Sequence int64             `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence,omitempty"`
}

// userDataMsg is UserData without the Marshal method, encoded by gogo.
type userDataMsg UserData

func (m *userDataMsg) Reset()         { *m = userDataMsg{} }
func (m *userDataMsg) String() string { return proto.CompactTextString(m) }
func (*userDataMsg) ProtoMessage()    {}

var _ orm.Model = (*UserData)(nil)

// Validate checks the sequence is consistent with the key.
func (u *UserData) Validate() error {
	var errs error
	if seq := u.Sequence; seq < 0 {
		errs = errors.AppendField(errs, "Sequence", errors.Wrap(ErrInvalidSequence, "negative"))
	} else if seq > 0 && u.Pubkey == nil {
		errs = errors.AppendField(errs, "Sequence", errors.Wrap(ErrInvalidSequence, "needs Pubkey"))
	}
	if u.Pubkey != nil {
		errs = errors.AppendField(errs, "Pubkey", u.Pubkey.Validate())
	}
	return errs
}

func (u *UserData) Marshal() ([]byte, error) {
	return codec.Marshal((*userDataMsg)(u))
}

func (u *UserData) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*userDataMsg)(u))
}

// maxSequenceValue is limited by the client. The greatest supported
// nonce value at client side is
//   Number.MAX_SAFE_INTEGER = 9007199254740991 = 2^53 - 1
const maxSequenceValue = (1 << 53) - 1

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", expected, u.Sequence)
	}
	next := u.Sequence + 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// Bucket stores UserData under the address of its public key.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket creates the proper bucket for this extension
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket(BucketName, &UserData{}),
	}
}

// GetOrCreate loads the UserData for the key, or returns a fresh one with
// sequence zero if none is stored yet.
func (b Bucket) GetOrCreate(db tokenswap.ReadOnlyKVStore, pubkey *crypto.PublicKey) (*UserData, error) {
	var user UserData
	switch err := b.One(db, pubkey.Address(), &user); {
	case err == nil:
		return &user, nil
	case errors.ErrNotFound.Is(err):
		return &UserData{Pubkey: pubkey}, nil
	default:
		return nil, err
	}
}

// Save stores the UserData under its key address.
func (b Bucket) Save(db tokenswap.KVStore, user *UserData) error {
	if user.Pubkey == nil {
		return errors.Wrap(errors.ErrEmpty, "public key")
	}
	return b.Put(db, user.Pubkey.Address(), user)
}
