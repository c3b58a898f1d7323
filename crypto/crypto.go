/*
Package crypto holds the keys and signatures used to authenticate
transactions. Only ed25519 is supported.

All types encode as a protobuf message with the ed25519 bytes in field 1,
matching a oneof with a single ed25519 option.
*/
package crypto

import (
	"github.com/gogo/protobuf/proto"
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/codec"
	"github.com/iov-one/tokenswap/errors"
	"golang.org/x/crypto/ed25519"
)

// ExtensionName is used for the Conditions we get from signatures
const ExtensionName = "sigs"

// Signer is the functionality we use from a private key.
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) (*Signature, error)
	PublicKey() *PublicKey
}

// PublicKey is an ed25519 public key.
type PublicKey struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519,omitempty"`
}

// PrivateKey is an ed25519 private key.
type PrivateKey struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519,omitempty"`
}

// Signature is an ed25519 signature.
type Signature struct {
	Ed25519 []byte `protobuf:"bytes,1,opt,name=ed25519,proto3" json:"ed25519,omitempty"`
}

var _ Signer = (*PrivateKey)(nil)

// Verify verifies the signature was created with this message and public key
func (p *PublicKey) Verify(message []byte, sig *Signature) bool {
	if p == nil || sig == nil || len(p.Ed25519) != ed25519.PublicKeySize || len(sig.Ed25519) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p.Ed25519), message, sig.Ed25519)
}

// Condition encodes the public key into a condition. It returns nil for an
// empty key.
func (p *PublicKey) Condition() tokenswap.Condition {
	if p == nil || len(p.Ed25519) == 0 {
		return nil
	}
	return tokenswap.NewCondition(ExtensionName, "ed25519", p.Ed25519)
}

// Address returns the address controlled by this key. It returns nil for an
// empty key.
func (p *PublicKey) Address() tokenswap.Address {
	c := p.Condition()
	if c == nil {
		return nil
	}
	return c.Address()
}

// Validate checks the key length.
func (p *PublicKey) Validate() error {
	if p == nil || len(p.Ed25519) == 0 {
		return errors.Wrap(errors.ErrEmpty, "public key")
	}
	if len(p.Ed25519) != ed25519.PublicKeySize {
		return errors.Wrapf(errors.ErrInput, "public key length %d", len(p.Ed25519))
	}
	return nil
}

// Sign returns a matching signature for this private key
func (p *PrivateKey) Sign(message []byte) (*Signature, error) {
	if len(p.Ed25519) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "private key length %d", len(p.Ed25519))
	}
	return &Signature{Ed25519: ed25519.Sign(ed25519.PrivateKey(p.Ed25519), message)}, nil
}

// PublicKey returns the corresponding PublicKey
func (p *PrivateKey) PublicKey() *PublicKey {
	pub := ed25519.PrivateKey(p.Ed25519).Public().(ed25519.PublicKey)
	return &PublicKey{Ed25519: pub}
}

// GenPrivKeyEd25519 returns a random new private key
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{Ed25519: priv}
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errors.ErrInput, "seed must be %d bytes", ed25519.SeedSize)
	}
	return &PrivateKey{Ed25519: ed25519.NewKeyFromSeed(seed)}, nil
}

func (p *PublicKey) Marshal() ([]byte, error) {
	return codec.Marshal((*publicKeyMsg)(p))
}

func (p *PublicKey) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*publicKeyMsg)(p))
}

func (p *PrivateKey) Marshal() ([]byte, error) {
	return codec.Marshal((*privateKeyMsg)(p))
}

func (p *PrivateKey) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*privateKeyMsg)(p))
}

func (s *Signature) Marshal() ([]byte, error) {
	return codec.Marshal((*signatureMsg)(s))
}

func (s *Signature) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*signatureMsg)(s))
}

// Types without the Marshal method, encoded by gogo.
type (
	publicKeyMsg  PublicKey
	privateKeyMsg PrivateKey
	signatureMsg  Signature
)

func (m *publicKeyMsg) Reset()         { *m = publicKeyMsg{} }
func (m *publicKeyMsg) String() string { return proto.CompactTextString(m) }
func (*publicKeyMsg) ProtoMessage()    {}

func (m *privateKeyMsg) Reset()         { *m = privateKeyMsg{} }
func (m *privateKeyMsg) String() string { return proto.CompactTextString(m) }
func (*privateKeyMsg) ProtoMessage()    {}

func (m *signatureMsg) Reset()         { *m = signatureMsg{} }
func (m *signatureMsg) String() string { return proto.CompactTextString(m) }
func (*signatureMsg) ProtoMessage()    {}
