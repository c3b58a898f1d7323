package sigs

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/tokenswap/codec"
	"github.com/iov-one/tokenswap/crypto"
	"github.com/iov-one/tokenswap/errors"
)

// SignedTx represents a transaction that contains signatures,
// which can be verified by the Decorator
type SignedTx interface {
	// GetSignBytes returns the canonical byte representation of the Tx
	// without the signatures.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signature of signers who signed the Tx.
	GetSignatures() []*StdSignature
}

// StdSignature is a signature together with the key that created it and
// the sequence it was created for.
type StdSignature struct {
	Sequence  int64             `protobuf:"varint,1,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Pubkey    *crypto.PublicKey `protobuf:"bytes,2,opt,name=pubkey,proto3" json:"pubkey,omitempty"`
	Signature *crypto.Signature `protobuf:"bytes,4,opt,name=signature,proto3" json:"signature,omitempty"`
}

// stdSignatureMsg is StdSignature without the Marshal method, encoded by
// gogo.
type stdSignatureMsg StdSignature

func (m *stdSignatureMsg) Reset()         { *m = stdSignatureMsg{} }
func (m *stdSignatureMsg) String() string { return proto.CompactTextString(m) }
func (*stdSignatureMsg) ProtoMessage()    {}

// Validate ensures the StdSignature meets basic standards
func (s *StdSignature) Validate() error {
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if s.Pubkey == nil {
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	}
	if s.Signature == nil {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}

func (s *StdSignature) Marshal() ([]byte, error) {
	return codec.Marshal((*stdSignatureMsg)(s))
}

func (s *StdSignature) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*stdSignatureMsg)(s))
}
