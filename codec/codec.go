/*
Package codec encodes persisted models and transactions with the protobuf
wire format, using gogo/protobuf over struct field tags.

gogo hands the encoding to any type that implements Marshal itself, so a
model cannot pass itself to gogo from its own Marshal method. Instead each
model declares an unexported type with the same underlying struct and no
Marshal method, and converts to it:

	type offerMsg Offer

	func (m *offerMsg) Reset()         { *m = offerMsg{} }
	func (m *offerMsg) String() string { return proto.CompactTextString(m) }
	func (*offerMsg) ProtoMessage()    {}

	func (o *Offer) Marshal() ([]byte, error) {
		return codec.Marshal((*offerMsg)(o))
	}

Fields hold `protobuf:"..."` tags with the proto3 flag, so zero values are
not written. Embedded models are encoded with their own Marshal method
and decoded from their field tags.
*/
package codec

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/tokenswap/errors"
)

// Marshal encodes m. It fails with ErrInput if gogo cannot encode it.
func Marshal(m proto.Message) ([]byte, error) {
	raw, err := proto.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

// Unmarshal resets m and loads raw into it. Unknown fields are ignored.
// Malformed input results in ErrInput.
func Unmarshal(raw []byte, m proto.Message) error {
	if err := proto.Unmarshal(raw, m); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}
