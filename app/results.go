package app

import (
	"github.com/gogo/protobuf/proto"
	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/codec"
	"github.com/iov-one/tokenswap/errors"
)

// ResultSet is the encoding of query results. Keys and values of a query
// are returned as two separate sets of the same length.
type ResultSet struct {
	Results [][]byte `protobuf:"bytes,1,rep,name=results,proto3" json:"results,omitempty"`
}

// resultSetMsg is ResultSet without the Marshal method, encoded by gogo.
type resultSetMsg ResultSet

func (m *resultSetMsg) Reset()         { *m = resultSetMsg{} }
func (m *resultSetMsg) String() string { return proto.CompactTextString(m) }
func (*resultSetMsg) ProtoMessage()    {}

func (r *ResultSet) Marshal() ([]byte, error) {
	return codec.Marshal((*resultSetMsg)(r))
}

func (r *ResultSet) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*resultSetMsg)(r))
}

// ResultsFromKeys returns a ResultSet of all keys
// given a set of models
func ResultsFromKeys(models []tokenswap.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values
// given a set of models
func ResultsFromValues(models []tokenswap.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

// JoinResults inverts ResultsFromKeys and ResultsFromValues
// and makes then a consistent whole again
func JoinResults(keys, values *ResultSet) ([]tokenswap.Model, error) {
	kref, vref := keys.Results, values.Results
	if len(kref) != len(vref) {
		return nil, errors.Wrapf(errors.ErrState, "%d keys but %d values", len(kref), len(vref))
	}
	mods := make([]tokenswap.Model, len(kref))
	for i := range mods {
		mods[i] = tokenswap.Model{
			Key:   kref[i],
			Value: vref[i],
		}
	}
	return mods, nil
}

// UnmarshalOneResult will parse a resultset, and
// it if is not empty, unmarshal the first result into o
func UnmarshalOneResult(bz []byte, o tokenswap.Persistent) error {
	var res ResultSet
	if err := res.Unmarshal(bz); err != nil {
		return err
	}
	if len(res.Results) == 0 {
		return nil
	}
	return o.Unmarshal(res.Results[0])
}
