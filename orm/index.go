package orm

import (
	"bytes"
	"encoding/binary"

	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

const indexPrefix = "_i."

// Indexer calculates the secondary index value for a given model. A nil
// value means the model is not indexed.
type Indexer func(Model) ([]byte, error)

// Index is a secondary index on the models of a bucket. Every reference is
// stored under its own key, so indexes with many entries per value stay
// cheap to update.
type Index struct {
	name   string
	prefix []byte
	unique bool
	index  Indexer
	refKey func([]byte) []byte
}

var _ tokenswap.QueryHandler = (*Index)(nil)

func newIndex(name string, indexer Indexer, unique bool, refKey func([]byte) []byte) *Index {
	return &Index{
		name:   name,
		prefix: []byte(indexPrefix + name + ":"),
		unique: unique,
		index:  indexer,
		refKey: refKey,
	}
}

// valuePrefix is the common prefix of all references stored for value.
// The value is length prefixed so that values never overlap.
func (i *Index) valuePrefix(value []byte) []byte {
	var n [binary.MaxVarintLen64]byte
	l := binary.PutUvarint(n[:], uint64(len(value)))
	out := make([]byte, 0, len(i.prefix)+l+len(value))
	out = append(out, i.prefix...)
	out = append(out, n[:l]...)
	return append(out, value...)
}

func (i *Index) refDBKey(value, primary []byte) []byte {
	return append(i.valuePrefix(value), primary...)
}

func (i *Index) value(m Model) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return i.index(m)
}

// Update moves the reference for primary from the value of prev to the
// value of next. A nil prev means insert, a nil next means delete.
func (i *Index) Update(db tokenswap.KVStore, primary []byte, prev, next Model) error {
	before, err := i.value(prev)
	if err != nil {
		return err
	}
	after, err := i.value(next)
	if err != nil {
		return err
	}
	if prev != nil && next != nil && bytes.Equal(before, after) {
		return nil
	}
	if before != nil {
		if err := db.Delete(i.refDBKey(before, primary)); err != nil {
			return err
		}
	}
	if after == nil {
		return nil
	}
	if i.unique {
		keys, err := i.Keys(db, after)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if !bytes.Equal(k, primary) {
				return errors.Wrapf(errors.ErrDuplicate, "unique index %s", i.name)
			}
		}
	}
	return db.Set(i.refDBKey(after, primary), []byte{})
}

// Keys returns the primary keys of all models indexed under value.
func (i *Index) Keys(db tokenswap.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	prefix := i.valuePrefix(value)
	refs, err := queryPrefix(db, prefix)
	if err != nil {
		return nil, err
	}
	keys := make([][]byte, len(refs))
	for n, r := range refs {
		keys[n] = r.Key[len(prefix):]
	}
	return keys, nil
}

// Query returns all models indexed under data. Only exact value matches
// are supported.
func (i *Index) Query(db tokenswap.ReadOnlyKVStore, mod string, data []byte) ([]tokenswap.Model, error) {
	if mod != tokenswap.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unknown query mod: %s", mod)
	}
	keys, err := i.Keys(db, data)
	if err != nil {
		return nil, err
	}
	res := make([]tokenswap.Model, 0, len(keys))
	for _, k := range keys {
		dbkey := i.refKey(k)
		value, err := db.Get(dbkey)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, errors.Wrapf(errors.ErrState, "index %s references missing %X", i.name, k)
		}
		res = append(res, tokenswap.Model{Key: dbkey, Value: value})
	}
	return res, nil
}
