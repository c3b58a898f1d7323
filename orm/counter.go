package orm

import (
	"encoding/binary"

	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
)

// Counter keeps a named set of unsigned counters, for example the number
// of open entities that belong to one owner.
type Counter struct {
	prefix []byte
}

// NewCounter returns a counter set stored under name.
func NewCounter(name string) Counter {
	if !isBucketName(name) {
		panic("Illegal counter: " + name)
	}
	return Counter{prefix: []byte("_c." + name + ":")}
}

func (c Counter) dbKey(key []byte) []byte {
	out := make([]byte, len(c.prefix)+len(key))
	copy(out, c.prefix)
	copy(out[len(c.prefix):], key)
	return out
}

// Get returns the current value, zero if it was never set.
func (c Counter) Get(db tokenswap.ReadOnlyKVStore, key []byte) (uint64, error) {
	raw, err := db.Get(c.dbKey(key))
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, nil
	}
	if len(raw) != 8 {
		return 0, errors.Wrapf(errors.ErrState, "invalid counter value of %d bytes", len(raw))
	}
	return binary.BigEndian.Uint64(raw), nil
}

// Increment adds one and returns the new value. It fails with ErrOverflow
// instead of exceeding max. Zero max means no limit.
func (c Counter) Increment(db tokenswap.KVStore, key []byte, max uint64) (uint64, error) {
	n, err := c.Get(db, key)
	if err != nil {
		return 0, err
	}
	if (max != 0 && n >= max) || n+1 == 0 {
		return n, errors.Wrapf(errors.ErrOverflow, "counter limit %d reached", max)
	}
	return n + 1, c.set(db, key, n+1)
}

// Decrement subtracts one and returns the new value. A counter that reaches
// zero is removed.
func (c Counter) Decrement(db tokenswap.KVStore, key []byte) (uint64, error) {
	n, err := c.Get(db, key)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errors.Wrap(errors.ErrState, "counter below zero")
	}
	return n - 1, c.set(db, key, n-1)
}

func (c Counter) set(db tokenswap.KVStore, key []byte, n uint64) error {
	if n == 0 {
		return db.Delete(c.dbKey(key))
	}
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], n)
	return db.Set(c.dbKey(key), raw[:])
}
