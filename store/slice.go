package store

import "github.com/iov-one/tokenswap/errors"

// SliceIterator wraps an Iterator over a slice of models
type SliceIterator struct {
	data []Model
	idx  int
}

var _ Iterator = (*SliceIterator)(nil)

// NewSliceIterator creates a new Iterator over this slice
func NewSliceIterator(data []Model) *SliceIterator {
	return &SliceIterator{
		data: data,
	}
}

// Valid returns true iff it can be read
func (s *SliceIterator) Valid() bool {
	return s.idx < len(s.data)
}

// Next moves the iterator to the next sequential key in the database, as
// defined by order of iteration.
func (s *SliceIterator) Next() error {
	if !s.Valid() {
		return errors.Wrap(errors.ErrDatabase, "iterator passed the end")
	}
	s.idx++
	return nil
}

// Key returns the key of the cursor. It must only be called on a valid
// iterator.
func (s *SliceIterator) Key() []byte {
	return s.data[s.idx].Key
}

// Value returns the value of the cursor. It must only be called on a valid
// iterator.
func (s *SliceIterator) Value() []byte {
	return s.data[s.idx].Value
}

// Close releases the Iterator.
func (s *SliceIterator) Close() {
	s.data = nil
	s.idx = 0
}

// EmptyKVStore never holds any data, used as a base layer for in memory
// stores.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

// Get always returns nil
func (EmptyKVStore) Get(key []byte) ([]byte, error) { return nil, nil }

// Has always returns false
func (EmptyKVStore) Has(key []byte) (bool, error) { return false, nil }

// Set is a noop
func (EmptyKVStore) Set(key, value []byte) error { return nil }

// Delete is a noop
func (EmptyKVStore) Delete(key []byte) error { return nil }

// Iterator is always empty
func (EmptyKVStore) Iterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

// ReverseIterator is always empty
func (EmptyKVStore) ReverseIterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

// NewBatch returns a batch that can write to this store later
func (e EmptyKVStore) NewBatch() Batch {
	return NewNonAtomicBatch(e)
}

// ReadAll drains the iterator into a slice and closes it.
func ReadAll(it Iterator) ([]Model, error) {
	defer it.Close()
	var res []Model
	for it.Valid() {
		res = append(res, Model{Key: it.Key(), Value: it.Value()})
		if err := it.Next(); err != nil {
			return nil, err
		}
	}
	return res, nil
}
