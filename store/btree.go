package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/tokenswap/errors"
)

// DefaultFreeListSize is the size we hold for free node in btree
const DefaultFreeListSize = btree.DefaultFreeListSize

// BTreeCacheable adds a simple btree-based CacheWrap
// strategy to a KVStore
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

// CacheWrap returns a BTreeCacheWrap that can be later
// written to this store, or rolled back
func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, b.NewBatch(), nil)
}

// MemStore returns a simple implementation useful for tests.
// There is no persistence here.
func MemStore() CacheableKVStore {
	e := EmptyKVStore{}
	return NewBTreeCacheWrap(e, e.NewBatch(), nil)
}

// ShowOpser returns an ordered list of all operations performed
type ShowOpser interface {
	ShowOps() []Op
}

// LogableStore will return a store, along with insight into all operations
// that were run on it
func LogableStore() (CacheableKVStore, ShowOpser) {
	e := EmptyKVStore{}
	b := NewNonAtomicBatch(e)
	return NewBTreeCacheWrap(e, b, nil), b
}

// BTreeCacheWrap places a btree cache over a KVStore. Every write is
// recorded in the btree for reads and in the batch for the final write.
type BTreeCacheWrap struct {
	bt    *btree.BTree
	free  *btree.FreeList
	back  ReadOnlyKVStore
	batch Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap initializes a BTree to cache around this
// kv store. Use ReadOnlyKVStore to emphasize that all writes
// must go through the Batch.
//
// free may be nil, but set to an existing list to reuse it
// for memory savings
func NewBTreeCacheWrap(kv ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		bt:    btree.NewWithFreeList(2, free),
		free:  free,
		back:  kv,
		batch: batch,
	}
}

// CacheWrap layers another BTree on top of this one.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

// NewBatch returns a non-atomic batch that eventually may write to
// our cachewrap
func (b BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(b)
}

// Write syncs with the underlying store and then cleans up.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard invalidates this CacheWrap and releases all data
func (b BTreeCacheWrap) Discard() {
	for b.bt.DeleteMin() != nil {
	}
	if d, ok := b.batch.(*NonAtomicBatch); ok {
		d.ops = nil
	}
}

// Set writes to the BTree and to the batch
func (b BTreeCacheWrap) Set(key, value []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrDatabase, "empty key")
	}
	b.bt.ReplaceOrInsert(newSetItem(key, value))
	return b.batch.Set(key, value)
}

// Delete deletes from the BTree and to the batch
func (b BTreeCacheWrap) Delete(key []byte) error {
	b.bt.ReplaceOrInsert(newDeletedItem(key))
	return b.batch.Delete(key)
}

// Get reads from btree if there, else backing store
func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	switch t := b.bt.Get(bkey{key}).(type) {
	case nil:
		return b.back.Get(key)
	case setItem:
		return t.value, nil
	case deletedItem:
		return nil, nil
	default:
		return nil, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", t)
	}
}

// Has reads from btree if there, else backing store
func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	switch t := b.bt.Get(bkey{key}).(type) {
	case nil:
		return b.back.Has(key)
	case setItem:
		return true, nil
	case deletedItem:
		return false, nil
	default:
		return false, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", t)
	}
}

// Iterator over a domain of keys in ascending order.
// Combines results from btree and backing store
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	models, err := mergeRange(parent, rangeBtree(b.bt, start, end), false)
	if err != nil {
		return nil, err
	}
	return NewSliceIterator(models), nil
}

// ReverseIterator over a domain of keys in descending order.
// Combines results from btree and backing store
func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	items := rangeBtree(b.bt, start, end)
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	models, err := mergeRange(parent, items, true)
	if err != nil {
		return nil, err
	}
	return NewSliceIterator(models), nil
}

// rangeBtree returns all cached items within [start, end) in ascending
// order. A nil bound is open.
func rangeBtree(bt *btree.BTree, start, end []byte) []btree.Item {
	var items []btree.Item
	collect := func(i btree.Item) bool {
		items = append(items, i)
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(bkey{end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, collect)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, collect)
	}
	return items
}

// mergeRange combines the parent iterator with cached items, both sorted
// in the same direction. Cached values win, deleted items hide the parent.
func mergeRange(parent Iterator, items []btree.Item, reverse bool) ([]Model, error) {
	defer parent.Close()

	var res []Model
	// before reports whether key a comes first in iteration order.
	before := func(a, b []byte) bool {
		if reverse {
			return bytes.Compare(a, b) > 0
		}
		return bytes.Compare(a, b) < 0
	}
	add := func(item btree.Item) {
		if s, ok := item.(setItem); ok {
			res = append(res, Model{Key: s.key, Value: s.value})
		}
	}

	for parent.Valid() || len(items) > 0 {
		if !parent.Valid() {
			add(items[0])
			items = items[1:]
			continue
		}
		if len(items) == 0 {
			res = append(res, Model{Key: parent.Key(), Value: parent.Value()})
			if err := parent.Next(); err != nil {
				return nil, err
			}
			continue
		}

		pk, ck := parent.Key(), items[0].(keyer).Key()
		switch {
		case before(pk, ck):
			res = append(res, Model{Key: pk, Value: parent.Value()})
			if err := parent.Next(); err != nil {
				return nil, err
			}
		case bytes.Equal(pk, ck):
			add(items[0])
			items = items[1:]
			if err := parent.Next(); err != nil {
				return nil, err
			}
		default:
			add(items[0])
			items = items[1:]
		}
	}
	return res, nil
}

// we enforce all data in our btree implements keyer so we
// can compare nicely
type keyer interface {
	Key() []byte
}

// bkey implements keyer and btree.Item
// and may be used for queries or embedded in data to store
type bkey struct {
	key []byte
}

var _ keyer = bkey{}
var _ btree.Item = bkey{}

func (k bkey) Key() []byte {
	return k.key
}

// Less returns true iff second argument is greater than first
func (k bkey) Less(item btree.Item) bool {
	return bytes.Compare(k.key, item.(keyer).Key()) < 0
}

type deletedItem struct {
	bkey
}

func newDeletedItem(key []byte) deletedItem {
	return deletedItem{bkey{key}}
}

type setItem struct {
	bkey
	value []byte
}

func newSetItem(key, value []byte) setItem {
	return setItem{bkey{key}, value}
}
