package iavl

import (
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// DefaultCacheSize is the number of tree nodes kept in memory.
const DefaultCacheSize = 10000

// CommitStore manages a iavl committed state
type CommitStore struct {
	db   dbm.DB
	tree *iavl.MutableTree
}

var _ store.CommitKVStore = CommitStore{}

// NewCommitStore creates a new store with disk backing
func NewCommitStore(dir, name string) (CommitStore, error) {
	db, err := newDB(dir, name)
	if err != nil {
		return CommitStore{}, err
	}
	return NewCommitStoreFromDB(db), nil
}

// NewCommitStoreFromDB creates a store on top of an already opened
// database. Use dbm.NewMemDB for tests.
func NewCommitStoreFromDB(db dbm.DB) CommitStore {
	return CommitStore{
		db:   db,
		tree: iavl.NewMutableTree(db, DefaultCacheSize),
	}
}

func newDB(dir, name string) (db dbm.DB, err error) {
	// goleveldb panics instead of returning an error when the directory
	// cannot be used.
	defer errors.Recover(&err)
	return dbm.NewDB(name, dbm.GoLevelDBBackend, dir), nil
}

// Get returns the value at last committed state
// returns nil iff key doesn't exist.
func (s CommitStore) Get(key []byte) ([]byte, error) {
	_, val := s.tree.GetVersioned(key, s.tree.Version())
	return val, nil
}

// Commit the next version to disk, and returns info
func (s CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return store.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version.
// If there was a crash during the last commit, it is guaranteed
// to return a stable state, even if older.
func (s CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk
func (s CommitStore) LatestVersion() (store.CommitID, error) {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// Close releases the underlying database.
func (s CommitStore) Close() error {
	s.db.Close()
	return nil
}

// CacheWrap wraps the working tree with a btree cache. Writing the cache
// updates the working tree, which becomes persistent on Commit.
func (s CommitStore) CacheWrap() store.KVCacheWrap {
	return s.Adapter().CacheWrap()
}

// Adapter returns a KVStore operating directly on the working tree.
func (s CommitStore) Adapter() store.CacheableKVStore {
	return adapter{tree: s.tree}
}

// adapter exposes the iavl working tree as a KVStore.
type adapter struct {
	tree *iavl.MutableTree
}

var _ store.CacheableKVStore = adapter{}

// Get returns nil iff key doesn't exist.
func (a adapter) Get(key []byte) ([]byte, error) {
	_, val := a.tree.Get(key)
	return val, nil
}

// Has checks if a key exists.
func (a adapter) Has(key []byte) (bool, error) {
	return a.tree.Has(key), nil
}

// Set adds a new value
func (a adapter) Set(key, value []byte) error {
	a.tree.Set(key, value)
	return nil
}

// Delete removes from the tree
func (a adapter) Delete(key []byte) error {
	a.tree.Remove(key)
	return nil
}

// NewBatch returns a batch that applies all operations on Write.
func (a adapter) NewBatch() store.Batch {
	return store.NewNonAtomicBatch(a)
}

// CacheWrap wraps us once again, with btree
func (a adapter) CacheWrap() store.KVCacheWrap {
	return store.NewBTreeCacheWrap(a, a.NewBatch(), nil)
}

// Iterator over a domain of keys in ascending order. End is exclusive.
func (a adapter) Iterator(start, end []byte) (store.Iterator, error) {
	return a.iterate(start, end, true), nil
}

// ReverseIterator over a domain of keys in descending order. End is exclusive.
func (a adapter) ReverseIterator(start, end []byte) (store.Iterator, error) {
	return a.iterate(start, end, false), nil
}

func (a adapter) iterate(start, end []byte, ascending bool) store.Iterator {
	var res []store.Model
	a.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		res = append(res, store.Model{Key: key, Value: value})
		return false
	})
	return store.NewSliceIterator(res)
}
