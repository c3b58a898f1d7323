/*
Package badgerdb provides a CommitKVStore persisted in badger.

Badger has no merkle structure, so every commit folds the list of written
operations into a running sha256 hash. Two nodes applying the same blocks
end up with the same hash.
*/
package badgerdb

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"

	"github.com/dgraph-io/badger/v3"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/store"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	dataPrefix = []byte("d:")
	versionKey = []byte("m:version")
	hashKey    = []byte("m:hash")
	maxDataKey = []byte("d;") // first key after the data prefix
)

// CommitStore keeps the committed state in badger. Writes done through
// cache wraps are held in memory until Commit.
type CommitStore struct {
	db      *badger.DB
	working store.BTreeCacheWrap
	pending *opsBatch
	id      *store.CommitID
}

var _ store.CommitKVStore = (*CommitStore)(nil)

// Open opens or creates the database in dir. An empty dir opens an in
// memory database.
func Open(dir string, logger log.Logger) (*CommitStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = badgerLogger{logger: logger.With("module", "badger")}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	s := &CommitStore{db: db, id: &store.CommitID{}}
	s.reset()
	return s, nil
}

func (s *CommitStore) reset() {
	s.pending = &opsBatch{}
	s.working = store.NewBTreeCacheWrap(reader{db: s.db}, s.pending, nil)
}

// Get returns the value at last committed state
// returns nil iff key doesn't exist.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	return reader{db: s.db}.Get(key)
}

// CacheWrap returns a cache on top of all writes not yet committed.
func (s *CommitStore) CacheWrap() store.KVCacheWrap {
	return s.working.CacheWrap()
}

// Commit writes all pending operations through a badger write batch, so a
// block is not limited by the size of a single transaction. The new version
// and hash are stored after every operation is flushed.
func (s *CommitStore) Commit() (store.CommitID, error) {
	next := store.CommitID{
		Version: s.id.Version + 1,
		Hash:    s.pending.hash(s.id.Hash),
	}
	if err := s.flush(); err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		var ver [8]byte
		binary.BigEndian.PutUint64(ver[:], uint64(next.Version))
		if err := txn.Set(versionKey, ver[:]); err != nil {
			return err
		}
		return txn.Set(hashKey, next.Hash)
	})
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	*s.id = next
	s.reset()
	return next, nil
}

func (s *CommitStore) flush() error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, op := range s.pending.ops {
		key := dataKey(op.Key())
		if op.IsSetOp() {
			if err := wb.Set(key, op.Value()); err != nil {
				return err
			}
		} else if err := wb.Delete(key); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// LoadLatestVersion reads the last committed version and drops all
// uncommitted writes.
func (s *CommitStore) LoadLatestVersion() error {
	var ver, hash []byte
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		if ver, err = getValue(txn, versionKey); err != nil {
			return err
		}
		hash, err = getValue(txn, hashKey)
		return err
	})
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	id := store.CommitID{}
	if ver != nil {
		if len(ver) != 8 {
			return errors.Wrapf(errors.ErrState, "invalid version value length %d", len(ver))
		}
		id.Version = int64(binary.BigEndian.Uint64(ver))
		id.Hash = hash
	}
	*s.id = id
	s.reset()
	return nil
}

// LatestVersion returns info on the latest version saved to disk
func (s *CommitStore) LatestVersion() (store.CommitID, error) {
	return *s.id, nil
}

// Close releases the database.
func (s *CommitStore) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

func dataKey(key []byte) []byte {
	return append(append([]byte{}, dataPrefix...), key...)
}

func getValue(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// opsBatch collects the operations of a block until they are committed.
type opsBatch struct {
	ops []store.Op
}

var _ store.Batch = (*opsBatch)(nil)

func (b *opsBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, store.SetOp(key, value))
	return nil
}

func (b *opsBatch) Delete(key []byte) error {
	b.ops = append(b.ops, store.DelOp(key))
	return nil
}

// Write is a noop, the operations are persisted on Commit.
func (b *opsBatch) Write() error {
	return nil
}

// hash chains the previous hash with every operation in order.
func (b *opsBatch) hash(prev []byte) []byte {
	h := sha256.New()
	_, _ = h.Write(prev)
	var buf [binary.MaxVarintLen64]byte
	writeBytes := func(p []byte) {
		n := binary.PutUvarint(buf[:], uint64(len(p)))
		_, _ = h.Write(buf[:n])
		_, _ = h.Write(p)
	}
	for _, op := range b.ops {
		if op.IsSetOp() {
			_, _ = h.Write([]byte{1})
			writeBytes(op.Key())
			writeBytes(op.Value())
		} else {
			_, _ = h.Write([]byte{2})
			writeBytes(op.Key())
		}
	}
	return h.Sum(nil)
}

// reader exposes the committed badger state as a read only store.
type reader struct {
	db *badger.DB
}

var _ store.ReadOnlyKVStore = reader{}

func (r reader) Get(key []byte) ([]byte, error) {
	var val []byte
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		val, err = getValue(txn, dataKey(key))
		return err
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return val, nil
}

func (r reader) Has(key []byte) (bool, error) {
	val, err := r.Get(key)
	return val != nil, err
}

func (r reader) Iterator(start, end []byte) (store.Iterator, error) {
	models, err := r.scan(start, end)
	if err != nil {
		return nil, err
	}
	return store.NewSliceIterator(models), nil
}

func (r reader) ReverseIterator(start, end []byte) (store.Iterator, error) {
	models, err := r.scan(start, end)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return store.NewSliceIterator(models), nil
}

// scan returns all data entries within [start, end) in ascending order.
func (r reader) scan(start, end []byte) ([]store.Model, error) {
	upper := maxDataKey
	if end != nil {
		upper = dataKey(end)
	}
	var res []store.Model
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(dataKey(start)); it.ValidForPrefix(dataPrefix); it.Next() {
			item := it.Item()
			if bytes.Compare(item.Key(), upper) >= 0 {
				break
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			res = append(res, store.Model{
				Key:   item.KeyCopy(nil)[len(dataPrefix):],
				Value: value,
			})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return res, nil
}
